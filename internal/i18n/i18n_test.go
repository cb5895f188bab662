package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocales(t *testing.T) *Locales {
	t.Helper()
	l, err := New("en", []string{"en", "de"})
	require.NoError(t, err)
	return l
}

func TestNew_InvalidTag(t *testing.T) {
	_, err := New("en", []string{"en", "not a tag"})
	assert.Error(t, err)
}

func TestRoutePrefix(t *testing.T) {
	l := newLocales(t)

	assert.Equal(t, "", l.RoutePrefix("en"))
	assert.Equal(t, "/de", l.RoutePrefix("de"))
}

func TestLocalize(t *testing.T) {
	l := newLocales(t)

	assert.Equal(t, "/blog/k8s/", l.Localize("en", "/blog/k8s/"))
	assert.Equal(t, "/de/blog/k8s/", l.Localize("de", "/blog/k8s/"))
	assert.Equal(t, "/de/", l.Localize("de", "/"))
	assert.Equal(t, "/", l.Localize("en", "/"))
}

func TestMatch(t *testing.T) {
	l := newLocales(t)

	assert.Equal(t, "de", l.Match("de-DE,de;q=0.9,en;q=0.5"))
	assert.Equal(t, "en", l.Match("en-US,en;q=0.9"))
	assert.Equal(t, "en", l.Match("fr-FR"))
	assert.Equal(t, "en", l.Match(""))
	assert.Equal(t, "en", l.Match("garbage;;;"))
}

func TestDisplayName(t *testing.T) {
	l := newLocales(t)

	assert.Equal(t, "English", l.DisplayName("en"))
	assert.Equal(t, "Deutsch", l.DisplayName("de"))
}

func TestContains(t *testing.T) {
	l := newLocales(t)

	assert.True(t, l.Contains("de"))
	assert.False(t, l.Contains("fr"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Read more", Label("en", "read_more"))
	assert.Equal(t, "Weiterlesen", Label("de", "read_more"))
	assert.Equal(t, "Weiterlesen", Label("de-DE", "read_more"))
	// unknown locale falls back to English
	assert.Equal(t, "Read more", Label("fr", "read_more"))
	// unknown key falls back to the key
	assert.Equal(t, "no_such_key", Label("en", "no_such_key"))
}
