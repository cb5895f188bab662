package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/types"
)

func testGenerator() *Generator {
	cfg := &config.Config{
		Site: config.SiteConfig{Title: "Dorian Dev", Tagline: "Notes on infrastructure", URL: "https://dorian.dev"},
		Blog: config.BlogConfig{RouteBase: "/blog", Feeds: []string{"rss", "atom"}, FeedLimit: 20},
		I18n: config.I18nConfig{DefaultLocale: "en", Locales: []string{"en", "de"}},
	}
	return NewGenerator(cfg, map[string]types.Author{
		"dorian": {Name: "Dorian Hess"},
	})
}

func posts() []*types.PageInfo {
	return []*types.PageInfo{
		{
			Kind: types.KindPost, Slug: "newer", Locale: "en", Title: "Newer Post",
			Description: "Second post", Authors: []string{"dorian"},
			Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Route: "/blog/newer/",
		},
		{
			Kind: types.KindPost, Slug: "older", Locale: "en", Title: "Older Post",
			Date:  time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC),
			Route: "/blog/older/",
		},
	}
}

func TestGenerate_ProducesBothFormats(t *testing.T) {
	gen := testGenerator()

	out, err := gen.Generate("en", posts(), map[string]string{
		"/blog/newer/": "<p>full body</p>",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "rss.xml", out[0].Path)
	assert.Contains(t, out[0].Body, "<rss")
	assert.Contains(t, out[0].Body, "Newer Post")
	assert.Contains(t, out[0].Body, "https://dorian.dev/blog/newer/")
	assert.Contains(t, out[0].Body, "Dorian Hess")

	assert.Equal(t, "atom.xml", out[1].Path)
	assert.Contains(t, out[1].Body, "<feed")
	assert.Contains(t, out[1].Body, "Older Post")
}

func TestGenerate_NewestFirstOrder(t *testing.T) {
	gen := testGenerator()

	out, err := gen.Generate("en", posts(), nil)
	require.NoError(t, err)

	rss := out[0].Body
	assert.Less(t, strings.Index(rss, "Newer Post"), strings.Index(rss, "Older Post"))
}

func TestGenerate_RespectsLimit(t *testing.T) {
	gen := testGenerator()
	gen.cfg.Blog.FeedLimit = 1

	out, err := gen.Generate("en", posts(), nil)
	require.NoError(t, err)
	assert.Contains(t, out[0].Body, "Newer Post")
	assert.NotContains(t, out[0].Body, "Older Post")
}

func TestGenerate_LocalizedBlogLink(t *testing.T) {
	gen := testGenerator()

	out, err := gen.Generate("de", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out[0].Body, "https://dorian.dev/de/blog/")
}

func TestGenerate_UnknownFormat(t *testing.T) {
	gen := testGenerator()
	gen.cfg.Blog.Feeds = []string{"jsonfeed"}

	_, err := gen.Generate("en", posts(), nil)
	assert.Error(t, err)
}
