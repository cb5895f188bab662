package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromYAML(t *testing.T, content string) (*Config, error) {
	t.Helper()
	viper.Reset()
	dir := t.TempDir()
	path := filepath.Join(dir, ".stanza.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFromYAML(t, "site:\n  title: Test\n")
	require.NoError(t, err)

	assert.Equal(t, "Test", cfg.Site.Title)
	assert.Equal(t, "/", cfg.Site.BaseURL)
	assert.Equal(t, "en", cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"en"}, cfg.I18n.Locales)
	assert.Equal(t, "public", cfg.Build.OutputDir)
	assert.Equal(t, 10, cfg.Blog.PostsPerPage)
	assert.Equal(t, []string{"rss", "atom"}, cfg.Blog.Feeds)
	assert.Equal(t, PolicyThrow, cfg.Links.OnBrokenLinks)
	assert.Equal(t, PolicyWarn, cfg.Links.OnBrokenAnchors)
	assert.Equal(t, "light", cfg.Theme.DefaultMode)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoad_FullSite(t *testing.T) {
	cfg, err := loadFromYAML(t, `
site:
  title: Dorian Dev
  tagline: Notes on infrastructure
  url: https://dorian.dev
i18n:
  default_locale: en
  locales: [en, de]
theme:
  default_mode: dark
  highlight_languages: [go, hcl, yaml]
blog:
  posts_per_page: 5
  route_base: /notes
links:
  on_broken_links: warn
features:
  - title: Kubernetes
    icon: /img/k8s.svg
    description: Scheduling deep dives
  - title: Terraform
    icon: /img/tf.svg
    description: Module design
  - title: Go Services
    icon: /img/go.svg
    description: Streaming uploads
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "de"}, cfg.I18n.Locales)
	assert.Equal(t, "dark", cfg.Theme.DefaultMode)
	assert.Equal(t, []string{"go", "hcl", "yaml"}, cfg.Theme.HighlightLanguages)
	assert.Equal(t, 5, cfg.Blog.PostsPerPage)
	assert.Equal(t, "/notes", cfg.Blog.RouteBase)
	assert.Equal(t, PolicyWarn, cfg.Links.OnBrokenLinks)
	require.Len(t, cfg.Feature, 3)
	assert.Equal(t, "Kubernetes", cfg.Feature[0].Title)
	assert.Equal(t, "Terraform", cfg.Feature[1].Title)
	assert.Equal(t, "Go Services", cfg.Feature[2].Title)
}

func TestValidate_BadLocale(t *testing.T) {
	_, err := loadFromYAML(t, "i18n:\n  locales: [en, \"not a tag\"]\n")
	assert.Error(t, err)
}

func TestValidate_DefaultLocaleMissing(t *testing.T) {
	_, err := loadFromYAML(t, "i18n:\n  default_locale: fr\n  locales: [en, de]\n")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default locale")
}

func TestValidate_BadLinkPolicy(t *testing.T) {
	_, err := loadFromYAML(t, "links:\n  on_broken_links: explode\n")
	assert.Error(t, err)
}

func TestValidate_PortRange(t *testing.T) {
	_, err := loadFromYAML(t, "server:\n  port: 70000\n")
	assert.Error(t, err)
}

func TestValidate_PathTraversal(t *testing.T) {
	_, err := loadFromYAML(t, "build:\n  output_dir: ../../etc\n")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestValidate_BadThemeMode(t *testing.T) {
	_, err := loadFromYAML(t, "theme:\n  default_mode: sepia\n")
	assert.Error(t, err)
}
