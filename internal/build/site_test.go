package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/logging"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/scanner"
	"github.com/stanza-dev/stanza/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			Title:   "Jane Doe",
			Tagline: "Notes on infrastructure",
			URL:     "https://example.com",
			BaseURL: "/",
		},
		Theme: config.ThemeConfig{DefaultMode: "light", HighlightStyle: "github"},
		Blog: config.BlogConfig{
			Dir:            "blog",
			RouteBase:      "/blog",
			PostsPerPage:   1,
			Feeds:          []string{"rss", "atom"},
			TruncateMarker: "<!--truncate-->",
		},
		I18n: config.I18nConfig{DefaultLocale: "en", Locales: []string{"en", "de"}},
		Build: config.BuildConfig{
			ContentDir: "content",
			StaticDir:  "static",
			OutputDir:  "public",
			Workers:    2,
		},
		Feature: []config.FeatureItem{
			{Title: "Kubernetes", Description: "Cluster internals"},
			{Title: "Networking", Description: "Packets and protocols"},
		},
	}
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	return root
}

func newBuilder(t *testing.T, root string) (*Builder, *registry.ContentRegistry) {
	t.Helper()
	cfg := testConfig()
	locales, err := i18n.New(cfg.I18n.DefaultLocale, cfg.I18n.Locales)
	require.NoError(t, err)

	reg := registry.NewContentRegistry()
	collector, err := scanner.NewContentScanner(reg, locales, cfg).ScanSite(root)
	require.NoError(t, err)
	require.False(t, collector.HasErrors())

	authors := map[string]types.Author{
		"jdoe": {Name: "Jane Doe", Title: "SRE"},
	}
	logger := logging.NewLogger(logging.DefaultConfig())
	return NewBuilder(root, cfg, locales, reg, authors, logger), reg
}

const sitePostNew = "---\ntitle: Scheduling Deep Dive\nauthors: jdoe\ntags: [kubernetes]\n---\n\nIntro text.\n\n<!--truncate-->\n\n## Details\n\nMore.\n"
const sitePostOld = "---\ntitle: BGP Basics\ntags: [networking]\n---\n\nRoutes.\n"

func fullSiteFiles() map[string]string {
	return map[string]string{
		"content/en/blog/2024-03-01-scheduling.md": sitePostNew,
		"content/de/blog/2024-03-01-scheduling.md": "---\ntitle: Scheduling im Detail\nauthors: jdoe\ntags: [kubernetes]\n---\n\nEinleitung.\n",
		"content/en/blog/2023-11-05-bgp.md":        sitePostOld,
		"content/en/pages/about.md":                "---\ntitle: About\n---\n\nHello there.\n",
		"static/img/logo.svg":                      "<svg></svg>",
	}
}

func TestBuild_EmitsFullSite(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	result, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Collector.HasErrors())

	public := filepath.Join(root, "public")
	for _, rel := range []string{
		"index.html",
		"de/index.html",
		"about/index.html",
		"blog/index.html",
		"blog/page/2/index.html",
		"blog/scheduling/index.html",
		"de/blog/scheduling/index.html",
		"blog/tags/index.html",
		"blog/tags/kubernetes/index.html",
		"blog/archive/index.html",
		"blog/rss.xml",
		"blog/atom.xml",
		"de/blog/rss.xml",
		"css/main.css",
		"css/chroma.css",
		"img/logo.svg",
		"sitemap.xml",
	} {
		assert.FileExists(t, filepath.Join(public, filepath.FromSlash(rel)), rel)
	}

	assert.Contains(t, result.Assets, "/css/main.css")
	assert.Contains(t, result.Assets, "/img/logo.svg")
}

func TestBuild_HomepageFeaturesInOrder(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	result, err := builder.Build(context.Background())
	require.NoError(t, err)

	home := result.Documents["/"]
	require.NotEmpty(t, home)
	k8s := strings.Index(home, "Kubernetes")
	net := strings.Index(home, "Networking")
	require.GreaterOrEqual(t, k8s, 0)
	require.GreaterOrEqual(t, net, 0)
	assert.Less(t, k8s, net, "feature cards keep declaration order")
}

func TestBuild_BlogIndexPagination(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	result, err := builder.Build(context.Background())
	require.NoError(t, err)

	first := result.Documents["/blog/"]
	require.NotEmpty(t, first)
	// Newest post on page one, older one on page two
	assert.Contains(t, first, "Scheduling Deep Dive")
	assert.NotContains(t, first, "BGP Basics")
	assert.Contains(t, first, "/blog/page/2/")

	second := result.Documents["/blog/page/2/"]
	require.NotEmpty(t, second)
	assert.Contains(t, second, "BGP Basics")
}

func TestBuild_PostPage(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	result, err := builder.Build(context.Background())
	require.NoError(t, err)

	post := result.Documents["/blog/scheduling/"]
	require.NotEmpty(t, post)
	assert.Contains(t, post, "Scheduling Deep Dive")
	assert.Contains(t, post, "Jane Doe")
	assert.Contains(t, post, "/blog/tags/kubernetes/")
	assert.Contains(t, post, `id="details"`)

	// German counterpart is linked as an alternate
	assert.Contains(t, post, "/de/blog/scheduling/")
}

func TestBuild_LocalePrefix(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	result, err := builder.Build(context.Background())
	require.NoError(t, err)

	dePost := result.Documents["/de/blog/scheduling/"]
	require.NotEmpty(t, dePost)
	assert.Contains(t, dePost, `lang="de"`)
	assert.Contains(t, dePost, "Scheduling im Detail")
}

func TestBuild_SecondBuildHitsCache(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	first, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.CacheHits)

	second, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Greater(t, second.CacheHits, int64(0))
	assert.Equal(t, len(first.Documents), len(second.Documents))
}

func TestBuild_SitemapListsRoutes(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	builder, _ := newBuilder(t, root)

	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "public", "sitemap.xml"))
	require.NoError(t, err)
	sitemap := string(data)
	assert.Contains(t, sitemap, "<loc>https://example.com/blog/scheduling/</loc>")
	assert.Contains(t, sitemap, "<loc>https://example.com/de/</loc>")
}

func TestBuild_AbsoluteOutputDir(t *testing.T) {
	root := writeSite(t, fullSiteFiles())
	out := t.TempDir()

	cfg := testConfig()
	cfg.Build.OutputDir = out
	locales, err := i18n.New(cfg.I18n.DefaultLocale, cfg.I18n.Locales)
	require.NoError(t, err)

	reg := registry.NewContentRegistry()
	collector, err := scanner.NewContentScanner(reg, locales, cfg).ScanSite(root)
	require.NoError(t, err)
	require.False(t, collector.HasErrors())

	builder := NewBuilder(root, cfg, locales, reg, nil, logging.NewLogger(logging.DefaultConfig()))
	_, err = builder.Build(context.Background())
	require.NoError(t, err)

	// Output lands at the absolute path, not relative to the site root.
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.NoDirExists(t, filepath.Join(root, strings.TrimPrefix(out, string(filepath.Separator))))
}
