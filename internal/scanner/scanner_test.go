package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Blog: config.BlogConfig{
			Dir:            "blog",
			RouteBase:      "/blog",
			TruncateMarker: "<!--truncate-->",
		},
		Build: config.BuildConfig{
			ContentDir: "content",
			PagesDir:   "pages",
			Workers:    2,
			Ignore:     []string{"node_modules", ".git"},
		},
		I18n: config.I18nConfig{DefaultLocale: "en", Locales: []string{"en", "de"}},
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

func newScanner(t *testing.T) (*ContentScanner, *registry.ContentRegistry) {
	t.Helper()
	cfg := testConfig()
	locales, err := i18n.New("en", cfg.I18n.Locales)
	require.NoError(t, err)
	reg := registry.NewContentRegistry()
	return NewContentScanner(reg, locales, cfg), reg
}

const enPost = "---\ntitle: Inside the Scheduler\ntags: [kubernetes]\n---\n\nIntro.\n\n<!--truncate-->\n\nRest.\n"
const dePost = "---\ntitle: Im Inneren des Schedulers\ntags: [kubernetes]\n---\n\nEinleitung.\n\n<!--truncate-->\n\nMehr.\n"

func TestScanSite(t *testing.T) {
	scanner, reg := newScanner(t)
	root := writeSite(t, map[string]string{
		"content/en/blog/2024-03-01-k8s-scheduling.md": enPost,
		"content/de/blog/2024-03-01-k8s-scheduling.md": dePost,
		"content/en/pages/about.md":                    "---\ntitle: About\n---\n\nHi.\n",
		"content/de/pages/about.md":                    "---\ntitle: Über mich\n---\n\nHallo.\n",
		"content/en/blog/notes.txt":                    "not markdown",
	})

	collector, err := scanner.ScanSite(root)
	require.NoError(t, err)
	assert.False(t, collector.HasErrors())
	assert.Equal(t, 4, reg.Count())

	post, ok := reg.Get("/blog/k8s-scheduling/")
	require.True(t, ok)
	assert.Equal(t, types.KindPost, post.Kind)
	assert.Equal(t, "Intro.", post.Excerpt)

	dePage, ok := reg.Get("/de/blog/k8s-scheduling/")
	require.True(t, ok)
	assert.Equal(t, "de", dePage.Locale)
	assert.Equal(t, "k8s-scheduling", dePage.Slug)

	about, ok := reg.Get("/about/")
	require.True(t, ok)
	assert.Equal(t, types.KindPage, about.Kind)

	_, ok = reg.Get("/de/about/")
	assert.True(t, ok)
}

func TestScanSite_CollectsParseErrors(t *testing.T) {
	scanner, reg := newScanner(t)
	root := writeSite(t, map[string]string{
		"content/en/blog/2024-03-01-good.md": enPost,
		"content/en/blog/2024-03-02-bad.md":  "---\ntitle: [broken\n---\n\nBody.\n",
	})

	collector, err := scanner.ScanSite(root)
	require.NoError(t, err)
	assert.True(t, collector.HasErrors())
	assert.Equal(t, 1, reg.Count())
}

func TestScanSite_MissingContentDir(t *testing.T) {
	scanner, _ := newScanner(t)
	_, err := scanner.ScanSite(t.TempDir())
	assert.Error(t, err)
}

func TestScanSite_SkipsDrafts(t *testing.T) {
	scanner, reg := newScanner(t)
	root := writeSite(t, map[string]string{
		"content/en/blog/2024-03-01-draft.md": "---\ntitle: WIP\ndraft: true\n---\n\nSoon.\n",
	})

	collector, err := scanner.ScanSite(root)
	require.NoError(t, err)
	assert.False(t, collector.HasErrors())
	assert.Equal(t, 0, reg.Count())
}

func TestScanSite_IncludesDraftsWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Build.Drafts = true
	locales, err := i18n.New("en", cfg.I18n.Locales)
	require.NoError(t, err)
	reg := registry.NewContentRegistry()
	scanner := NewContentScanner(reg, locales, cfg)

	root := writeSite(t, map[string]string{
		"content/en/blog/2024-03-01-draft.md": "---\ntitle: WIP\ndraft: true\n---\n\nSoon.\n",
	})

	_, err = scanner.ScanSite(root)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Count())
}

func TestScanFile_Incremental(t *testing.T) {
	scanner, reg := newScanner(t)
	root := writeSite(t, map[string]string{
		"content/en/blog/2024-03-01-k8s-scheduling.md": enPost,
	})

	path := filepath.Join(root, "content/en/blog/2024-03-01-k8s-scheduling.md")
	require.NoError(t, scanner.ScanFile(root, path))
	assert.Equal(t, 1, reg.Count())

	// paths outside the content tree are ignored
	outside := filepath.Join(root, "README.md")
	require.NoError(t, os.WriteFile(outside, []byte("# hi"), 0644))
	require.NoError(t, scanner.ScanFile(root, outside))
	assert.Equal(t, 1, reg.Count())

	scanner.RemoveFile(path)
	assert.Equal(t, 0, reg.Count())
}

func TestClassify(t *testing.T) {
	scanner, _ := newScanner(t)
	root := t.TempDir()

	job, ok := scanner.classify(root, filepath.Join(root, "content/de/blog/2024-01-01-x.md"))
	require.True(t, ok)
	assert.Equal(t, "de", job.locale)
	assert.Equal(t, types.KindPost, job.kind)

	job, ok = scanner.classify(root, filepath.Join(root, "content/en/pages/about.md"))
	require.True(t, ok)
	assert.Equal(t, types.KindPage, job.kind)

	_, ok = scanner.classify(root, filepath.Join(root, "content/fr/blog/x.md"))
	assert.False(t, ok)

	_, ok = scanner.classify(root, filepath.Join(root, "static/img/logo.svg"))
	assert.False(t, ok)
}
