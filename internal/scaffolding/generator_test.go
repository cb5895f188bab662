package scaffolding

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_WritesSkeleton(t *testing.T) {
	root := t.TempDir()
	gen := NewSiteGenerator(root)

	require.NoError(t, gen.Generate(Options{Title: "Jane Doe", URL: "https://janedoe.dev"}))

	date := time.Now().Format("2006-01-02")
	for _, rel := range []string{
		".stanza.yml",
		".gitignore",
		"content/authors.yml",
		"content/en/pages/about.md",
		"content/de/pages/about.md",
		"content/en/blog/" + date + "-hello-world.md",
		"content/de/blog/" + date + "-hello-world.md",
		"static/css/custom.css",
		"static/img/feature-build.svg",
	} {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(rel)), rel)
	}

	// File names expand through the template pass like file contents do.
	assert.NoFileExists(t, filepath.Join(root, "content/en/blog/{{.Date}}-hello-world.md"))

	cfg, err := os.ReadFile(filepath.Join(root, ".stanza.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), `title: "Jane Doe"`)
	assert.Contains(t, string(cfg), "url: \"https://janedoe.dev\"")
	assert.Contains(t, string(cfg), "locales: [en, de]")

	authors, err := os.ReadFile(filepath.Join(root, "content/authors.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(authors), `name: "Jane Doe"`)
}

func TestGenerate_SharedSlugAcrossLocales(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, NewSiteGenerator(root).Generate(Options{}))

	date := time.Now().Format("2006-01-02")
	en, err := os.ReadFile(filepath.Join(root, "content/en/blog/"+date+"-hello-world.md"))
	require.NoError(t, err)
	de, err := os.ReadFile(filepath.Join(root, "content/de/blog/"+date+"-hello-world.md"))
	require.NoError(t, err)

	assert.Contains(t, string(en), "slug: hello-world")
	assert.Contains(t, string(de), "slug: hello-world")
	assert.Contains(t, string(de), "Hallo Welt")
}

func TestGenerate_Minimal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, NewSiteGenerator(root).Generate(Options{Minimal: true}))

	assert.FileExists(t, filepath.Join(root, "content/en/pages/about.md"))
	assert.NoDirExists(t, filepath.Join(root, "content/en/blog"))
	assert.NoFileExists(t, filepath.Join(root, "static/img/feature-build.svg"))
}

func TestGenerate_RefusesExistingSite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".stanza.yml"), []byte("site:\n"), 0644))

	err := NewSiteGenerator(root).Generate(Options{})
	assert.ErrorContains(t, err, "already exists")
}

func TestGenerate_CustomLocales(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, NewSiteGenerator(root).Generate(Options{
		DefaultLocale: "en",
		Locales:       []string{"en", "fr"},
	}))

	// Untranslated locales fall back to the English samples
	fr, err := os.ReadFile(filepath.Join(root, "content/fr/pages/about.md"))
	require.NoError(t, err)
	assert.Contains(t, string(fr), "title: About")
}
