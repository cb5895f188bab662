// Package scaffolding creates new site skeletons for `stanza init`: the
// configuration file, sample localized content, the authors file, and
// starter static assets.
package scaffolding

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// SiteGenerator writes a runnable starter site.
type SiteGenerator struct {
	root string
}

// Options customises the generated site.
type Options struct {
	Title         string
	Tagline       string
	URL           string
	DefaultLocale string
	Locales       []string
	// Minimal skips the sample posts and feature icons.
	Minimal bool
}

// NewSiteGenerator creates a generator rooted at the target directory.
func NewSiteGenerator(root string) *SiteGenerator {
	return &SiteGenerator{root: root}
}

// Generate writes the site skeleton. It refuses to overwrite an existing
// configuration file so a mistyped path cannot clobber a real site.
func (g *SiteGenerator) Generate(opts Options) error {
	applyOptionDefaults(&opts)

	configPath := filepath.Join(g.root, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in %s", ConfigFileName, g.root)
	}

	files, err := g.renderTemplates(opts)
	if err != nil {
		return err
	}

	for rel, body := range files {
		target := filepath.Join(g.root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}
	return nil
}

func applyOptionDefaults(opts *Options) {
	if opts.Title == "" {
		opts.Title = "My Site"
	}
	if opts.Tagline == "" {
		opts.Tagline = "A personal site built with Stanza"
	}
	if opts.URL == "" {
		opts.URL = "http://localhost:3000"
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	if len(opts.Locales) == 0 {
		opts.Locales = []string{"en", "de"}
	}
	if !contains(opts.Locales, opts.DefaultLocale) {
		opts.Locales = append([]string{opts.DefaultLocale}, opts.Locales...)
	}
}

// renderTemplates expands the skeleton templates into their final contents,
// keyed by site-relative path.
func (g *SiteGenerator) renderTemplates(opts Options) (map[string]string, error) {
	data := templateData{
		Title:         opts.Title,
		Tagline:       opts.Tagline,
		URL:           opts.URL,
		DefaultLocale: opts.DefaultLocale,
		Locales:       opts.Locales,
		Year:          time.Now().Year(),
		Date:          time.Now().Format("2006-01-02"),
	}

	files := make(map[string]string)
	for rel, raw := range skeletonFiles(opts) {
		// File names are templates too: sample posts carry a {{.Date}}
		// prefix so init produces a dated blog entry.
		name, err := expand(rel, rel, data)
		if err != nil {
			return nil, err
		}
		body, err := expand(rel, raw, data)
		if err != nil {
			return nil, err
		}
		files[name] = body
	}
	return files, nil
}

func expand(name, raw string, data templateData) (string, error) {
	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return sb.String(), nil
}

type templateData struct {
	Title         string
	Tagline       string
	URL           string
	DefaultLocale string
	Locales       []string
	Year          int
	Date          string
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
