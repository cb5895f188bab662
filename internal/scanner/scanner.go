// Package scanner provides content discovery for Stanza sites.
//
// The scanner traverses the content tree (content/<locale>/blog and
// content/<locale>/pages), parses front matter, derives routes, and
// registers every document with the content registry. Files are parsed by a
// small worker pool; parse failures are collected per file rather than
// aborting the walk, so one malformed document reports alongside the rest.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/content"
	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/types"
)

// scanJob is one file for the worker pool to parse and register.
type scanJob struct {
	path   string
	kind   types.ContentKind
	locale string
}

// ContentScanner discovers and registers site content.
type ContentScanner struct {
	registry *registry.ContentRegistry
	locales  *i18n.Locales
	cfg      *config.Config
	workers  int
}

// NewContentScanner creates a scanner bound to a registry and locale set.
func NewContentScanner(reg *registry.ContentRegistry, locales *i18n.Locales, cfg *config.Config) *ContentScanner {
	workers := cfg.Build.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &ContentScanner{
		registry: reg,
		locales:  locales,
		cfg:      cfg,
		workers:  workers,
	}
}

// ScanSite walks every configured locale's content directories and registers
// all Markdown documents. The returned collector holds one entry per file
// that failed to parse or register.
func (s *ContentScanner) ScanSite(root string) (*errors.ErrorCollector, error) {
	jobs, err := s.collectJobs(root)
	if err != nil {
		return nil, err
	}

	collector := errors.NewErrorCollector()
	jobCh := make(chan scanJob)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := s.scanOne(job); err != nil {
					collector.Add(errors.BuildError{
						File:     job.path,
						Message:  err.Error(),
						Severity: errors.ErrorSeverityError,
					})
				}
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	return collector, nil
}

// ScanFile parses and registers a single file, used by the watch loop for
// incremental updates. Files outside the content tree are ignored.
func (s *ContentScanner) ScanFile(root, path string) error {
	job, ok := s.classify(root, path)
	if !ok {
		return nil
	}
	return s.scanOne(job)
}

// RemoveFile drops any registry entries originating from the given source.
func (s *ContentScanner) RemoveFile(path string) {
	s.registry.RemoveBySource(path)
}

func (s *ContentScanner) collectJobs(root string) ([]scanJob, error) {
	contentDir := filepath.Join(root, s.cfg.Build.ContentDir)
	if _, err := os.Stat(contentDir); err != nil {
		return nil, fmt.Errorf("content directory %s: %w", contentDir, err)
	}

	var jobs []scanJob
	for _, locale := range s.locales.All {
		for _, sub := range []struct {
			dir  string
			kind types.ContentKind
		}{
			{s.cfg.Blog.Dir, types.KindPost},
			{s.cfg.Build.PagesDir, types.KindPage},
		} {
			dir := filepath.Join(contentDir, locale, sub.dir)
			err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					if os.IsNotExist(err) {
						return filepath.SkipAll
					}
					return err
				}
				if d.IsDir() {
					if s.ignored(d.Name()) {
						return filepath.SkipDir
					}
					return nil
				}
				if isMarkdown(path) {
					jobs = append(jobs, scanJob{path: path, kind: sub.kind, locale: locale})
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", dir, err)
			}
		}
	}
	return jobs, nil
}

func (s *ContentScanner) scanOne(job scanJob) error {
	page, err := content.ParseFile(job.path, job.kind, job.locale)
	if err != nil {
		return err
	}

	page.Route = s.routeFor(page)
	page.Excerpt = content.Excerpt(page.Raw, s.cfg.Blog.TruncateMarker)

	if !s.cfg.Build.Drafts && page.Draft {
		// A previously-registered draft may have been toggled on
		s.registry.RemoveBySource(page.SourcePath)
		return nil
	}

	return s.registry.Register(page)
}

// routeFor computes the output route: posts live under the blog route base,
// pages at the site root, both behind the locale prefix.
func (s *ContentScanner) routeFor(page *types.PageInfo) string {
	var route string
	switch page.Kind {
	case types.KindPost:
		route = s.cfg.Blog.RouteBase + "/" + page.Slug + "/"
	default:
		route = "/" + page.Slug + "/"
	}
	return s.locales.Localize(page.Locale, route)
}

// classify maps an absolute content path back to its locale and kind.
func (s *ContentScanner) classify(root, path string) (scanJob, bool) {
	contentDir := filepath.Join(root, s.cfg.Build.ContentDir)
	rel, err := filepath.Rel(contentDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return scanJob{}, false
	}
	if !isMarkdown(path) {
		return scanJob{}, false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 3 {
		return scanJob{}, false
	}

	locale := parts[0]
	if !s.locales.Contains(locale) {
		return scanJob{}, false
	}

	switch parts[1] {
	case s.cfg.Blog.Dir:
		return scanJob{path: path, kind: types.KindPost, locale: locale}, true
	case s.cfg.Build.PagesDir:
		return scanJob{path: path, kind: types.KindPage, locale: locale}, true
	default:
		return scanJob{}, false
	}
}

func (s *ContentScanner) ignored(name string) bool {
	for _, pattern := range s.cfg.Build.Ignore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
