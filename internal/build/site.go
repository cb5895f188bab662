package build

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	g "maragu.dev/gomponents"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/content"
	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/feeds"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/logging"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/renderer"
	"github.com/stanza-dev/stanza/internal/types"
)

// Builder produces the complete static site from the scanned registry.
type Builder struct {
	root     string
	cfg      *config.Config
	locales  *i18n.Locales
	registry *registry.ContentRegistry
	renderer *renderer.Renderer
	markdown *content.Markdown
	feeds    *feeds.Generator
	pipeline *Pipeline
	logger   logging.Logger
}

// Result captures one finished build.
type Result struct {
	// Documents maps every emitted route to its final HTML.
	Documents map[string]string
	// Anchors maps routes to the heading anchor ids available on them.
	Anchors map[string][]string
	// Assets lists site-relative asset paths emitted or copied, e.g.
	// "/css/main.css" and everything under the static directory.
	Assets []string
	// Collector holds per-document render failures.
	Collector *errors.ErrorCollector
	Duration  time.Duration
	CacheHits int64
}

// NewBuilder wires a builder for the site rooted at root.
func NewBuilder(root string, cfg *config.Config, locales *i18n.Locales, reg *registry.ContentRegistry, authors map[string]types.Author, logger logging.Logger) *Builder {
	return &Builder{
		root:     root,
		cfg:      cfg,
		locales:  locales,
		registry: reg,
		renderer: renderer.New(cfg, locales, authors),
		markdown: content.NewMarkdown(cfg.Theme.HighlightStyle),
		feeds:    feeds.NewGenerator(cfg, authors),
		pipeline: NewPipeline(cfg.Build.Workers),
		logger:   logger.WithComponent("build"),
	}
}

// Pipeline exposes the render pipeline for metrics and callbacks.
func (b *Builder) Pipeline() *Pipeline {
	return b.pipeline
}

// Build renders every route, writes the output tree, copies static assets,
// and emits feeds and the sitemap. Render failures for individual documents
// land in the result's collector; infrastructure failures return an error.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	collector := errors.NewErrorCollector()

	plan, err := b.plan(collector)
	if err != nil {
		return nil, err
	}

	hitsBefore := b.pipeline.Metrics().CacheHits
	rendered, err := b.pipeline.Run(ctx, plan.tasks)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Documents: make(map[string]string, len(rendered)),
		Anchors:   plan.anchors,
		Collector: collector,
	}

	outputDir := b.outputDir()
	for route, render := range rendered {
		if render.Err != nil {
			collector.Add(errors.BuildError{
				Route:    route,
				Message:  render.Err.Error(),
				Severity: errors.ErrorSeverityError,
			})
			continue
		}
		result.Documents[route] = render.HTML
		if err := writeDocument(outputDir, route, render.HTML); err != nil {
			return nil, errors.NewBuildError("write_output", "writing rendered page", err).WithRoute(route)
		}
	}

	assets, err := b.emitAssets(outputDir)
	if err != nil {
		return nil, err
	}
	result.Assets = assets

	feedPaths, err := b.emitFeeds(outputDir, plan.postBodies)
	if err != nil {
		return nil, err
	}
	result.Assets = append(result.Assets, feedPaths...)

	if err := b.emitSitemap(outputDir, result.Documents); err != nil {
		return nil, err
	}
	result.Assets = append(result.Assets, "/sitemap.xml")
	sort.Strings(result.Assets)

	result.Duration = time.Since(start)
	result.CacheHits = b.pipeline.Metrics().CacheHits - hitsBefore
	b.logger.Info(ctx, "site built",
		"routes", len(result.Documents),
		"assets", len(result.Assets),
		"cache_hits", result.CacheHits,
		"duration", result.Duration.String(),
	)
	return result, nil
}

// sitePlan is the full set of render tasks for one build, plus the side data
// the feeds and the link checker need.
type sitePlan struct {
	tasks      []RenderTask
	anchors    map[string][]string
	postBodies map[string]map[string]string // locale -> route -> body HTML
}

func (b *Builder) plan(collector *errors.ErrorCollector) (*sitePlan, error) {
	plan := &sitePlan{
		anchors:    make(map[string][]string),
		postBodies: make(map[string]map[string]string),
	}

	for _, locale := range b.locales.All {
		posts := b.registry.Posts(locale)
		pages := b.registry.Pages(locale)
		plan.postBodies[locale] = make(map[string]string, len(posts))

		plan.tasks = append(plan.tasks, b.homepageTask(locale))

		for _, page := range pages {
			page.Anchors = b.markdown.Anchors(page.Raw)
			plan.tasks = append(plan.tasks, b.documentTask(page))
			plan.anchors[page.Route] = page.Anchors
		}

		for _, post := range posts {
			post.Anchors = b.markdown.Anchors(post.Raw)
			plan.tasks = append(plan.tasks, b.documentTask(post))
			plan.anchors[post.Route] = post.Anchors

			body, err := b.markdown.Render(post.Raw)
			if err != nil {
				collector.Add(errors.BuildError{
					Route:    post.Route,
					File:     post.SourcePath,
					Message:  err.Error(),
					Severity: errors.ErrorSeverityError,
				})
				continue
			}
			plan.postBodies[locale][post.Route] = body
		}

		plan.tasks = append(plan.tasks, b.blogIndexTasks(locale, posts)...)
		plan.tasks = append(plan.tasks, b.tagTasks(locale)...)
		plan.tasks = append(plan.tasks, b.archiveTask(locale, posts))
	}

	return plan, nil
}

func (b *Builder) homepageTask(locale string) RenderTask {
	route := b.locales.Localize(locale, "/")
	meta := renderer.PageMeta{
		Title:       b.cfg.Site.Title,
		Description: b.cfg.Site.Tagline,
		Locale:      locale,
		Route:       route,
		Alternates:  b.generatedAlternates("/"),
	}
	return RenderTask{
		Route:  route,
		Render: func() (g.Node, error) { return b.renderer.Homepage(meta), nil },
	}
}

// documentTask renders a single markdown document, post or standalone page.
func (b *Builder) documentTask(page *types.PageInfo) RenderTask {
	meta := renderer.PageMeta{
		Title:       page.Title,
		Description: page.Description,
		Locale:      page.Locale,
		Route:       page.Route,
		Alternates:  b.documentAlternates(page),
	}

	render := func() (g.Node, error) {
		body, err := b.markdown.Render(page.Raw)
		if err != nil {
			return nil, err
		}
		if page.Kind == types.KindPost {
			authors := b.renderer.ResolveAuthors(page.Authors)
			tags := b.tagLinks(page.Locale, page.Tags)
			return b.renderer.Post(meta, page.Date, authors, tags, body), nil
		}
		return b.renderer.Page(meta, body), nil
	}

	return RenderTask{
		Route:    page.Route,
		CacheKey: page.Route + "|" + page.Hash,
		Render:   render,
	}
}

func (b *Builder) blogIndexTasks(locale string, posts []*types.PageInfo) []RenderTask {
	perPage := b.cfg.Blog.PostsPerPage
	total := (len(posts) + perPage - 1) / perPage
	if total == 0 {
		total = 1
	}

	var tasks []RenderTask
	for pageNum := 1; pageNum <= total; pageNum++ {
		first := (pageNum - 1) * perPage
		last := first + perPage
		if last > len(posts) {
			last = len(posts)
		}
		chunk := posts[first:last]
		route := b.blogPageRoute(locale, pageNum)

		meta := renderer.PageMeta{
			Title:      i18n.Label(locale, "blog") + " | " + b.cfg.Site.Title,
			Locale:     locale,
			Route:      route,
			Alternates: b.generatedAlternates(b.blogPageRelative(pageNum)),
		}
		pagination := renderer.Pagination{Page: pageNum, Total: total}
		if pageNum > 1 {
			pagination.NewerHref = b.blogPageRoute(locale, pageNum-1)
		}
		if pageNum < total {
			pagination.OlderHref = b.blogPageRoute(locale, pageNum+1)
		}

		tasks = append(tasks, RenderTask{
			Route:    route,
			CacheKey: route + "|" + b.listHash(chunk),
			Render: func() (g.Node, error) {
				previews, err := b.previews(locale, chunk)
				if err != nil {
					return nil, err
				}
				return b.renderer.BlogIndex(meta, previews, pagination), nil
			},
		})
	}
	return tasks
}

func (b *Builder) tagTasks(locale string) []RenderTask {
	byTag := b.registry.Tags(locale)

	labels := make([]string, 0, len(byTag))
	for tag := range byTag {
		labels = append(labels, tag)
	}
	sort.Strings(labels)

	var tasks []RenderTask
	links := make([]renderer.TagLink, 0, len(labels))
	for _, tag := range labels {
		tagged := byTag[tag]
		route := b.tagRoute(locale, tag)
		links = append(links, renderer.TagLink{
			Label: tag,
			Href:  route,
			Count: len(tagged),
		})

		meta := renderer.PageMeta{
			Title:      tag + " | " + b.cfg.Site.Title,
			Locale:     locale,
			Route:      route,
			Alternates: b.generatedAlternates(b.tagRelative(tag)),
		}
		tasks = append(tasks, RenderTask{
			Route:    route,
			CacheKey: route + "|" + b.listHash(tagged),
			Render: func() (g.Node, error) {
				previews, err := b.previews(locale, tagged)
				if err != nil {
					return nil, err
				}
				return b.renderer.TagPage(meta, tag, previews), nil
			},
		})
	}

	indexRoute := b.locales.Localize(locale, b.cfg.Blog.RouteBase+"/tags/")
	indexMeta := renderer.PageMeta{
		Title:      i18n.Label(locale, "tags") + " | " + b.cfg.Site.Title,
		Locale:     locale,
		Route:      indexRoute,
		Alternates: b.generatedAlternates(b.cfg.Blog.RouteBase + "/tags/"),
	}
	tasks = append(tasks, RenderTask{
		Route:  indexRoute,
		Render: func() (g.Node, error) { return b.renderer.TagsIndex(indexMeta, links), nil },
	})

	return tasks
}

func (b *Builder) archiveTask(locale string, posts []*types.PageInfo) RenderTask {
	route := b.locales.Localize(locale, b.cfg.Blog.RouteBase+"/archive/")
	meta := renderer.PageMeta{
		Title:      i18n.Label(locale, "archive") + " | " + b.cfg.Site.Title,
		Locale:     locale,
		Route:      route,
		Alternates: b.generatedAlternates(b.cfg.Blog.RouteBase + "/archive/"),
	}

	return RenderTask{
		Route:    route,
		CacheKey: route + "|" + b.listHash(posts),
		Render: func() (g.Node, error) {
			var years []renderer.ArchiveYear
			for _, post := range posts {
				year := post.Date.Year()
				if len(years) == 0 || years[len(years)-1].Year != year {
					years = append(years, renderer.ArchiveYear{Year: year})
				}
				years[len(years)-1].Posts = append(years[len(years)-1].Posts, renderer.PostPreview{
					Title:       post.Title,
					Href:        post.Route,
					DateDisplay: renderer.FormatDate(locale, post.Date),
				})
			}
			return b.renderer.Archive(meta, years), nil
		},
	}
}

// previews renders the excerpt view of a post list.
func (b *Builder) previews(locale string, posts []*types.PageInfo) ([]renderer.PostPreview, error) {
	previews := make([]renderer.PostPreview, 0, len(posts))
	for _, post := range posts {
		excerpt := content.Excerpt(post.Raw, b.cfg.Blog.TruncateMarker)
		excerptHTML, err := b.markdown.Render(excerpt)
		if err != nil {
			return nil, fmt.Errorf("rendering excerpt of %s: %w", post.SourcePath, err)
		}
		previews = append(previews, renderer.PostPreview{
			Title:       post.Title,
			Href:        post.Route,
			DateDisplay: renderer.FormatDate(locale, post.Date),
			ExcerptHTML: excerptHTML,
			Truncated:   len(excerpt) < len(post.Raw),
			Authors:     b.renderer.ResolveAuthors(post.Authors),
			Tags:        b.tagLinks(locale, post.Tags),
		})
	}
	return previews, nil
}

func (b *Builder) tagLinks(locale string, tags []string) []renderer.TagLink {
	links := make([]renderer.TagLink, 0, len(tags))
	for _, tag := range tags {
		links = append(links, renderer.TagLink{Label: tag, Href: b.tagRoute(locale, tag)})
	}
	return links
}

// documentAlternates lists the locales carrying the same document.
func (b *Builder) documentAlternates(page *types.PageInfo) []renderer.LocaleLink {
	var links []renderer.LocaleLink
	for _, locale := range b.locales.All {
		target := page
		if locale != page.Locale {
			counterpart, ok := b.registry.Counterpart(page, locale)
			if !ok {
				continue
			}
			target = counterpart
		}
		links = append(links, renderer.LocaleLink{
			Locale: locale,
			Name:   b.locales.DisplayName(locale),
			Href:   target.Route,
		})
	}
	return links
}

// generatedAlternates lists every locale's edition of a generated route.
func (b *Builder) generatedAlternates(relative string) []renderer.LocaleLink {
	links := make([]renderer.LocaleLink, 0, len(b.locales.All))
	for _, locale := range b.locales.All {
		links = append(links, renderer.LocaleLink{
			Locale: locale,
			Name:   b.locales.DisplayName(locale),
			Href:   b.locales.Localize(locale, relative),
		})
	}
	return links
}

func (b *Builder) blogPageRelative(pageNum int) string {
	if pageNum <= 1 {
		return b.cfg.Blog.RouteBase + "/"
	}
	return fmt.Sprintf("%s/page/%d/", b.cfg.Blog.RouteBase, pageNum)
}

func (b *Builder) blogPageRoute(locale string, pageNum int) string {
	return b.locales.Localize(locale, b.blogPageRelative(pageNum))
}

func (b *Builder) tagRelative(tag string) string {
	return b.cfg.Blog.RouteBase + "/tags/" + content.Slugify(tag) + "/"
}

func (b *Builder) tagRoute(locale, tag string) string {
	return b.locales.Localize(locale, b.tagRelative(tag))
}

// listHash derives a cache key fragment from the identity and content of a
// post list, so index pages re-render when any member changes.
func (b *Builder) listHash(posts []*types.PageInfo) string {
	var sb strings.Builder
	for _, post := range posts {
		sb.WriteString(post.Route)
		sb.WriteString(post.Hash)
	}
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(sb.String())))
}

func (b *Builder) emitFeeds(outputDir string, postBodies map[string]map[string]string) ([]string, error) {
	if len(b.cfg.Blog.Feeds) == 0 {
		return nil, nil
	}
	var emitted []string
	for _, locale := range b.locales.All {
		posts := b.registry.Posts(locale)
		generated, err := b.feeds.Generate(locale, posts, postBodies[locale])
		if err != nil {
			return nil, err
		}
		blogRoute := b.locales.Localize(locale, b.cfg.Blog.RouteBase+"/")
		blogDir := filepath.Join(outputDir, routePath(blogRoute))
		for _, feed := range generated {
			if err := writeFile(filepath.Join(blogDir, feed.Path), []byte(feed.Body)); err != nil {
				return nil, err
			}
			emitted = append(emitted, blogRoute+feed.Path)
		}
	}
	return emitted, nil
}

func (b *Builder) emitSitemap(outputDir string, documents map[string]string) error {
	routes := make([]string, 0, len(documents))
	for route := range documents {
		routes = append(routes, route)
	}
	sort.Strings(routes)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	base := strings.TrimSuffix(b.cfg.Site.URL, "/") + strings.TrimSuffix(b.cfg.Site.BaseURL, "/")
	for _, route := range routes {
		sb.WriteString("  <url><loc>")
		sb.WriteString(base + route)
		sb.WriteString("</loc></url>\n")
	}
	sb.WriteString("</urlset>\n")

	return writeFile(filepath.Join(outputDir, "sitemap.xml"), []byte(sb.String()))
}

func (b *Builder) outputDir() string {
	if filepath.IsAbs(b.cfg.Build.OutputDir) {
		return b.cfg.Build.OutputDir
	}
	return filepath.Join(b.root, b.cfg.Build.OutputDir)
}

// routePath maps a route to its output-relative directory path.
func routePath(route string) string {
	return filepath.FromSlash(strings.Trim(path.Clean("/"+route), "/"))
}

// writeDocument writes one route's HTML as <outputDir>/<route>/index.html.
func writeDocument(outputDir, route, html string) error {
	target := filepath.Join(outputDir, routePath(route), "index.html")
	return writeFile(target, []byte(html))
}

func writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
