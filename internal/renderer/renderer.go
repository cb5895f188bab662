package renderer

import (
	"bytes"
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/types"
)

// Renderer builds page nodes from view data. It is stateless apart from the
// site configuration and can render pages concurrently.
type Renderer struct {
	cfg     *config.Config
	locales *i18n.Locales
	authors map[string]types.Author
}

// New creates a renderer for the given site.
func New(cfg *config.Config, locales *i18n.Locales, authors map[string]types.Author) *Renderer {
	if authors == nil {
		authors = map[string]types.Author{}
	}
	return &Renderer{cfg: cfg, locales: locales, authors: authors}
}

// RenderHTML serializes a page node to its final HTML string.
func RenderHTML(node g.Node) (string, error) {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}

// AuthorView is resolved author display data for bylines.
type AuthorView struct {
	Key   string
	Name  string
	Title string
	URL   string
	Image string
}

// TagLink is a tag label with its tag page route and post count.
type TagLink struct {
	Label string
	Href  string
	Count int
}

// PostPreview is the blog-index view of one post.
type PostPreview struct {
	Title       string
	Href        string
	DateDisplay string
	ExcerptHTML string
	Truncated   bool
	Authors     []AuthorView
	Tags        []TagLink
}

// Pagination describes the newer/older navigation of a paginated index.
type Pagination struct {
	Page      int
	Total     int
	NewerHref string
	OlderHref string
}

// Homepage renders the landing page: hero banner plus the feature grid.
func (r *Renderer) Homepage(meta PageMeta) g.Node {
	blogHref := r.locales.Localize(meta.Locale, r.cfg.Blog.RouteBase+"/")
	return r.Layout(meta,
		Hero(r.cfg.Site, blogHref, i18n.Label(meta.Locale, "blog")),
		HomepageFeatures(r.cfg.Feature),
	)
}

// Page renders a standalone page (e.g., the about page).
func (r *Renderer) Page(meta PageMeta, bodyHTML string) g.Node {
	return r.Layout(meta,
		h.Article(
			h.Class("page"),
			h.H1(g.Text(meta.Title)),
			g.Raw(bodyHTML),
		),
	)
}

// Post renders a full blog post page with byline, tags, and body.
func (r *Renderer) Post(meta PageMeta, date time.Time, authors []AuthorView, tags []TagLink, bodyHTML string) g.Node {
	return r.Layout(meta,
		h.Article(
			h.Class("post"),
			h.Header(
				h.Class("post-header"),
				h.H1(g.Text(meta.Title)),
				h.Div(
					h.Class("post-meta"),
					h.Time(h.DateTime(date.Format("2006-01-02")), g.Text(FormatDate(meta.Locale, date))),
					byline(authors),
				),
			),
			h.Div(h.Class("post-body"), g.Raw(bodyHTML)),
			tagList(meta.Locale, tags),
		),
	)
}

// BlogIndex renders one page of the post list.
func (r *Renderer) BlogIndex(meta PageMeta, previews []PostPreview, pagination Pagination) g.Node {
	items := make([]g.Node, 0, len(previews))
	for _, preview := range previews {
		items = append(items, postPreview(meta.Locale, preview))
	}
	return r.Layout(meta,
		h.Div(
			h.Class("blog-index"),
			h.H1(g.Text(i18n.Label(meta.Locale, "blog"))),
			g.Group(items),
			paginator(meta.Locale, pagination),
		),
	)
}

// TagsIndex renders the list of all tags for a locale.
func (r *Renderer) TagsIndex(meta PageMeta, tags []TagLink) g.Node {
	items := make([]g.Node, 0, len(tags))
	for _, tag := range tags {
		items = append(items, h.Li(
			h.A(h.Href(tag.Href), g.Textf("%s (%d)", tag.Label, tag.Count)),
		))
	}
	return r.Layout(meta,
		h.Div(
			h.Class("tags-index"),
			h.H1(g.Text(i18n.Label(meta.Locale, "tags"))),
			h.Ul(h.Class("tags-list"), g.Group(items)),
		),
	)
}

// TagPage renders the posts carrying one tag.
func (r *Renderer) TagPage(meta PageMeta, tag string, previews []PostPreview) g.Node {
	items := make([]g.Node, 0, len(previews))
	for _, preview := range previews {
		items = append(items, postPreview(meta.Locale, preview))
	}
	count := i18n.Label(meta.Locale, "one_post")
	if len(previews) != 1 {
		count = fmt.Sprintf("%d %s", len(previews), i18n.Label(meta.Locale, "posts"))
	}
	return r.Layout(meta,
		h.Div(
			h.Class("tag-page"),
			h.H1(g.Textf("%s %s %q", count, i18n.Label(meta.Locale, "posts_tagged"), tag)),
			g.Group(items),
		),
	)
}

// ArchiveYear groups posts of one calendar year for the archive page.
type ArchiveYear struct {
	Year  int
	Posts []PostPreview
}

// Archive renders the year-grouped archive of all posts.
func (r *Renderer) Archive(meta PageMeta, years []ArchiveYear) g.Node {
	sections := make([]g.Node, 0, len(years))
	for _, year := range years {
		entries := make([]g.Node, 0, len(year.Posts))
		for _, post := range year.Posts {
			entries = append(entries, h.Li(
				h.Time(g.Text(post.DateDisplay)),
				g.Text(" — "),
				h.A(h.Href(post.Href), g.Text(post.Title)),
			))
		}
		sections = append(sections, h.Section(
			h.Class("archive-year"),
			h.H2(g.Textf("%d", year.Year)),
			h.Ul(g.Group(entries)),
		))
	}
	return r.Layout(meta,
		h.Div(
			h.Class("archive"),
			h.H1(g.Text(i18n.Label(meta.Locale, "archive"))),
			g.Group(sections),
		),
	)
}

// ResolveAuthors maps front matter author keys to display data, dropping
// keys missing from the authors file (the checker reports those).
func (r *Renderer) ResolveAuthors(keys []string) []AuthorView {
	var views []AuthorView
	for _, key := range keys {
		author, ok := r.authors[key]
		if !ok {
			continue
		}
		views = append(views, AuthorView{
			Key:   key,
			Name:  author.Name,
			Title: author.Title,
			URL:   author.URL,
			Image: author.Image,
		})
	}
	return views
}

func postPreview(locale string, preview PostPreview) g.Node {
	return h.Article(
		h.Class("post-preview"),
		h.H2(h.A(h.Href(preview.Href), g.Text(preview.Title))),
		h.Div(
			h.Class("post-meta"),
			h.Time(g.Text(preview.DateDisplay)),
			byline(preview.Authors),
		),
		h.Div(h.Class("post-excerpt"), g.Raw(preview.ExcerptHTML)),
		g.If(preview.Truncated,
			h.A(h.Class("read-more"), h.Href(preview.Href), g.Text(i18n.Label(locale, "read_more"))),
		),
		tagList(locale, preview.Tags),
	)
}

func byline(authors []AuthorView) g.Node {
	if len(authors) == 0 {
		return nil
	}
	items := make([]g.Node, 0, len(authors))
	for _, author := range authors {
		name := g.Node(g.Text(author.Name))
		if author.URL != "" {
			name = h.A(h.Href(author.URL), h.Target("_blank"), h.Rel("noopener noreferrer"), g.Text(author.Name))
		}
		items = append(items, h.Span(
			h.Class("author"),
			g.If(author.Image != "", h.Img(h.Class("author-image"), h.Src(author.Image), h.Alt(author.Name))),
			name,
		))
	}
	return h.Span(h.Class("byline"), g.Group(items))
}

func tagList(locale string, tags []TagLink) g.Node {
	if len(tags) == 0 {
		return nil
	}
	items := make([]g.Node, 0, len(tags))
	for _, tag := range tags {
		items = append(items, h.Li(h.A(h.Class("tag"), h.Href(tag.Href), g.Text(tag.Label))))
	}
	return h.Ul(h.Class("post-tags"), g.Group(items))
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// FormatDate renders a date the way the locale expects it.
func FormatDate(locale string, t time.Time) string {
	switch {
	case locale == "de" || (len(locale) > 2 && locale[:3] == "de-"):
		return fmt.Sprintf("%d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
	default:
		return t.Format("January 2, 2006")
	}
}

func paginator(locale string, p Pagination) g.Node {
	if p.NewerHref == "" && p.OlderHref == "" {
		return nil
	}
	return h.Nav(
		h.Class("paginator"),
		g.If(p.NewerHref != "",
			h.A(h.Class("paginator-newer"), h.Href(p.NewerHref), g.Text(i18n.Label(locale, "newer"))),
		),
		h.Span(h.Class("paginator-pages"), g.Textf("%d / %d", p.Page, p.Total)),
		g.If(p.OlderHref != "",
			h.A(h.Class("paginator-older"), h.Href(p.OlderHref), g.Text(i18n.Label(locale, "older"))),
		),
	)
}
