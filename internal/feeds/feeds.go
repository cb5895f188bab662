// Package feeds generates the RSS and Atom syndication documents for each
// locale's blog, fed from the same registry the HTML pages render from.
package feeds

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/types"
)

// Generator builds feed documents for one site.
type Generator struct {
	cfg     *config.Config
	authors map[string]types.Author
}

// NewGenerator creates a feed generator.
func NewGenerator(cfg *config.Config, authors map[string]types.Author) *Generator {
	if authors == nil {
		authors = map[string]types.Author{}
	}
	return &Generator{cfg: cfg, authors: authors}
}

// Feed holds one serialized feed document and its output path relative to
// the locale's blog directory.
type Feed struct {
	Path string
	Body string
}

// Generate produces the configured feed formats for one locale. Posts must
// already be sorted newest first; rendered is keyed by route and holds the
// full post HTML used as feed content.
func (gen *Generator) Generate(locale string, posts []*types.PageInfo, rendered map[string]string) ([]Feed, error) {
	limit := gen.cfg.Blog.FeedLimit
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	updated := time.Now()
	if len(posts) > 0 {
		updated = posts[0].Date
	}

	feed := &feeds.Feed{
		Title:       gen.cfg.Site.Title,
		Link:        &feeds.Link{Href: gen.absolute(gen.localizedBlogRoute(locale))},
		Description: gen.cfg.Site.Tagline,
		Updated:     updated,
		Copyright:   gen.cfg.Footer.Copyright,
	}

	for _, post := range posts {
		item := &feeds.Item{
			Id:          gen.absolute(post.Route),
			Title:       post.Title,
			Link:        &feeds.Link{Href: gen.absolute(post.Route)},
			Description: post.Description,
			Created:     post.Date,
		}
		if body, ok := rendered[post.Route]; ok {
			item.Content = body
		}
		if len(post.Authors) > 0 {
			if author, ok := gen.authors[post.Authors[0]]; ok {
				item.Author = &feeds.Author{Name: author.Name}
			}
		}
		feed.Items = append(feed.Items, item)
	}

	var out []Feed
	for _, format := range gen.cfg.Blog.Feeds {
		switch format {
		case "rss":
			body, err := feed.ToRss()
			if err != nil {
				return nil, fmt.Errorf("rendering rss feed: %w", err)
			}
			out = append(out, Feed{Path: "rss.xml", Body: body})
		case "atom":
			body, err := feed.ToAtom()
			if err != nil {
				return nil, fmt.Errorf("rendering atom feed: %w", err)
			}
			out = append(out, Feed{Path: "atom.xml", Body: body})
		default:
			return nil, fmt.Errorf("unknown feed format %q", format)
		}
	}
	return out, nil
}

func (gen *Generator) localizedBlogRoute(locale string) string {
	if locale == gen.cfg.I18n.DefaultLocale {
		return gen.cfg.Blog.RouteBase + "/"
	}
	return "/" + locale + gen.cfg.Blog.RouteBase + "/"
}

func (gen *Generator) absolute(route string) string {
	return strings.TrimRight(gen.cfg.Site.URL, "/") + route
}
