// Package renderer produces the HTML for every generated page. Components
// are pure functions from view data to gomponents nodes; the build pipeline
// renders them to files and the development server serves them directly
// through the templ adapter.
package renderer

import (
	"fmt"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/stanza-dev/stanza/internal/config"
)

// FeatureCard renders one feature entry as a self-contained card: icon
// above, heading, paragraph below. width is the fraction of the row this
// card occupies, expressed as a percentage.
func FeatureCard(index int, item config.FeatureItem, width float64) g.Node {
	return h.Div(
		h.Class("feature-card"),
		h.DataAttr("index", fmt.Sprintf("%d", index)),
		h.StyleAttr(fmt.Sprintf("flex-basis: %.4f%%", width)),
		h.Img(
			h.Class("feature-icon"),
			h.Src(item.Icon),
			h.Alt(item.Title),
			h.Role("img"),
		),
		h.H3(g.Text(item.Title)),
		h.P(g.Text(item.Description)),
	)
}

// HomepageFeatures renders the feature grid: one card per configured entry,
// in declaration order, laid out in a row. An empty feature list renders
// nothing.
func HomepageFeatures(items []config.FeatureItem) g.Node {
	if len(items) == 0 {
		return nil
	}
	width := 100.0 / float64(len(items))
	cards := make([]g.Node, 0, len(items))
	for i, item := range items {
		cards = append(cards, FeatureCard(i, item, width))
	}
	return h.Section(
		h.Class("features"),
		h.Div(
			h.Class("features-row"),
			g.Group(cards),
		),
	)
}

// Hero renders the homepage banner with the site title, tagline, and a call
// to action into the blog.
func Hero(site config.SiteConfig, blogHref, blogLabel string) g.Node {
	return h.Header(
		h.Class("hero"),
		h.H1(h.Class("hero-title"), g.Text(site.Title)),
		h.P(h.Class("hero-tagline"), g.Text(site.Tagline)),
		h.Div(
			h.Class("hero-buttons"),
			h.A(h.Class("button button-primary"), h.Href(blogHref), g.Text(blogLabel)),
		),
	)
}

// AnnouncementBar renders the site-wide announcement strip, if configured.
func AnnouncementBar(text string) g.Node {
	if text == "" {
		return nil
	}
	return h.Div(
		h.Class("announcement"),
		h.Role("banner"),
		g.Raw(text),
	)
}
