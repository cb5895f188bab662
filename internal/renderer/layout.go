package renderer

import (
	"fmt"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/i18n"
)

// LocaleLink is one entry of the locale dropdown: the same document in
// another locale.
type LocaleLink struct {
	Locale string
	Name   string
	Href   string
}

// PageMeta carries the per-page head data for the layout.
type PageMeta struct {
	Title       string
	Description string
	Locale      string
	Route       string
	Alternates  []LocaleLink
}

// Layout wraps page content in the full document shell: head metadata,
// announcement bar, navbar, footer, and the theme bootstrap script.
func (r *Renderer) Layout(meta PageMeta, body ...g.Node) g.Node {
	title := meta.Title
	if title == "" {
		title = r.cfg.Site.Title
	} else {
		title = fmt.Sprintf("%s | %s", title, r.cfg.Site.Title)
	}

	return h.Doctype(
		h.HTML(
			h.Lang(meta.Locale),
			h.DataAttr("theme", r.cfg.Theme.DefaultMode),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(title)),
				g.If(meta.Description != "",
					h.Meta(h.Name("description"), h.Content(meta.Description)),
				),
				g.If(r.cfg.Site.Favicon != "",
					h.Link(h.Rel("icon"), h.Href(r.cfg.Site.Favicon)),
				),
				g.Group(r.alternateLinks(meta)),
				g.Group(r.feedLinks(meta.Locale)),
				h.Link(h.Rel("stylesheet"), h.Href("/css/main.css")),
				h.Link(h.Rel("stylesheet"), h.Href("/css/chroma.css")),
				g.If(r.cfg.Theme.CustomCSS != "",
					h.Link(h.Rel("stylesheet"), h.Href(r.cfg.Theme.CustomCSS)),
				),
				h.Script(g.Raw(r.themeBootstrap())),
			),
			h.Body(
				AnnouncementBar(r.cfg.Theme.Announcement),
				r.Navbar(meta),
				h.Main(h.Class("main-content"), g.Group(body)),
				r.Footer(meta.Locale),
			),
		),
	)
}

func (r *Renderer) alternateLinks(meta PageMeta) []g.Node {
	links := make([]g.Node, 0, len(meta.Alternates))
	for _, alt := range meta.Alternates {
		links = append(links, h.Link(
			h.Rel("alternate"),
			g.Attr("hreflang", alt.Locale),
			h.Href(r.absoluteURL(alt.Href)),
		))
	}
	return links
}

func (r *Renderer) feedLinks(locale string) []g.Node {
	var links []g.Node
	prefix := r.locales.RoutePrefix(locale)
	for _, format := range r.cfg.Blog.Feeds {
		switch format {
		case "rss":
			links = append(links, h.Link(
				h.Rel("alternate"), h.Type("application/rss+xml"),
				h.Href(prefix+r.cfg.Blog.RouteBase+"/rss.xml"),
			))
		case "atom":
			links = append(links, h.Link(
				h.Rel("alternate"), h.Type("application/atom+xml"),
				h.Href(prefix+r.cfg.Blog.RouteBase+"/atom.xml"),
			))
		}
	}
	return links
}

// Navbar renders the top navigation: brand, configured items, locale
// dropdown, and the color mode switch.
func (r *Renderer) Navbar(meta PageMeta) g.Node {
	left := []g.Node{
		h.A(
			h.Class("navbar-brand"),
			h.Href(r.locales.Localize(meta.Locale, "/")),
			g.If(r.cfg.Navbar.Logo != "",
				h.Img(h.Class("navbar-logo"), h.Src(r.cfg.Navbar.Logo), h.Alt("")),
			),
			h.Span(g.Text(r.cfg.Navbar.Title)),
		),
	}
	var right []g.Node

	for _, item := range r.cfg.Navbar.Items {
		node := navbarItem(item, meta.Locale, r.locales)
		if item.Position == "right" {
			right = append(right, node)
		} else {
			left = append(left, node)
		}
	}

	if len(meta.Alternates) > 0 {
		right = append(right, r.localeDropdown(meta))
	}
	if !r.cfg.Theme.DisableSwitch {
		right = append(right, themeToggle())
	}

	return h.Nav(
		h.Class("navbar"),
		h.Div(h.Class("navbar-left"), g.Group(left)),
		h.Div(h.Class("navbar-right"), g.Group(right)),
	)
}

func navbarItem(item config.NavbarItem, locale string, locales *i18n.Locales) g.Node {
	href := item.Href
	external := href != ""
	if !external {
		href = locales.Localize(locale, item.To)
	}
	return h.A(
		h.Class("navbar-item"),
		h.Href(href),
		g.If(external, h.Target("_blank")),
		g.If(external, h.Rel("noopener noreferrer")),
		g.Text(item.Label),
	)
}

func (r *Renderer) localeDropdown(meta PageMeta) g.Node {
	options := make([]g.Node, 0, len(meta.Alternates)+1)
	options = append(options, h.A(
		h.Class("locale-option locale-current"),
		h.Href(meta.Route),
		g.Text(r.locales.DisplayName(meta.Locale)),
	))
	for _, alt := range meta.Alternates {
		options = append(options, h.A(
			h.Class("locale-option"),
			h.Href(alt.Href),
			g.Text(alt.Name),
		))
	}
	return h.Div(
		h.Class("locale-dropdown"),
		h.Button(h.Class("locale-button"), g.Text(r.locales.DisplayName(meta.Locale))),
		h.Div(h.Class("locale-menu"), g.Group(options)),
	)
}

func themeToggle() g.Node {
	return h.Button(
		h.Class("theme-toggle"),
		g.Attr("aria-label", "Toggle between dark and light mode"),
		g.Attr("onclick", "window.__toggleTheme()"),
		h.Span(h.Class("theme-toggle-icon")),
	)
}

// Footer renders the configured footer link groups and copyright line.
func (r *Renderer) Footer(locale string) g.Node {
	groups := make([]g.Node, 0, len(r.cfg.Footer.Groups))
	for _, group := range r.cfg.Footer.Groups {
		items := make([]g.Node, 0, len(group.Items))
		for _, link := range group.Items {
			href := link.Href
			if href == "" {
				href = r.locales.Localize(locale, link.To)
			}
			items = append(items, h.Li(h.A(h.Href(href), g.Text(link.Label))))
		}
		groups = append(groups, h.Div(
			h.Class("footer-group"),
			h.H4(g.Text(group.Title)),
			h.Ul(g.Group(items)),
		))
	}

	style := r.cfg.Footer.Style
	if style == "" {
		style = "light"
	}

	return h.Footer(
		h.Class("footer footer-"+style),
		h.Div(h.Class("footer-groups"), g.Group(groups)),
		g.If(r.cfg.Footer.Copyright != "",
			h.Div(h.Class("footer-copyright"), g.Raw(r.cfg.Footer.Copyright)),
		),
	)
}

// themeBootstrap returns the inline script that applies the persisted or
// OS-preferred color mode before first paint, and installs the toggle
// handler.
func (r *Renderer) themeBootstrap() string {
	respectOS := "false"
	if r.cfg.Theme.RespectOSPreference {
		respectOS = "true"
	}
	return fmt.Sprintf(`(function() {
  var def = %q, respectOS = %s;
  var stored = null;
  try { stored = localStorage.getItem('theme'); } catch (e) {}
  var mode = stored || def;
  if (!stored && respectOS && window.matchMedia('(prefers-color-scheme: dark)').matches) {
    mode = 'dark';
  }
  document.documentElement.setAttribute('data-theme', mode);
  window.__toggleTheme = function() {
    var next = document.documentElement.getAttribute('data-theme') === 'dark' ? 'light' : 'dark';
    document.documentElement.setAttribute('data-theme', next);
    try { localStorage.setItem('theme', next); } catch (e) {}
  };
})();`, r.cfg.Theme.DefaultMode, respectOS)
}

func (r *Renderer) absoluteURL(route string) string {
	base := r.cfg.Site.URL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + route
}
