package scaffolding

// ConfigFileName is the site configuration file that `stanza` commands look
// for in the site root.
const ConfigFileName = ".stanza.yml"

// skeletonFiles returns the raw templates of the starter site, keyed by
// site-relative path. Values are text/template sources.
func skeletonFiles(opts Options) map[string]string {
	files := map[string]string{
		ConfigFileName:          configTemplate,
		"content/authors.yml":   authorsTemplate,
		".gitignore":            gitignoreTemplate,
		"static/css/custom.css": customCSSTemplate,
	}

	for _, locale := range opts.Locales {
		about, post := localizedSamples(locale)
		files["content/"+locale+"/pages/about.md"] = about
		if !opts.Minimal {
			files["content/"+locale+"/blog/{{.Date}}-hello-world.md"] = post
		}
	}

	if !opts.Minimal {
		files["static/img/feature-build.svg"] = featureBuildSVG
		files["static/img/feature-write.svg"] = featureWriteSVG
		files["static/img/feature-ship.svg"] = featureShipSVG
	}

	return files
}

// localizedSamples returns the about page and sample post for a locale.
// Locales without a translation fall back to the English samples.
func localizedSamples(locale string) (about, post string) {
	if locale == "de" {
		return aboutPageDE, samplePostDE
	}
	return aboutPageEN, samplePostEN
}

const configTemplate = `site:
  title: "{{.Title}}"
  tagline: "{{.Tagline}}"
  url: "{{.URL}}"
  base_url: "/"

navbar:
  items:
    - label: "Blog"
      to: "/blog/"
    - label: "About"
      to: "/about/"

footer:
  copyright: "Copyright © {{.Year}} {{.Title}}"
  groups:
    - title: "Content"
      items:
        - label: "Blog"
          to: "/blog/"
        - label: "Archive"
          to: "/blog/archive/"

theme:
  default_mode: "light"
  respect_os_preference: true
  highlight_style: "github"

blog:
  route_base: "/blog"
  posts_per_page: 10
  feeds: [rss, atom]
  truncate_marker: "<!--truncate-->"

i18n:
  default_locale: "{{.DefaultLocale}}"
  locales: [{{range $i, $l := .Locales}}{{if $i}}, {{end}}{{$l}}{{end}}]

links:
  on_broken_links: "throw"
  on_broken_anchors: "warn"

features:
  - title: "Write"
    icon: "/img/feature-write.svg"
    description: "Posts are plain Markdown files with front matter."
  - title: "Build"
    icon: "/img/feature-build.svg"
    description: "One binary renders the whole site in milliseconds."
  - title: "Ship"
    icon: "/img/feature-ship.svg"
    description: "The output is static files, host them anywhere."
`

const authorsTemplate = `# Author keys referenced from post front matter.
me:
  name: "{{.Title}}"
  title: "Site author"
  url: "{{.URL}}"
`

const gitignoreTemplate = `public/
`

const customCSSTemplate = `/* Site-specific overrides. Loaded after the base stylesheet. */
`

const aboutPageEN = `---
title: About
---

# About

Tell your readers who you are and what you work on.
`

const aboutPageDE = `---
title: Über mich
---

# Über mich

Erzähle deinen Lesern, wer du bist und woran du arbeitest.
`

const samplePostEN = `---
title: Hello World
slug: hello-world
authors: me
tags: [meta]
description: The first post on this site.
---

Welcome to your new site. This first paragraph appears in the blog index.

<!--truncate-->

Everything after the marker only shows on the post page itself.

## Next steps

Edit this file under ` + "`content/`" + ` or add a new one. The development
server reloads the browser on every save.
`

const samplePostDE = `---
title: Hallo Welt
slug: hello-world
authors: me
tags: [meta]
description: Der erste Beitrag auf dieser Seite.
---

Willkommen auf deiner neuen Seite. Dieser erste Absatz erscheint im Blog-Index.

<!--truncate-->

Alles nach der Markierung erscheint nur auf der Beitragsseite selbst.

## Nächste Schritte

Bearbeite diese Datei unter ` + "`content/`" + ` oder lege eine neue an. Der
Entwicklungsserver lädt den Browser bei jedem Speichern neu.
`

const featureWriteSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64" width="64" height="64">
  <rect x="10" y="8" width="44" height="48" rx="4" fill="#e8f5e9" stroke="#2e8555" stroke-width="2"/>
  <line x1="18" y1="20" x2="46" y2="20" stroke="#2e8555" stroke-width="2"/>
  <line x1="18" y1="30" x2="46" y2="30" stroke="#2e8555" stroke-width="2"/>
  <line x1="18" y1="40" x2="36" y2="40" stroke="#2e8555" stroke-width="2"/>
</svg>
`

const featureBuildSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64" width="64" height="64">
  <polygon points="32,6 58,20 58,44 32,58 6,44 6,20" fill="#e8f5e9" stroke="#2e8555" stroke-width="2"/>
  <polyline points="6,20 32,34 58,20" fill="none" stroke="#2e8555" stroke-width="2"/>
  <line x1="32" y1="34" x2="32" y2="58" stroke="#2e8555" stroke-width="2"/>
</svg>
`

const featureShipSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64" width="64" height="64">
  <path d="M8 40 L32 46 L56 40 L50 52 L14 52 Z" fill="#e8f5e9" stroke="#2e8555" stroke-width="2"/>
  <path d="M32 10 L32 42 M32 10 L48 34 L32 30 M32 10 L16 34 L32 30" fill="none" stroke="#2e8555" stroke-width="2"/>
</svg>
`
