// Package i18n handles the site's locale set: route prefixing for
// non-default locales, locale negotiation for the development server, and
// the small set of translated UI labels used by the theme.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Locales describes the configured locale set. The default locale is served
// from the site root; every other locale is served under /<tag>/.
type Locales struct {
	Default string
	All     []string
	matcher language.Matcher
	tags    []language.Tag
}

// New parses the configured locale tags. The default locale is moved to the
// front so the matcher prefers it.
func New(defaultLocale string, all []string) (*Locales, error) {
	ordered := []string{defaultLocale}
	for _, tag := range all {
		if tag != defaultLocale {
			ordered = append(ordered, tag)
		}
	}

	tags := make([]language.Tag, 0, len(ordered))
	for _, raw := range ordered {
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", raw, err)
		}
		tags = append(tags, tag)
	}

	return &Locales{
		Default: defaultLocale,
		All:     ordered,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// RoutePrefix returns the path prefix for a locale: "" for the default
// locale, "/de" for an alternate.
func (l *Locales) RoutePrefix(locale string) string {
	if locale == l.Default {
		return ""
	}
	return "/" + locale
}

// Localize prefixes a site-relative route with the locale prefix.
func (l *Locales) Localize(locale, route string) string {
	prefix := l.RoutePrefix(locale)
	if prefix == "" {
		return route
	}
	if route == "/" {
		return prefix + "/"
	}
	return prefix + route
}

// Match negotiates the best configured locale for an Accept-Language header.
func (l *Locales) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return l.Default
	}
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return l.Default
	}
	_, index, _ := l.matcher.Match(desired...)
	return l.All[index]
}

// DisplayName returns a locale's name in its own language, for the locale
// dropdown ("English", "Deutsch").
func (l *Locales) DisplayName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	name := display.Self.Name(tag)
	if name == "" {
		return locale
	}
	return name
}

// Contains reports whether the locale is configured.
func (l *Locales) Contains(locale string) bool {
	for _, tag := range l.All {
		if tag == locale {
			return true
		}
	}
	return false
}

// labels holds the theme's translated UI strings keyed by locale.
var labels = map[string]map[string]string{
	"en": {
		"blog":         "Blog",
		"tags":         "Tags",
		"archive":      "Archive",
		"read_more":    "Read more",
		"all_posts":    "All posts",
		"posts_tagged": "posts tagged",
		"newer":        "Newer entries",
		"older":        "Older entries",
		"one_post":     "One post",
		"posts":        "posts",
	},
	"de": {
		"blog":         "Blog",
		"tags":         "Schlagwörter",
		"archive":      "Archiv",
		"read_more":    "Weiterlesen",
		"all_posts":    "Alle Beiträge",
		"posts_tagged": "Beiträge mit dem Schlagwort",
		"newer":        "Neuere Einträge",
		"older":        "Ältere Einträge",
		"one_post":     "Ein Beitrag",
		"posts":        "Beiträge",
	},
}

// Label returns a translated UI string, falling back to English, then to the
// key itself so a missing translation never breaks a build.
func Label(locale, key string) string {
	if m, ok := labels[baseTag(locale)]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := labels["en"][key]; ok {
		return s
	}
	return key
}

func baseTag(locale string) string {
	if i := strings.IndexByte(locale, '-'); i > 0 {
		return locale[:i]
	}
	return locale
}
