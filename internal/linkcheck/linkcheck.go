// Package linkcheck validates internal references in the generated site.
// It parses every emitted document, resolves internal hrefs against the set
// of generated routes and assets, and verifies fragment anchors against the
// heading ids of the target page. External URLs are never fetched.
package linkcheck

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/stanza-dev/stanza/internal/build"
	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/logging"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/types"
)

// Checker validates links per the configured broken-link policies.
type Checker struct {
	cfg    *config.Config
	logger logging.Logger
}

// New creates a link checker.
func New(cfg *config.Config, logger logging.Logger) *Checker {
	return &Checker{cfg: cfg, logger: logger.WithComponent("linkcheck")}
}

// Check scans every built document and records policy violations in the
// returned collector. Callers fail the build when the collector has errors.
func (c *Checker) Check(ctx context.Context, result *build.Result) *errors.ErrorCollector {
	collector := errors.NewErrorCollector()

	targets := make(map[string]bool, len(result.Documents)+len(result.Assets))
	for route := range result.Documents {
		targets[route] = true
	}
	for _, asset := range result.Assets {
		targets[asset] = true
	}

	checked := 0
	for route, doc := range result.Documents {
		refs, err := extractRefs(doc)
		if err != nil {
			collector.Add(errors.BuildError{
				Route:    route,
				Message:  "parsing generated html: " + err.Error(),
				Severity: errors.ErrorSeverityError,
			})
			continue
		}
		for _, ref := range refs {
			c.checkRef(collector, targets, result.Anchors, route, ref)
			checked++
		}
	}

	c.logger.Info(ctx, "link check finished",
		"documents", len(result.Documents),
		"references", checked,
		"broken", len(collector.GetErrors()),
	)
	return collector
}

// CheckAuthors reports front matter author keys missing from the authors
// file. Unknown authors are warnings like broken anchors; they never fail
// the build unless the anchor policy says throw.
func (c *Checker) CheckAuthors(reg *registry.ContentRegistry, authors map[string]types.Author) *errors.ErrorCollector {
	collector := errors.NewErrorCollector()
	severity, report := c.severityFor(c.cfg.Links.OnBrokenAnchors)
	if !report {
		return collector
	}

	for _, page := range reg.GetAll() {
		for _, key := range page.Authors {
			if _, ok := authors[key]; !ok {
				collector.Add(errors.BuildError{
					Route:    page.Route,
					File:     page.SourcePath,
					Message:  "unknown author " + key,
					Severity: severity,
				})
			}
		}
	}
	return collector
}

func (c *Checker) checkRef(collector *errors.ErrorCollector, targets map[string]bool, anchors map[string][]string, route, ref string) {
	if isExternal(ref) {
		return
	}

	target, fragment, _ := strings.Cut(ref, "#")
	if target == "" {
		// Same-page fragment
		target = route
	}
	if !strings.HasPrefix(target, "/") {
		// Relative links are resolved against the current route
		target = route + target
	}
	target = normalize(target)

	if !targets[target] {
		if severity, report := c.severityFor(c.cfg.Links.OnBrokenLinks); report {
			collector.Add(errors.BuildError{
				Route:    route,
				Message:  "broken internal link " + ref,
				Severity: severity,
			})
		}
		return
	}

	if fragment == "" {
		return
	}
	if !hasAnchor(anchors[target], fragment) {
		if severity, report := c.severityFor(c.cfg.Links.OnBrokenAnchors); report {
			collector.Add(errors.BuildError{
				Route:    route,
				Message:  "broken anchor " + ref,
				Severity: severity,
			})
		}
	}
}

func (c *Checker) severityFor(policy string) (errors.ErrorSeverity, bool) {
	switch policy {
	case config.PolicyIgnore:
		return 0, false
	case config.PolicyWarn:
		return errors.ErrorSeverityWarning, true
	default:
		return errors.ErrorSeverityError, true
	}
}

// extractRefs collects checkable references from a document: anchor hrefs,
// image and script sources, and stylesheet or icon links. Locale alternates
// and feed links in the head are emitted per locale and skipped here.
func extractRefs(doc string) ([]string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href, ok := attr(n, "href"); ok && href != "" {
					refs = append(refs, href)
				}
			case "img", "script":
				if src, ok := attr(n, "src"); ok && src != "" {
					refs = append(refs, src)
				}
			case "link":
				rel, _ := attr(n, "rel")
				if rel == "stylesheet" || rel == "icon" {
					if href, ok := attr(n, "href"); ok && href != "" {
						refs = append(refs, href)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return refs, nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "tel:") ||
		strings.HasPrefix(ref, "data:")
}

// normalize maps a link target onto the route form the builder emits:
// extensionless targets are directory routes with a trailing slash.
func normalize(target string) string {
	if target == "/" {
		return target
	}
	last := target[strings.LastIndex(target, "/")+1:]
	if strings.Contains(last, ".") {
		// Asset path, keep as is
		return target
	}
	if !strings.HasSuffix(target, "/") {
		return target + "/"
	}
	return target
}

func hasAnchor(anchors []string, fragment string) bool {
	for _, anchor := range anchors {
		if anchor == fragment {
			return true
		}
	}
	return false
}
