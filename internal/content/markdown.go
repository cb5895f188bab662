package content

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Markdown wraps a configured goldmark instance. One instance is shared per
// build; goldmark conversion is safe for concurrent use.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds the Markdown converter used for every document: GitHub
// flavored extensions, fenced-code highlighting through chroma, automatic
// heading anchors, and raw HTML passthrough (posts embed figures and the
// truncate marker as HTML comments).
func NewMarkdown(highlightStyle string) *Markdown {
	if highlightStyle == "" {
		highlightStyle = "github"
	}
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(highlightStyle),
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				ghtml.WithUnsafe(),
			),
		),
	}
}

// Render converts a Markdown body to HTML.
func (m *Markdown) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// Anchors parses a Markdown body and returns the heading anchor IDs the
// renderer will emit, in document order. The link checker validates
// #fragment references against this set.
func (m *Markdown) Anchors(source string) []string {
	reader := text.NewReader([]byte(source))
	doc := m.md.Parser().Parse(reader)

	var anchors []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); !ok {
			return ast.WalkContinue, nil
		}
		if id, ok := n.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				anchors = append(anchors, string(b))
			}
		}
		return ast.WalkContinue, nil
	})
	return anchors
}

// ValidateHighlightLanguages checks every configured syntax-highlighting
// language against the chroma lexer registry.
func ValidateHighlightLanguages(langs []string) error {
	var unknown []string
	for _, lang := range langs {
		if lexers.Get(lang) == nil {
			unknown = append(unknown, lang)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("no syntax highlighter for: %s", strings.Join(unknown, ", "))
	}
	return nil
}
