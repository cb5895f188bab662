package renderer

import (
	"context"
	"io"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
)

// Component adapts a gomponents node to a templ.Component so pages can be
// served with templ.Handler. Rendering ignores the context; page nodes are
// pure data.
func Component(node g.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return node.Render(w)
	})
}
