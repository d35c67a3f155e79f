package chart

import (
	"context"

	"github.com/ArashLab/caplot/internal/render"
)

// Renderer is a chart that can produce a figure.
type Renderer interface {
	Render(ctx context.Context) (*render.Figure, error)
}

// Export renders c and writes it to path, returning the files written.
// The output kind follows the suffix: image (.png, .jpg, .jpeg), vector
// document (.svg, .pdf) or markup document (.html, .htm). A path without
// a suffix writes every format. An unknown suffix fails with
// UNSUPPORTED_EXPORT_FORMAT before anything is rendered.
func Export(ctx context.Context, c Renderer, path string) ([]string, error) {
	if _, err := render.Targets(path); err != nil {
		return nil, err
	}
	fig, err := c.Render(ctx)
	if err != nil {
		return nil, err
	}
	return render.Save(fig, path)
}
