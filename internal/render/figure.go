// Package render turns backend-neutral figures into files.
//
// Charts describe what to draw as a Figure: a grid of panels holding styled
// points, plus an optional shared legend or color bar. Writers then produce
// raster images and vector documents through gonum/plot, and interactive
// HTML documents through go-echarts.
package render

import (
	"image/color"

	"gonum.org/v1/plot/palette"
)

// Figure is a grid of panels with an optional shared legend.
type Figure struct {
	// ID identifies the figure; HTML output derives element ids from it.
	ID    string
	Title string

	// Grid holds panels by row. Rows may be shorter than the widest row.
	Grid [][]*Panel

	// PanelWidth and PanelHeight are the size of one grid cell in pixels.
	PanelWidth  int
	PanelHeight int

	Legend *Legend
}

// Panel is one scatter plot.
type Panel struct {
	Title  string
	XLabel string
	YLabel string

	Points []Point

	// XTicks replaces the automatic x-axis ticks when non-empty.
	XTicks   []Tick
	XRange   *Range
	ShowGrid bool

	// Tooltips lists the hover labels every point carries, in display order.
	Tooltips []string
}

// Point is one drawn marker.
type Point struct {
	X, Y  float64
	Color color.Color
	// Alpha is the opacity in [0, 1].
	Alpha float64
	// Size is the marker diameter in pixels.
	Size float64
	// Group names the legend entry or color band the point belongs to.
	Group string
	// Hover holds one value per label of the panel's Tooltips.
	Hover []string
	// Value is the number mapped through the figure's color bar, NaN when
	// the point has none. Ignored without a color bar.
	Value float64
}

// Tick is an axis tick at a data coordinate.
type Tick struct {
	Value float64
	Label string
}

// Range is a closed axis interval.
type Range struct {
	Min, Max float64
}

// Legend is shared by every panel of a figure. Exactly one of Entries and
// ColorBar is used.
type Legend struct {
	Title    string
	Entries  []LegendEntry
	ColorBar *ColorBar
}

// LegendEntry is one categorical swatch.
type LegendEntry struct {
	Label string
	Color color.Color
}

// ColorBar is a continuous legend drawn from a gonum color map.
type ColorBar struct {
	Map palette.ColorMap
}

// Columns returns the width of the widest grid row.
func (f *Figure) Columns() int {
	n := 0
	for _, row := range f.Grid {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Panels returns every panel in row-major order.
func (f *Figure) Panels() []*Panel {
	var out []*Panel
	for _, row := range f.Grid {
		out = append(out, row...)
	}
	return out
}

// withAlpha returns c with its alpha channel replaced.
func withAlpha(c color.Color, alpha float64) color.NRGBA {
	if c == nil {
		c = color.Black
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	n.A = uint8(alpha*255 + 0.5)
	return n
}
