package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// pixel is the length of one CSS pixel (1/96 inch).
const pixel = vg.Inch / 96

// legendWidth is the width reserved beside the grid for a legend or color bar.
const legendWidth = 140 * pixel

// Size returns the canvas size of the figure including its legend.
func (f *Figure) Size() (vg.Length, vg.Length) {
	w := vg.Length(f.Columns()*f.PanelWidth) * pixel
	h := vg.Length(len(f.Grid)*f.PanelHeight) * pixel
	if f.Legend != nil {
		w += legendWidth
	}
	if w <= 0 {
		w = 100 * pixel
	}
	if h <= 0 {
		h = 100 * pixel
	}
	return w, h
}

// writeStatic draws the figure with gonum/plot and encodes it as format.
func writeStatic(f *Figure, w io.Writer, format Format) error {
	width, height := f.Size()

	var (
		canvas vg.CanvasWriterTo
		dc     draw.Canvas
	)
	switch format {
	case FormatPNG:
		c := vgimg.New(width, height)
		canvas, dc = vgimg.PngCanvas{Canvas: c}, draw.New(c)
	case FormatJPEG:
		c := vgimg.New(width, height)
		canvas, dc = vgimg.JpegCanvas{Canvas: c}, draw.New(c)
	case FormatSVG:
		c := vgsvg.New(width, height)
		canvas, dc = c, draw.New(c)
		fillBackground(dc)
	case FormatPDF:
		c := vgpdf.New(width, height)
		canvas, dc = c, draw.New(c)
		fillBackground(dc)
	default:
		return fmt.Errorf("format %s is not a static format", format)
	}

	if err := drawFigure(f, dc); err != nil {
		return err
	}
	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

func fillBackground(dc draw.Canvas) {
	r := dc.Rectangle
	dc.FillPolygon(color.White, []vg.Point{
		r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y},
	})
}

// drawFigure lays the panels out on a grid and the legend to its right.
func drawFigure(f *Figure, dc draw.Canvas) error {
	area := dc
	if f.Legend != nil {
		area = draw.Crop(dc, 0, -legendWidth, 0, 0)
		legendArea := draw.Crop(dc, dc.Max.X-dc.Min.X-legendWidth, 0, 0, 0)
		lp, err := legendPlot(f.Legend)
		if err != nil {
			return err
		}
		lp.Draw(legendArea)
	}

	cols := f.Columns()
	if cols == 0 {
		return nil
	}
	tiles := draw.Tiles{
		Rows: len(f.Grid),
		Cols: cols,
		PadX: 2 * vg.Millimeter,
		PadY: 2 * vg.Millimeter,
	}
	for r, row := range f.Grid {
		for c, panel := range row {
			p, err := panelPlot(panel)
			if err != nil {
				return err
			}
			p.Draw(tiles.At(area, c, r))
		}
	}
	return nil
}

// panelPlot builds the gonum plot for one panel.
func panelPlot(panel *Panel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.X.Label.Text = panel.XLabel
	p.Y.Label.Text = panel.YLabel

	if panel.ShowGrid {
		p.Add(plotter.NewGrid())
	}
	if len(panel.Points) > 0 {
		xys := make(plotter.XYs, len(panel.Points))
		for i, pt := range panel.Points {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("build scatter: %w", err)
		}
		points := panel.Points
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return glyph(points[i].Color, points[i].Alpha, points[i].Size)
		}
		p.Add(sc)
	}

	if panel.XRange != nil {
		p.X.Min, p.X.Max = panel.XRange.Min, panel.XRange.Max
	}
	if len(panel.XTicks) > 0 {
		ticks := make([]plot.Tick, len(panel.XTicks))
		for i, t := range panel.XTicks {
			ticks[i] = plot.Tick{Value: t.Value, Label: t.Label}
		}
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	}
	return p, nil
}

func glyph(c color.Color, alpha, size float64) draw.GlyphStyle {
	if size <= 0 {
		size = 4
	}
	return draw.GlyphStyle{
		Color:  withAlpha(c, alpha),
		Radius: vg.Length(size/2) * pixel,
		Shape:  draw.CircleGlyph{},
	}
}

// legendPlot builds an axis-free plot holding the legend entries, or a
// plot holding only a vertical color bar.
func legendPlot(l *Legend) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = l.Title

	if l.ColorBar != nil {
		p.HideX()
		p.Y.Padding = 0
		// A color bar needs a non-empty range.
		if m := l.ColorBar.Map; m != nil && m.Max() > m.Min() {
			p.Add(&plotter.ColorBar{ColorMap: m, Vertical: true})
		}
		return p, nil
	}

	p.HideAxes()
	p.Legend.Top = true
	p.Legend.Left = true
	for _, e := range l.Entries {
		swatch, err := plotter.NewScatter(plotter.XYs{{}})
		if err != nil {
			return nil, fmt.Errorf("build legend swatch: %w", err)
		}
		swatch.GlyphStyle = glyph(e.Color, 1, 8)
		p.Legend.Add(e.Label, swatch)
	}
	return p, nil
}
