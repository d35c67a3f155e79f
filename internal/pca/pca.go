// Package pca draws principal component scatter grids: one subplot per
// pair of component columns, colored by a categorical or continuous column
// and sharing a single legend.
package pca

import (
	"context"
	"image/color"
	"math"

	"github.com/go-gota/gota/series"

	"github.com/ArashLab/caplot/internal/chart"
	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/palette"
	"github.com/ArashLab/caplot/internal/render"
	"github.com/ArashLab/caplot/internal/table"
)

// missingLabel names the category of rows without a coloring value.
const missingLabel = "NA"

var missingColor = color.Gray{Y: 0xaa}

// Chart is a PCA scatter grid.
type Chart struct {
	*chart.Base
	opts Options
}

// New creates a chart with DefaultOptions.
func New(opts ...chart.Option) *Chart {
	return &Chart{Base: chart.NewBase(opts...), opts: DefaultOptions()}
}

// Configure validates o and replaces the configuration. An invalid o
// leaves the previous configuration in place.
func (c *Chart) Configure(o Options) error {
	if err := o.validate(); err != nil {
		return err
	}
	o.ColoringStyle, _ = ParseStyle(string(o.ColoringStyle))
	c.opts = o
	return nil
}

// Options returns the current configuration.
func (c *Chart) Options() Options {
	return c.opts
}

// Plan returns the subplot layout for the current configuration.
func (c *Chart) Plan() (Plan, error) {
	return LayoutPlan(c.opts.Subplots, c.opts.ColumnsPerRow)
}

// coloring is the resolved color of every row plus the shared legend.
type coloring struct {
	colors []color.Color
	groups []string
	// values are the continuous coloring values, nil otherwise.
	values []float64
	legend *render.Legend
}

// Render builds the subplot grid from the processed rows.
func (c *Chart) Render(ctx context.Context) (*render.Figure, error) {
	o := c.opts
	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}
	rows, err := c.ProcessedRows()
	if err != nil {
		return nil, err
	}
	for _, p := range plan.Pairs() {
		for _, col := range p {
			if !rows.HasColumn(col) {
				return nil, errs.NewUnknownColumnError(col)
			}
		}
	}

	col, err := c.coloring(rows)
	if err != nil {
		return nil, err
	}
	alpha, err := rows.Floats(chart.AlphaColumn)
	if err != nil {
		return nil, err
	}
	hovers := c.Hovers()
	hoverValues, err := hovers.Values(rows)
	if err != nil {
		return nil, err
	}

	grid := make([][]*render.Panel, len(plan))
	for r, planRow := range plan {
		grid[r] = make([]*render.Panel, len(planRow))
		for i, p := range planRow {
			panel, err := c.draw(rows, p, col, alpha, hovers.Labels(), hoverValues)
			if err != nil {
				return nil, err
			}
			grid[r][i] = panel
		}
	}

	c.Logger().Info("pca rendered", "subplots", plan.Len(), "rows", rows.Len())
	return &render.Figure{
		ID:          c.NewFigureID(),
		Title:       o.Title,
		Grid:        grid,
		PanelWidth:  o.SubplotWidth,
		PanelHeight: o.SubplotHeight,
		Legend:      col.legend,
	}, nil
}

// draw builds the subplot for one pair. Rows missing either coordinate
// are left out.
func (c *Chart) draw(rows *table.Table, p Pair, col coloring, alpha []float64, labels []string, hoverValues [][]string) (*render.Panel, error) {
	x, err := rows.Floats(p[0])
	if err != nil {
		return nil, err
	}
	y, err := rows.Floats(p[1])
	if err != nil {
		return nil, err
	}
	panel := &render.Panel{
		XLabel:   p[0],
		YLabel:   p[1],
		ShowGrid: true,
		Tooltips: labels,
		Points:   make([]render.Point, 0, len(x)),
	}
	skipped := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			skipped++
			continue
		}
		v := math.NaN()
		if col.values != nil {
			v = col.values[i]
		}
		panel.Points = append(panel.Points, render.Point{
			X:     x[i],
			Y:     y[i],
			Color: col.colors[i],
			Alpha: alpha[i],
			Size:  c.opts.PointSize,
			Group: col.groups[i],
			Hover: hoverValues[i],
			Value: v,
		})
	}
	if skipped > 0 {
		c.Logger().Debug("rows without coordinates skipped", "x", p[0], "y", p[1], "rows", skipped)
	}
	return panel, nil
}

// Style returns the coloring style for rows: the configured one, or
// Categorical when the coloring column is textual or has at most
// MaxInferredCategories distinct values, Continuous otherwise.
func (c *Chart) Style(rows *table.Table) (palette.Kind, error) {
	o := c.opts
	if o.ColoringStyle != "" {
		return o.ColoringStyle, nil
	}
	typ, err := rows.Type(o.ColoringColumn)
	if err != nil {
		return "", errs.NewUnknownColumnError(o.ColoringColumn)
	}
	if typ == series.String || typ == series.Bool {
		return palette.Categorical, nil
	}
	distinct, err := rows.Distinct(o.ColoringColumn)
	if err != nil {
		return "", err
	}
	if len(distinct) <= MaxInferredCategories {
		return palette.Categorical, nil
	}
	return palette.Continuous, nil
}

func (c *Chart) coloring(rows *table.Table) (coloring, error) {
	o := c.opts
	n := rows.Len()
	if o.ColoringColumn == "" {
		pal, err := palette.Lookup(DefaultPalette(palette.Categorical))
		if o.ColoringPalette != "" {
			pal, err = palette.Lookup(o.ColoringPalette)
		}
		if err != nil {
			return coloring{}, err
		}
		out := coloring{colors: make([]color.Color, n), groups: make([]string, n)}
		for i := range out.colors {
			out.colors[i] = pal.Color(0)
		}
		return out, nil
	}
	if !rows.HasColumn(o.ColoringColumn) {
		return coloring{}, errs.NewUnknownColumnError(o.ColoringColumn)
	}

	style, err := c.Style(rows)
	if err != nil {
		return coloring{}, err
	}
	name := o.ColoringPalette
	if name == "" {
		name = DefaultPalette(style)
	}
	pal, err := palette.Lookup(name)
	if err != nil {
		return coloring{}, err
	}
	if err := checkFamily(pal, style); err != nil {
		return coloring{}, err
	}

	if style == palette.Continuous {
		return continuousColoring(rows, o.ColoringColumn, pal)
	}
	return categoricalColoring(rows, o.ColoringColumn, pal)
}

// categoricalColoring assigns palette colors to factors in first-seen order.
func categoricalColoring(rows *table.Table, column string, pal *palette.Palette) (coloring, error) {
	values, err := rows.Strings(column)
	if err != nil {
		return coloring{}, err
	}
	var factors []string
	level := make(map[string]int)
	for i, v := range values {
		if v == "" {
			v = missingLabel
			values[i] = v
		}
		if _, ok := level[v]; !ok {
			level[v] = len(factors)
			factors = append(factors, v)
		}
	}
	colors, err := pal.Colors(len(factors))
	if err != nil {
		return coloring{}, err
	}

	out := coloring{
		colors: make([]color.Color, len(values)),
		groups: values,
		legend: &render.Legend{Title: column},
	}
	for i, v := range values {
		out.colors[i] = colors[level[v]]
	}
	for i, f := range factors {
		out.legend.Entries = append(out.legend.Entries, render.LegendEntry{Label: f, Color: colors[i]})
	}
	return out, nil
}

// continuousColoring maps values linearly over their [min, max] range.
// Missing values are drawn gray.
func continuousColoring(rows *table.Table, column string, pal *palette.Palette) (coloring, error) {
	values, err := rows.Floats(column)
	if err != nil {
		return coloring{}, err
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	cm := pal.Scale(lo, hi)

	out := coloring{
		colors: make([]color.Color, len(values)),
		groups: make([]string, len(values)),
		values: values,
		legend: &render.Legend{Title: column, ColorBar: &render.ColorBar{Map: cm}},
	}
	for i, v := range values {
		if math.IsNaN(v) {
			out.colors[i] = missingColor
			continue
		}
		out.colors[i] = cm.Color(v)
	}
	return out, nil
}
