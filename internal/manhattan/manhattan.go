// Package manhattan draws genome-wide association results: one point per
// variant at its global genome coordinate, with the p-value (usually as
// -log10) on the y axis and alternating colors per contig.
package manhattan

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ArashLab/caplot/internal/annotate"
	"github.com/ArashLab/caplot/internal/chart"
	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/genome"
	"github.com/ArashLab/caplot/internal/palette"
	"github.com/ArashLab/caplot/internal/render"
	"github.com/ArashLab/caplot/internal/table"
)

// Annotator fetches annotation records for variant identifiers. The
// returned table's first column holds the identifiers.
type Annotator interface {
	Annotate(ctx context.Context, ids []string, fields []string) (*table.Table, error)
}

// Chart is a Manhattan plot.
type Chart struct {
	*chart.Base

	registry  *genome.Registry
	opts      Options
	ref       *genome.Reference
	pal       *palette.Palette
	annotator Annotator
}

// New creates a chart over the builds in registry with DefaultOptions.
// When the registry lacks the default build, its first build is used.
func New(registry *genome.Registry, opts ...chart.Option) (*Chart, error) {
	c := &Chart{Base: chart.NewBase(opts...), registry: registry}
	o := DefaultOptions()
	if _, err := registry.Reference(o.Genome); err != nil && len(registry.Builds()) > 0 {
		o.Genome = registry.Builds()[0]
	}
	if err := c.Configure(o); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure validates o and replaces the configuration. An invalid o
// leaves the previous configuration in place.
func (c *Chart) Configure(o Options) error {
	ref, pal, err := o.validate(c.registry)
	if err != nil {
		return err
	}
	if o.Annotation != nil {
		a := *o.Annotation
		a.Fields = append([]string(nil), a.Fields...)
		o.Annotation = &a
	}
	c.opts, c.ref, c.pal = o, ref, pal
	return nil
}

// Options returns the current configuration.
func (c *Chart) Options() Options {
	return c.opts
}

// SetAnnotator sets the annotation source. Without one, a chart with
// annotation enabled uses an annotate.Client for the configured endpoint.
func (c *Chart) SetAnnotator(a Annotator) {
	c.annotator = a
}

// GlobalPosition places (contig, position) on the linear genome axis of
// the configured build: the contig's cumulative offset plus position.
func (c *Chart) GlobalPosition(contig string, position float64) (float64, error) {
	return c.ref.GlobalPosition(contig, position)
}

// point is a prepared row.
type point struct {
	x, y, alpha float64
	contig      genome.Contig
}

// Render builds the figure from the processed rows.
func (c *Chart) Render(ctx context.Context) (*render.Figure, error) {
	o := c.opts
	rows, err := c.ProcessedRows()
	if err != nil {
		return nil, err
	}
	for _, col := range []string{o.ContigColumn, o.PositionColumn, o.PValueColumn} {
		if !rows.HasColumn(col) {
			return nil, errs.NewUnknownColumnError(col)
		}
	}

	rows, err = c.dropMissing(rows)
	if err != nil {
		return nil, err
	}
	// Significance order: smallest p first under the log transform,
	// largest raw value first otherwise.
	bySignificance, err := rows.SortByFloat(o.PValueColumn, !o.NegativeLog10)
	if err != nil {
		return nil, err
	}
	if o.TopN > 0 {
		rows = bySignificance.Head(o.TopN)
		bySignificance = rows
	}

	hovers := c.Hovers()
	if o.Annotation != nil {
		rows, hovers, err = c.annotate(ctx, rows, bySignificance, hovers)
		if err != nil {
			return nil, err
		}
	}

	points, err := c.points(rows)
	if err != nil {
		return nil, err
	}
	hoverValues, err := hovers.Values(rows)
	if err != nil {
		return nil, err
	}
	colors, _ := c.pal.Colors(o.ColorCount)

	panel := &render.Panel{
		Title:    o.Title,
		XLabel:   "Chromosome",
		YLabel:   o.PValueColumn,
		XRange:   &render.Range{Min: 0, Max: float64(c.ref.Length())},
		ShowGrid: false,
		Tooltips: hovers.Labels(),
		Points:   make([]render.Point, len(points)),
	}
	if o.NegativeLog10 {
		panel.YLabel = "-log10(" + o.PValueColumn + ")"
	}
	for _, t := range c.ref.Ticks() {
		panel.XTicks = append(panel.XTicks, render.Tick{Value: t.Position, Label: t.Label})
	}
	for i, pt := range points {
		panel.Points[i] = render.Point{
			X:     pt.x,
			Y:     pt.y,
			Color: colors[pt.contig.Index%o.ColorCount],
			Alpha: pt.alpha,
			Size:  o.PointSize,
			Group: pt.contig.Name,
			Hover: hoverValues[i],
		}
	}

	c.Logger().Info("manhattan rendered", "points", len(points), "genome", c.ref.Build)
	return &render.Figure{
		ID:          c.NewFigureID(),
		Title:       o.Title,
		Grid:        [][]*render.Panel{{panel}},
		PanelWidth:  o.Width,
		PanelHeight: o.Height,
	}, nil
}

// dropMissing removes rows whose p-value is missing.
func (c *Chart) dropMissing(rows *table.Table) (*table.Table, error) {
	p, err := rows.Floats(c.opts.PValueColumn)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, len(p))
	for i, v := range p {
		if !math.IsNaN(v) {
			keep = append(keep, i)
		}
	}
	if dropped := len(p) - len(keep); dropped > 0 {
		c.Logger().Warn("rows without a p-value dropped", "column", c.opts.PValueColumn, "rows", dropped)
		return rows.Take(keep), nil
	}
	return rows, nil
}

// points derives x, y, contig and alpha for every row.
func (c *Chart) points(rows *table.Table) ([]point, error) {
	o := c.opts
	contigs, err := rows.Strings(o.ContigColumn)
	if err != nil {
		return nil, err
	}
	positions, err := rows.Floats(o.PositionColumn)
	if err != nil {
		return nil, err
	}
	pvalues, err := rows.Floats(o.PValueColumn)
	if err != nil {
		return nil, err
	}
	alpha, err := rows.Floats(chart.AlphaColumn)
	if err != nil {
		return nil, err
	}

	out := make([]point, rows.Len())
	for i := range out {
		y := pvalues[i]
		if o.NegativeLog10 {
			if y <= 0 {
				return nil, errs.New(errs.CodeInvalidValue, "p-value %v is not positive and has no logarithm", y).
					With("column", o.PValueColumn)
			}
			y = -math.Log10(y)
		}
		contig, err := c.ref.Contig(contigs[i])
		if err != nil {
			return nil, err
		}
		x, err := c.ref.GlobalPosition(contigs[i], positions[i])
		if err != nil {
			return nil, err
		}
		out[i] = point{x: x, y: y, alpha: alpha[i], contig: contig}
	}
	return out, nil
}

// annotate fetches annotations for the non-dimmed rows, most significant
// first, and joins them onto rows. Each field becomes a hover.
func (c *Chart) annotate(ctx context.Context, rows, bySignificance *table.Table, hovers chart.HoverMap) (*table.Table, chart.HoverMap, error) {
	a := c.opts.Annotation
	if !rows.HasColumn(a.IDColumn) {
		return nil, hovers, errs.NewUnknownColumnError(a.IDColumn)
	}
	for _, f := range a.Fields {
		if rows.HasColumn(f) {
			return nil, hovers, invalidOption("annotation.fields", "annotation field %q is already a dataset column", f)
		}
	}

	ids, err := annotationIDs(bySignificance, a.IDColumn)
	if err != nil {
		return nil, hovers, err
	}

	annotator := c.annotator
	if annotator == nil {
		annotator = annotate.NewClient(a.Endpoint, annotate.WithLogger(c.Logger()))
	}
	ann, err := annotator.Annotate(ctx, ids, a.Fields)
	if err != nil {
		return nil, hovers, err
	}
	if len(ann.Names()) == 0 {
		return nil, hovers, fmt.Errorf("annotation table has no identifier column")
	}

	joined, err := rows.LeftJoin(ann, a.IDColumn, ann.Names()[0])
	if err != nil {
		return nil, hovers, err
	}
	for _, f := range a.Fields {
		hovers.Set(FieldLabel(f), f)
	}
	return joined, hovers, nil
}

// annotationIDs returns the distinct identifiers of non-dimmed rows in row
// order, at most annotate.BatchLimit of them.
func annotationIDs(rows *table.Table, column string) ([]string, error) {
	values, err := rows.Strings(column)
	if err != nil {
		return nil, err
	}
	alpha, err := rows.Floats(chart.AlphaColumn)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var ids []string
	for i, id := range values {
		if alpha[i] < 1 || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == annotate.BatchLimit {
			break
		}
	}
	return ids, nil
}

var titleCaser = cases.Title(language.English)

// FieldLabel turns a record field name into a hover label, for example
// "most_severe_consequence" becomes "Most Severe Consequence".
func FieldLabel(field string) string {
	words := strings.FieldsFunc(field, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	return titleCaser.String(strings.Join(words, " "))
}
