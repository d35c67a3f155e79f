// Package chart holds the behavior shared by every caplot chart: the
// dataset, the filter and highlight row subsets, hover labels and export.
//
// A Base owns three pieces of state:
//
//   - the dataset, replaced wholesale by Load
//   - the active subset (Filter), the rows that are drawn
//   - the emphasis subset (Highlight), the rows drawn at full opacity
//
// Subsets are computed when their query is set and are always subsets of
// the current dataset. Load drops both subsets but keeps their queries;
// Reapply recomputes them against the new dataset.
package chart

import (
	"context"
	"log/slog"
	"math"

	"github.com/go-gota/gota/series"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/query"
	"github.com/ArashLab/caplot/internal/render"
	"github.com/ArashLab/caplot/internal/source"
	"github.com/ArashLab/caplot/internal/table"
)

// AlphaColumn is the per-row opacity column added by ProcessedRows.
const AlphaColumn = "__alpha__"

// DimmedAlpha is the default opacity of rows outside a set emphasis subset.
const DimmedAlpha = 0.5

// Selection is a stored subset query.
type Selection struct {
	Query string
	// Keep selects the matching rows; false selects every other row.
	Keep bool
}

type subset struct {
	sel  Selection
	rows *table.RowSet // nil until computed against the current dataset
}

// Base implements the dataset, subset and hover operations of a chart.
type Base struct {
	logger *slog.Logger
	engine *query.Engine
	loader *source.Loader
	ids    render.IDGenerator
	dimmed float64

	data      *table.Table
	filter    *subset
	highlight *subset
	hovers    HoverMap
}

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) {
		b.logger = logger
	}
}

// WithIDGenerator sets the figure id generator.
// Default: render.UUIDv7Generator. Use render.NewFixedGenerator in tests.
func WithIDGenerator(gen render.IDGenerator) Option {
	return func(b *Base) {
		b.ids = gen
	}
}

// WithDimmedAlpha sets the opacity of rows outside the emphasis subset.
// Values are clamped to [0, 1]; NaN is ignored. Default: DimmedAlpha.
func WithDimmedAlpha(alpha float64) Option {
	return func(b *Base) {
		if math.IsNaN(alpha) {
			return
		}
		b.dimmed = math.Min(math.Max(alpha, 0), 1)
	}
}

// NewBase creates an empty Base.
func NewBase(opts ...Option) *Base {
	b := &Base{
		logger: slog.Default(),
		ids:    render.UUIDv7Generator{},
		dimmed: DimmedAlpha,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.engine = query.NewEngine(b.logger)
	b.loader = source.NewLoader(b.engine, b.logger)
	return b
}

// DimmedAlpha returns the opacity given to rows outside the emphasis subset.
func (b *Base) DimmedAlpha() float64 {
	return b.dimmed
}

// Logger returns the chart's logger.
func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// NewFigureID returns a fresh figure identifier.
func (b *Base) NewFigureID() string {
	return b.ids.Generate()
}

// Load replaces the dataset with src (see source.Loader.Load). On success
// both subsets are dropped; their queries are kept for Reapply. On failure
// the chart is unchanged.
func (b *Base) Load(ctx context.Context, src any, q string) error {
	t, err := b.loader.Load(ctx, src, q)
	if err != nil {
		return err
	}
	b.data = t
	for _, s := range []*subset{b.filter, b.highlight} {
		if s != nil {
			s.rows = nil
		}
	}
	b.logger.Info("data loaded", "rows", t.Len(), "columns", len(t.Names()))
	return nil
}

// Data returns the current dataset, or nil before the first Load.
func (b *Base) Data() *table.Table {
	return b.data
}

// Filter sets the active subset to the rows matching q, or to every other
// row when keep is false.
func (b *Base) Filter(ctx context.Context, q string, keep bool) error {
	s, err := b.evaluate(ctx, Selection{Query: q, Keep: keep})
	if err != nil {
		return err
	}
	b.filter = s
	b.logger.Debug("filter set", "query", q, "keep", keep, "rows", s.rows.Len())
	return nil
}

// Highlight sets the emphasis subset to the rows matching q, or to every
// other row when emphasize is false.
func (b *Base) Highlight(ctx context.Context, q string, emphasize bool) error {
	s, err := b.evaluate(ctx, Selection{Query: q, Keep: emphasize})
	if err != nil {
		return err
	}
	b.highlight = s
	b.logger.Debug("highlight set", "query", q, "emphasize", emphasize, "rows", s.rows.Len())
	return nil
}

// ClearFilter unsets the active subset so every row is drawn.
func (b *Base) ClearFilter() {
	b.filter = nil
}

// ClearHighlight unsets the emphasis subset so no row is dimmed.
func (b *Base) ClearHighlight() {
	b.highlight = nil
}

// FilterSelection returns the stored filter query, if any.
func (b *Base) FilterSelection() (Selection, bool) {
	if b.filter == nil {
		return Selection{}, false
	}
	return b.filter.sel, true
}

// HighlightSelection returns the stored highlight query, if any.
func (b *Base) HighlightSelection() (Selection, bool) {
	if b.highlight == nil {
		return Selection{}, false
	}
	return b.highlight.sel, true
}

// Reapply recomputes both subsets from their stored queries against the
// current dataset. Either both succeed or neither subset changes.
func (b *Base) Reapply(ctx context.Context) error {
	var filter, highlight *subset
	if b.filter != nil {
		s, err := b.evaluate(ctx, b.filter.sel)
		if err != nil {
			return err
		}
		filter = s
	}
	if b.highlight != nil {
		s, err := b.evaluate(ctx, b.highlight.sel)
		if err != nil {
			return err
		}
		highlight = s
	}
	b.filter, b.highlight = filter, highlight
	return nil
}

// evaluate runs a selection against the current dataset.
func (b *Base) evaluate(ctx context.Context, sel Selection) (*subset, error) {
	if b.data == nil {
		return nil, errs.New(errs.CodeNoData, "no data loaded")
	}
	rows, err := b.engine.Rows(ctx, b.data, sel.Query)
	if err != nil {
		return nil, err
	}
	if !sel.Keep {
		rows = rows.Complement(b.data.Index())
	}
	return &subset{sel: sel, rows: &rows}, nil
}

// SetHovers replaces the hover map.
func (b *Base) SetHovers(m HoverMap) {
	b.hovers = NewHoverMap(m.Entries()...)
}

// AddHovers merges m into the hover map. Existing labels are re-pointed
// in place; new labels are appended.
func (b *Base) AddHovers(m HoverMap) {
	b.hovers.Merge(m)
}

// Hovers returns a copy of the hover map.
func (b *Base) Hovers() HoverMap {
	return NewHoverMap(b.hovers.Entries()...)
}

// ProcessedRows returns the dataset restricted to the active subset, in
// dataset order, with AlphaColumn added: 1.0 for every row when no
// emphasis subset is set, otherwise 1.0 for emphasized rows and
// the dimmed alpha (see WithDimmedAlpha) for the rest.
func (b *Base) ProcessedRows() (*table.Table, error) {
	if b.data == nil {
		return nil, errs.New(errs.CodeNoData, "no data loaded")
	}
	t := b.data
	if b.filter != nil && b.filter.rows != nil {
		t = t.Restrict(*b.filter.rows)
	}

	index := t.Index()
	alpha := make([]float64, len(index))
	for i, id := range index {
		alpha[i] = 1
		if b.highlight != nil && b.highlight.rows != nil && !b.highlight.rows.Contains(id) {
			alpha[i] = b.dimmed
		}
	}
	return t.WithColumn(series.New(alpha, series.Float, AlphaColumn))
}
