package chart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/render"
)

func newTestBase(t *testing.T) *Base {
	t.Helper()
	b := NewBase(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	df := dataframe.New(
		series.New([]string{"A", "B", "A", "C", "B"}, series.String, "cohort"),
		series.New([]float64{0.1, -0.3, 0.7, 0.2, -0.9}, series.Float, "PC1"),
		series.New([]string{"g1", "g2", "g3", "g4", "g5"}, series.String, "gene"),
	)
	require.NoError(t, b.Load(context.Background(), df, ""))
	return b
}

func alphas(t *testing.T, b *Base) []float64 {
	t.Helper()
	rows, err := b.ProcessedRows()
	require.NoError(t, err)
	a, err := rows.Floats(AlphaColumn)
	require.NoError(t, err)
	return a
}

func TestFilter_KeepAndComplement(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)
	q := "SELECT * FROM data WHERE cohort = 'A' OR PC1 < -0.5"

	require.NoError(t, b.Filter(ctx, q, true))
	kept, err := b.ProcessedRows()
	require.NoError(t, err)

	require.NoError(t, b.Filter(ctx, q, false))
	dropped, err := b.ProcessedRows()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2, 4}, kept.Index())
	assert.Equal(t, []int{1, 3}, dropped.Index())

	seen := map[int]bool{}
	for _, id := range append(kept.Index(), dropped.Index()...) {
		assert.False(t, seen[id], "row %d in both subsets", id)
		seen[id] = true
	}
	assert.Len(t, seen, 5)

	sel, ok := b.FilterSelection()
	require.True(t, ok)
	assert.Equal(t, Selection{Query: q, Keep: false}, sel)
}

func TestProcessedRows_Alpha(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)

	assert.Equal(t, []float64{1, 1, 1, 1, 1}, alphas(t, b))

	require.NoError(t, b.Highlight(ctx, "SELECT * FROM data WHERE cohort = 'B'", true))
	assert.Equal(t, []float64{0.5, 1, 0.5, 0.5, 1}, alphas(t, b))

	require.NoError(t, b.Highlight(ctx, "SELECT * FROM data WHERE cohort = 'B'", false))
	assert.Equal(t, []float64{1, 0.5, 1, 1, 0.5}, alphas(t, b))

	b.ClearHighlight()
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, alphas(t, b))
}

func TestProcessedRows_CustomDimmedAlpha(t *testing.T) {
	ctx := context.Background()
	b := NewBase(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), WithDimmedAlpha(0.2))
	df := dataframe.New(series.New([]string{"A", "B", "A"}, series.String, "cohort"))
	require.NoError(t, b.Load(ctx, df, ""))
	assert.Equal(t, 0.2, b.DimmedAlpha())

	require.NoError(t, b.Highlight(ctx, "SELECT * FROM data WHERE cohort = 'B'", true))
	assert.Equal(t, []float64{0.2, 1, 0.2}, alphas(t, b))
}

func TestWithDimmedAlpha_Clamps(t *testing.T) {
	assert.Equal(t, DimmedAlpha, NewBase().DimmedAlpha())
	assert.Equal(t, 0.0, NewBase(WithDimmedAlpha(-1)).DimmedAlpha())
	assert.Equal(t, 1.0, NewBase(WithDimmedAlpha(3)).DimmedAlpha())
	assert.Equal(t, DimmedAlpha, NewBase(WithDimmedAlpha(math.NaN())).DimmedAlpha())
}

func TestProcessedRows_FilterAndHighlight(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)

	require.NoError(t, b.Filter(ctx, "SELECT * FROM data WHERE PC1 > 0", true))
	require.NoError(t, b.Highlight(ctx, `SELECT "index" FROM data WHERE "index" = 2`, true))

	rows, err := b.ProcessedRows()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, rows.Index())
	assert.Equal(t, []float64{0.5, 1, 0.5}, alphas(t, b))

	b.ClearFilter()
	rows, err = b.ProcessedRows()
	require.NoError(t, err)
	assert.Equal(t, 5, rows.Len())
}

func TestFilter_EmptyResult(t *testing.T) {
	b := newTestBase(t)
	require.NoError(t, b.Filter(context.Background(), "SELECT * FROM data WHERE PC1 > 100", true))

	rows, err := b.ProcessedRows()
	require.NoError(t, err)
	assert.Equal(t, 0, rows.Len())
}

func TestFilter_ErrorKeepsState(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)
	require.NoError(t, b.Filter(ctx, "SELECT * FROM data WHERE cohort = 'C'", true))

	err := b.Filter(ctx, "SELECT * FROM data WHERE missing = 1", true)
	assert.True(t, errs.IsQueryError(err))

	err = b.Highlight(ctx, "UPDATE data SET PC1 = 0", true)
	assert.True(t, errs.IsQueryError(err))

	rows, err := b.ProcessedRows()
	require.NoError(t, err)
	assert.Equal(t, []int{3}, rows.Index())
}

func TestNoData(t *testing.T) {
	b := NewBase()
	_, err := b.ProcessedRows()
	assert.True(t, errs.Is(err, errs.CodeNoData))

	err = b.Filter(context.Background(), "SELECT * FROM data", true)
	assert.True(t, errs.Is(err, errs.CodeNoData))
}

func TestLoad_DropsSubsetsAndReapply(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)
	require.NoError(t, b.Filter(ctx, "SELECT * FROM data WHERE PC1 > 0", true))
	require.NoError(t, b.Highlight(ctx, "SELECT * FROM data WHERE PC1 > 0.5", true))

	df := dataframe.New(series.New([]float64{5, -5}, series.Float, "PC1"))
	require.NoError(t, b.Load(ctx, df, ""))

	rows, err := b.ProcessedRows()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rows.Index())
	assert.Equal(t, []float64{1, 1}, alphas(t, b))

	require.NoError(t, b.Reapply(ctx))
	rows, err = b.ProcessedRows()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows.Index())
	assert.Equal(t, []float64{1}, alphas(t, b))
}

func TestReapply_FailureLeavesSubsets(t *testing.T) {
	ctx := context.Background()
	b := newTestBase(t)
	require.NoError(t, b.Filter(ctx, "SELECT * FROM data WHERE cohort = 'A'", true))

	df := dataframe.New(series.New([]float64{1}, series.Float, "PC1"))
	require.NoError(t, b.Load(ctx, df, ""))

	err := b.Reapply(ctx)
	assert.True(t, errs.IsQueryError(err))
	_, ok := b.FilterSelection()
	assert.True(t, ok)
}

func TestLoad_FailureKeepsData(t *testing.T) {
	b := newTestBase(t)
	err := b.Load(context.Background(), 3.14, "")
	assert.True(t, errs.IsUnsupportedSource(err))
	assert.Equal(t, 5, b.Data().Len())
}

func TestHovers(t *testing.T) {
	b := newTestBase(t)
	b.SetHovers(NewHoverMap(Hover{"Gene", "gene"}, Hover{"Cohort", "cohort"}))
	b.AddHovers(NewHoverMap(Hover{"PC", "PC1"}, Hover{"Gene", "cohort"}))

	h := b.Hovers()
	assert.Equal(t, []string{"Gene", "Cohort", "PC"}, h.Labels())
	col, ok := h.Column("Gene")
	require.True(t, ok)
	assert.Equal(t, "cohort", col)

	b.SetHovers(HoverMap{})
	assert.Equal(t, 0, b.Hovers().Len())
}

func TestHoverMap_Values(t *testing.T) {
	b := newTestBase(t)
	m := NewHoverMap(Hover{"Gene", "gene"}, Hover{"Cohort", "cohort"})

	values, err := m.Values(b.Data())
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "B"}, values[1])

	_, err = NewHoverMap(Hover{"X", "nope"}).Values(b.Data())
	assert.True(t, errs.Is(err, errs.CodeUnknownColumn))
}

func TestHoverMap_JSONOrder(t *testing.T) {
	m, err := ParseHoverMap(`{"Zeta": "z", "Alpha": "a", "Mid": "m"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, m.Labels())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":"z","Alpha":"a","Mid":"m"}`, string(out))

	_, err = ParseHoverMap(`["a"]`)
	assert.Error(t, err)
	_, err = ParseHoverMap(`{"a": 1}`)
	assert.Error(t, err)

	empty, err := ParseHoverMap("")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestHoverMap_YAMLOrder(t *testing.T) {
	var doc struct {
		Hovers HoverMap `yaml:"hovers"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("hovers:\n  Zeta: z\n  Alpha: a\n"), &doc))
	assert.Equal(t, []string{"Zeta", "Alpha"}, doc.Hovers.Labels())

	err := yaml.Unmarshal([]byte("hovers: [a, b]\n"), &doc)
	assert.Error(t, err)
}

func TestHoverMap_NormalizesLabels(t *testing.T) {
	var m HoverMap
	m.Set("Caf\u00e9", "a")
	m.Set("Cafe\u0301", "b")
	assert.Equal(t, 1, m.Len())
	col, _ := m.Column("Cafe\u0301")
	assert.Equal(t, "b", col)
}

type stubRenderer struct {
	calls int
	fig   *render.Figure
}

func (s *stubRenderer) Render(context.Context) (*render.Figure, error) {
	s.calls++
	return s.fig, nil
}

func TestExport(t *testing.T) {
	stub := &stubRenderer{fig: &render.Figure{
		ID:          "fig",
		Grid:        [][]*render.Panel{{{Title: "empty"}}},
		PanelWidth:  100,
		PanelHeight: 100,
	}}
	dir := t.TempDir()

	_, err := Export(context.Background(), stub, filepath.Join(dir, "chart.tiff"))
	assert.True(t, errs.IsUnsupportedExportFormat(err))
	assert.Equal(t, 0, stub.calls)

	written, err := Export(context.Background(), stub, filepath.Join(dir, "chart"))
	require.NoError(t, err)
	assert.Len(t, written, 5)
	assert.Equal(t, 1, stub.calls)
}
