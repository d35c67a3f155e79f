package query

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/table"
)

func newTestEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromColumns(
		series.New([]string{"1", "1", "2", "X"}, series.String, "contig"),
		series.New([]int{100, 200, 50, 10}, series.Int, "position"),
		series.New([]float64{1e-9, 0.3, 0.04, 1e-3}, series.Float, "pvalue"),
		series.New([]bool{true, false, true, false}, series.Bool, "passed"),
	)
	require.NoError(t, err)
	return tbl
}

func TestRows_SelectsIdentifiers(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t)

	rows, err := e.Rows(context.Background(), tbl, "SELECT * FROM data WHERE pvalue < 0.01")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, rows.IDs())
}

func TestRows_IndexAddressable(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t)

	rows, err := e.Rows(context.Background(), tbl, `SELECT "index" FROM data WHERE "index" >= 2`)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, rows.IDs())
}

func TestRows_TypedColumns(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t)

	testCases := []struct {
		name  string
		query string
		want  []int
	}{
		{"text comparison", "SELECT * FROM data WHERE contig = 'X'", []int{3}},
		{"integer comparison", "SELECT * FROM data WHERE position > 60", []int{0, 1}},
		{"boolean column", "SELECT * FROM data WHERE passed", []int{0, 2}},
		{"no matches", "SELECT * FROM data WHERE position > 1000", []int{}},
		{"cte", "WITH s AS (SELECT * FROM data WHERE contig = '1') SELECT * FROM s", []int{0, 1}},
		{"trailing semicolon", "SELECT * FROM data WHERE contig = '2';", []int{2}},
		{"semicolon in literal", "SELECT * FROM data WHERE contig <> ';'", []int{0, 1, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := e.Rows(context.Background(), tbl, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, rows.IDs())
		})
	}
}

func TestRows_RestrictedTableKeepsIdentifiers(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t).Restrict(table.NewRowSet([]int{1, 3}))

	rows, err := e.Rows(context.Background(), tbl, "SELECT * FROM data")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rows.IDs())
}

func TestRows_Errors(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t)

	testCases := []struct {
		name  string
		query string
	}{
		{"malformed", "SELEC * FRM data"},
		{"unknown column", "SELECT * FROM data WHERE nope = 1"},
		{"unknown table", "SELECT * FROM other"},
		{"missing index", "SELECT contig FROM data"},
		{"not a select", "DELETE FROM data"},
		{"multiple statements", "SELECT * FROM data; DROP TABLE data"},
		{"empty", "   "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Rows(context.Background(), tbl, tc.query)
			require.Error(t, err)
			assert.True(t, errs.IsQueryError(err), "got %v", err)
		})
	}
}

func TestRows_ReservedIndexColumn(t *testing.T) {
	e := newTestEngine()
	tbl, err := table.FromColumns(series.New([]int{1, 2}, series.Int, "index"))
	require.NoError(t, err)

	_, err = e.Rows(context.Background(), tbl, "SELECT * FROM data")
	assert.True(t, errs.IsQueryError(err))
}

func TestSelect_ReturnsTableWithFreshIndex(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t)

	out, err := e.Select(context.Background(), tbl, "SELECT * FROM data WHERE contig = '1' ORDER BY position DESC")
	require.NoError(t, err)

	assert.Equal(t, []string{"contig", "position", "pvalue", "passed"}, out.Names())
	assert.Equal(t, []int{0, 1}, out.Index())

	positions, err := out.Floats("position")
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 100}, positions)

	typ, err := out.Type("passed")
	require.NoError(t, err)
	assert.Equal(t, series.Bool, typ)
}

func TestSelect_DerivedColumns(t *testing.T) {
	e := newTestEngine()
	tbl := newTestTable(t)

	out, err := e.Select(context.Background(), tbl, "SELECT contig, COUNT(*) AS n FROM data GROUP BY contig ORDER BY contig")
	require.NoError(t, err)

	assert.Equal(t, []string{"contig", "n"}, out.Names())
	typ, err := out.Type("n")
	require.NoError(t, err)
	assert.Equal(t, series.Int, typ)

	contigs, err := out.Strings("contig")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "X"}, contigs)
}

func TestCreateTableSQL(t *testing.T) {
	tbl := newTestTable(t)
	assert.Equal(t,
		`CREATE TABLE "data" ("index" INTEGER PRIMARY KEY, "contig" TEXT, "position" INTEGER, "pvalue" REAL, "passed" INTEGER)`,
		CreateTableSQL(tbl))
}

func TestInsertSQL_Parameterized(t *testing.T) {
	tbl := newTestTable(t)
	sql := InsertSQL(tbl)
	assert.Equal(t,
		`INSERT INTO "data" ("index", "contig", "position", "pvalue", "passed") VALUES (?, ?, ?, ?, ?)`,
		sql)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"PC 1"`, quoteIdent("PC 1"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestInferType(t *testing.T) {
	testCases := []struct {
		name   string
		values []any
		dbType string
		want   series.Type
	}{
		{"ints", []any{int64(1), nil, int64(3)}, "", series.Int},
		{"mixed numeric", []any{int64(1), 2.5}, "", series.Float},
		{"text wins", []any{int64(1), "x"}, "", series.String},
		{"bools", []any{true, false}, "", series.Bool},
		{"all null", []any{nil, nil}, "", series.String},
		{"numeric as text", []any{"1.5", "2"}, "NUMERIC", series.Float},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inferType(tc.values, tc.dbType))
		})
	}
}
