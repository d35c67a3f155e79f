package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-gota/gota/series"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/table"
)

// TableName is the name under which the dataset is visible to queries.
const TableName = "data"

// Engine evaluates SQL queries against a Table.
//
// Each evaluation materializes the table into a private in-memory SQLite
// database, runs the query and discards the database. Nothing is shared
// between evaluations.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger uses slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Select runs query against t and returns the full result as a new Table
// with fresh identifiers. Used for load-time row filters, where the result
// replaces the dataset.
func (e *Engine) Select(ctx context.Context, t *table.Table, query string) (*table.Table, error) {
	var out *table.Table
	err := e.run(ctx, t, query, func(rows *sql.Rows) error {
		var err error
		out, err = ScanRows(rows, frameTypes(t))
		return err
	})
	if err != nil {
		return nil, err
	}
	// Drop the identifier column if the query carried it through.
	if out.HasColumn(table.IndexColumn) {
		cols := make([]series.Series, 0, len(out.Names())-1)
		for _, name := range out.Names() {
			if name == table.IndexColumn {
				continue
			}
			col, _ := out.Column(name)
			cols = append(cols, col)
		}
		return table.FromColumns(cols...)
	}
	return out, nil
}

// Rows runs query against t and returns the identifiers of the rows it
// selected. The result must include the index column.
func (e *Engine) Rows(ctx context.Context, t *table.Table, query string) (table.RowSet, error) {
	var ids []int
	err := e.run(ctx, t, query, func(rows *sql.Rows) error {
		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		pos := -1
		for i, c := range cols {
			if c == table.IndexColumn {
				pos = i
				break
			}
		}
		if pos < 0 {
			return fmt.Errorf("result has no %q column", table.IndexColumn)
		}
		dest := make([]any, len(cols))
		for i := range dest {
			dest[i] = new(any)
		}
		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				return err
			}
			id, ok := (*dest[pos].(*any)).(int64)
			if !ok {
				return fmt.Errorf("%q column is not an integer", table.IndexColumn)
			}
			ids = append(ids, int(id))
		}
		return rows.Err()
	})
	if err != nil {
		return table.RowSet{}, err
	}
	set := table.NewRowSet(ids)
	if !set.SubsetOf(t.IDs()) {
		return table.RowSet{}, errs.NewQueryError(query, fmt.Errorf("result references rows outside the dataset"))
	}
	return set, nil
}

// run materializes t, executes query and hands the rows to read.
// Every failure is reported as a QUERY error.
func (e *Engine) run(ctx context.Context, t *table.Table, query string, read func(*sql.Rows) error) error {
	if err := checkSelect(query); err != nil {
		return errs.NewQueryError(query, err)
	}
	if t.HasColumn(table.IndexColumn) {
		return errs.NewQueryError(query, fmt.Errorf("column name %q is reserved for row identifiers", table.IndexColumn))
	}

	db, err := openMemory(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := materialize(ctx, db, t); err != nil {
		return fmt.Errorf("materialize table: %w", err)
	}

	e.logger.Debug("evaluating query", "query", query, "rows", t.Len())
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return errs.NewQueryError(query, err)
	}
	defer rows.Close()

	if err := read(rows); err != nil {
		return errs.NewQueryError(query, err)
	}
	return nil
}

// openMemory opens a private in-memory SQLite database.
func openMemory(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a distinct database, so pin one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// frameTypes maps column names to their gota types.
func frameTypes(t *table.Table) map[string]series.Type {
	types := make(map[string]series.Type, len(t.Names()))
	for _, name := range t.Names() {
		typ, _ := t.Type(name)
		types[name] = typ
	}
	return types
}
