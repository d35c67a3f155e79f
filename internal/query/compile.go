package query

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/ArashLab/caplot/internal/table"
)

// CreateTableSQL returns the CREATE TABLE statement for t.
// The identifier column comes first, followed by t's columns in order.
// Identifiers are always double-quoted so any column name is addressable.
func CreateTableSQL(t *table.Table) string {
	parts := []string{quoteIdent(table.IndexColumn) + " INTEGER PRIMARY KEY"}
	for _, name := range t.Names() {
		typ, _ := t.Type(name)
		parts = append(parts, quoteIdent(name)+" "+sqliteType(typ))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(TableName), strings.Join(parts, ", "))
}

// InsertSQL returns the parameterized INSERT statement for t.
func InsertSQL(t *table.Table) string {
	cols := []string{quoteIdent(table.IndexColumn)}
	marks := []string{"?"}
	for _, name := range t.Names() {
		cols = append(cols, quoteIdent(name))
		marks = append(marks, "?")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(TableName), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// materialize creates the data table and copies every row of t into it.
// All values are parameterized (never interpolated).
func materialize(ctx context.Context, db *sql.DB, t *table.Table) error {
	if _, err := db.ExecContext(ctx, CreateTableSQL(t)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, InsertSQL(t))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	names := t.Names()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}
	index := t.Index()
	args := make([]any, len(names)+1)
	for row, id := range index {
		args[0] = int64(id)
		for i, col := range cols {
			args[i+1] = sqlValue(col, row)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// sqlValue converts one cell to a driver value; missing values become NULL.
func sqlValue(col series.Series, row int) any {
	e := col.Elem(row)
	if e.IsNA() {
		return nil
	}
	switch col.Type() {
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return nil
		}
		return int64(v)
	case series.Float:
		v := e.Float()
		if math.IsNaN(v) {
			return nil
		}
		return v
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			return nil
		}
		return v
	default:
		return e.String()
	}
}

func sqliteType(t series.Type) string {
	switch t {
	case series.Int, series.Bool:
		return "INTEGER"
	case series.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// checkSelect rejects anything but a single SELECT (or WITH ... SELECT).
// Semicolons inside quoted literals or identifiers are allowed.
func checkSelect(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return fmt.Errorf("empty query")
	}
	bare := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(unquoted(q)), ";"))
	if strings.Contains(bare, ";") {
		return fmt.Errorf("only a single statement is allowed")
	}
	fields := strings.Fields(bare)
	if len(fields) == 0 {
		return fmt.Errorf("empty query")
	}
	head := strings.ToUpper(fields[0])
	if head != "SELECT" && head != "WITH" {
		return fmt.Errorf("only SELECT statements are allowed")
	}
	return nil
}

// unquoted blanks out the contents of '...', "..." and `...` sections.
func unquoted(q string) string {
	var b strings.Builder
	var quote rune
	for _, r := range q {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
