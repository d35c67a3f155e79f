// Package table holds the dataset a chart works on.
//
// A Table is a gota DataFrame plus a parallel slice of row identifiers (the
// "index"). Identifiers are assigned when data is loaded and survive every
// restriction, reordering and derived column, so row subsets computed by
// queries can always be mapped back onto the rows they came from.
package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ArashLab/caplot/internal/errs"
)

// IndexColumn is the name under which row identifiers are exposed to queries.
const IndexColumn = "index"

// Table is an immutable dataset with stable row identifiers.
// Every method that changes rows or columns returns a new Table.
type Table struct {
	frame dataframe.DataFrame
	index []int
}

// New wraps a DataFrame, assigning identifiers 0..n-1.
func New(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("invalid data frame: %w", df.Err)
	}
	index := make([]int, df.Nrow())
	for i := range index {
		index[i] = i
	}
	return &Table{frame: df, index: index}, nil
}

// NewIndexed wraps a DataFrame with explicit row identifiers.
// Identifiers must be unique and match the frame's row count.
func NewIndexed(df dataframe.DataFrame, index []int) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("invalid data frame: %w", df.Err)
	}
	if len(index) != df.Nrow() {
		return nil, fmt.Errorf("index has %d entries for %d rows", len(index), df.Nrow())
	}
	seen := make(map[int]struct{}, len(index))
	for _, id := range index {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate row identifier %d", id)
		}
		seen[id] = struct{}{}
	}
	return &Table{frame: df, index: append([]int(nil), index...)}, nil
}

// FromColumns builds a Table from series of equal length.
func FromColumns(cols ...series.Series) (*Table, error) {
	return New(dataframe.New(cols...))
}

// Frame returns the underlying DataFrame.
func (t *Table) Frame() dataframe.DataFrame {
	return t.frame
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.index)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	return t.frame.Names()
}

// Index returns a copy of the row identifiers in row order.
func (t *Table) Index() []int {
	return append([]int(nil), t.index...)
}

// IDs returns all row identifiers as a RowSet.
func (t *Table) IDs() RowSet {
	return NewRowSet(t.index)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.frame.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, errs.NewUnknownColumnError(name)
	}
	return t.frame.Col(name), nil
}

// Type returns the type of the named column.
func (t *Table) Type(name string) (series.Type, error) {
	col, err := t.Column(name)
	if err != nil {
		return "", err
	}
	return col.Type(), nil
}

// Floats returns the named column as floats. Missing values are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return []float64{}, nil
	}
	return col.Float(), nil
}

// Strings returns the named column as strings. Missing values are "".
// Floats use the shortest representation that round-trips, so 5e-08
// stays 5e-08.
func (t *Table) Strings(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, col.Len())
	for i := range out {
		out[i] = CellText(col.Elem(i))
	}
	return out, nil
}

// CellText renders one cell as display text. Missing values are "".
func CellText(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	if e.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return e.String()
}

// Distinct returns the distinct non-missing values of a column as strings,
// in first-seen order.
func (t *Table) Distinct(name string) ([]string, error) {
	values, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	col, _ := t.Column(name)
	seen := make(map[string]struct{})
	var out []string
	for i, v := range values {
		if col.Elem(i).IsNA() {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// Take returns the rows at the given positions, in the given order.
func (t *Table) Take(positions []int) *Table {
	index := make([]int, len(positions))
	for i, p := range positions {
		index[i] = t.index[p]
	}
	if len(positions) == 0 {
		return &Table{frame: t.empty(), index: index}
	}
	return &Table{frame: t.frame.Subset(positions), index: index}
}

// empty returns a zero-row frame with the same columns.
func (t *Table) empty() dataframe.DataFrame {
	names := t.frame.Names()
	types := t.frame.Types()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, types[i], name)
	}
	return dataframe.New(cols...)
}

// Restrict keeps the rows whose identifiers are in rows, preserving table order.
func (t *Table) Restrict(rows RowSet) *Table {
	positions := make([]int, 0, rows.Len())
	for i, id := range t.index {
		if rows.Contains(id) {
			positions = append(positions, i)
		}
	}
	return t.Take(positions)
}

// Head returns the first n rows (or all rows if there are fewer).
func (t *Table) Head(n int) *Table {
	if n >= t.Len() {
		return t
	}
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	return t.Take(positions)
}

// WithColumn returns a table with the column added, replacing any column of
// the same name.
func (t *Table) WithColumn(col series.Series) (*Table, error) {
	if col.Len() != t.Len() {
		return nil, fmt.Errorf("column %q has %d values for %d rows", col.Name, col.Len(), t.Len())
	}
	df := t.frame.Mutate(col)
	if df.Err != nil {
		return nil, fmt.Errorf("add column %q: %w", col.Name, df.Err)
	}
	return &Table{frame: df, index: t.index}, nil
}

// SortByFloat returns the rows ordered by the named numeric column.
// The sort is stable; NaN values always sort last.
func (t *Table) SortByFloat(name string, descending bool) (*Table, error) {
	values, err := t.Floats(name)
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(values))
	for i := range positions {
		positions[i] = i
	}
	sort.SliceStable(positions, func(a, b int) bool {
		va, vb := values[positions[a]], values[positions[b]]
		switch {
		case math.IsNaN(va):
			return false
		case math.IsNaN(vb):
			return true
		case descending:
			return va > vb
		default:
			return va < vb
		}
	})
	return t.Take(positions), nil
}

// LeftJoin adds the columns of right to t, matching t's key column against
// right's key column. Rows without a match get missing values. Right-hand
// duplicates are resolved by first occurrence so the row count never changes.
// Columns of right that already exist in t are skipped.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey string) (*Table, error) {
	keys, err := t.Strings(leftKey)
	if err != nil {
		return nil, err
	}
	rightKeys, err := right.Strings(rightKey)
	if err != nil {
		return nil, err
	}
	first := make(map[string]int, len(rightKeys))
	for i, k := range rightKeys {
		if _, ok := first[k]; !ok {
			first[k] = i
		}
	}

	out := t
	for _, name := range right.Names() {
		if name == rightKey || t.HasColumn(name) {
			continue
		}
		src, _ := right.Column(name)
		values := make([]string, len(keys))
		for i, k := range keys {
			j, ok := first[k]
			if !ok || src.Elem(j).IsNA() {
				values[i] = "NaN"
				continue
			}
			values[i] = CellText(src.Elem(j))
		}
		joined := series.New(values, src.Type(), name)
		if out, err = out.WithColumn(joined); err != nil {
			return nil, err
		}
	}
	return out, nil
}
