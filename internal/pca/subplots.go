package pca

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ArashLab/caplot/internal/errs"
)

// Pair is the x and y column of one subplot.
type Pair [2]string

// Plan is the subplot grid: pairs chunked into rows.
type Plan [][]Pair

// Len returns the number of subplots.
func (p Plan) Len() int {
	n := 0
	for _, row := range p {
		n += len(row)
	}
	return n
}

// Pairs returns the subplots in row-major order.
func (p Plan) Pairs() []Pair {
	var out []Pair
	for _, row := range p {
		out = append(out, row...)
	}
	return out
}

// Subplots describes which column pairs to draw. It is either a flat list
// of columns, plotted as every unordered pair, or an explicit list of
// [x, y] pairs. The zero value describes nothing.
type Subplots struct {
	value any
}

// Columns returns a spec plotting every pair of cols.
func Columns(cols ...string) Subplots {
	return Subplots{value: append([]string(nil), cols...)}
}

// Pairs returns a spec plotting exactly pairs.
func Pairs(pairs ...Pair) Subplots {
	return Subplots{value: append([]Pair(nil), pairs...)}
}

// ParseSubplots decodes a JSON spec such as ["PC1","PC2","PC3"] or
// [["PC1","PC2"],["PC3","PC4"]].
func ParseSubplots(s string) (Subplots, error) {
	var sp Subplots
	if err := json.Unmarshal([]byte(s), &sp); err != nil {
		return Subplots{}, errs.Wrap(errs.CodeInvalidSubplotSpec, err, "subplot spec is not valid JSON")
	}
	return sp, nil
}

// FromValue wraps an already decoded value, such as the result of
// decoding JSON into an any.
func FromValue(v any) Subplots {
	return Subplots{value: v}
}

// IsZero reports whether no spec was given.
func (s Subplots) IsZero() bool {
	return s.value == nil
}

// Resolve expands s into subplot pairs.
func (s Subplots) Resolve() ([]Pair, error) {
	switch v := s.value.(type) {
	case nil:
		return nil, invalidSpec("no subplots given")
	case []string:
		return combinations(v)
	case []Pair:
		return checkPairs(v)
	case [][]string:
		pairs := make([]Pair, len(v))
		for i, p := range v {
			if len(p) != 2 {
				return nil, invalidSpec("subplot %d has %d columns, want 2", i, len(p))
			}
			pairs[i] = Pair{p[0], p[1]}
		}
		return checkPairs(pairs)
	case []any:
		return resolveAny(v)
	default:
		return nil, invalidSpec("unsupported subplot spec of type %T", s.value)
	}
}

// resolveAny decides between the flat and paired forms of a decoded list.
// Mixing the two forms is an error.
func resolveAny(items []any) ([]Pair, error) {
	if len(items) == 0 {
		return nil, invalidSpec("no subplots given")
	}
	cols := make([]string, 0, len(items))
	pairs := make([]Pair, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			cols = append(cols, v)
		case []any:
			if len(v) != 2 {
				return nil, invalidSpec("subplot %d has %d columns, want 2", i, len(v))
			}
			x, xok := v[0].(string)
			y, yok := v[1].(string)
			if !xok || !yok {
				return nil, invalidSpec("subplot %d must name two columns", i)
			}
			pairs = append(pairs, Pair{x, y})
		default:
			return nil, invalidSpec("subplot entry %d has unsupported type %T", i, item)
		}
	}
	if len(cols) > 0 && len(pairs) > 0 {
		return nil, invalidSpec("subplot spec mixes column names and pairs")
	}
	if len(cols) > 0 {
		return combinations(cols)
	}
	return checkPairs(pairs)
}

// combinations returns every unordered pair of the distinct columns in
// first-seen order: (c0,c1), (c0,c2), ..., (c1,c2), ...
func combinations(cols []string) ([]Pair, error) {
	seen := make(map[string]struct{}, len(cols))
	distinct := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c) == "" {
			return nil, invalidSpec("subplot column names must not be empty")
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	if len(distinct) < 2 {
		return nil, invalidSpec("at least two columns are needed, got %d", len(distinct))
	}
	pairs := make([]Pair, 0, len(distinct)*(len(distinct)-1)/2)
	for i := range distinct {
		for j := i + 1; j < len(distinct); j++ {
			pairs = append(pairs, Pair{distinct[i], distinct[j]})
		}
	}
	return pairs, nil
}

func checkPairs(pairs []Pair) ([]Pair, error) {
	if len(pairs) == 0 {
		return nil, invalidSpec("no subplots given")
	}
	for i, p := range pairs {
		if strings.TrimSpace(p[0]) == "" || strings.TrimSpace(p[1]) == "" {
			return nil, invalidSpec("subplot %d has an empty column name", i)
		}
	}
	return append([]Pair(nil), pairs...), nil
}

func invalidSpec(format string, args ...any) error {
	return errs.New(errs.CodeInvalidSubplotSpec, format, args...)
}

// LayoutPlan resolves spec and chunks the pairs into rows of
// columnsPerRow. The last row may be shorter.
func LayoutPlan(spec Subplots, columnsPerRow int) (Plan, error) {
	if columnsPerRow < 1 {
		return nil, errs.New(errs.CodeInvalidOption, "columnsPerRow must be at least 1, got %d", columnsPerRow).
			With("option", "columnsPerRow")
	}
	pairs, err := spec.Resolve()
	if err != nil {
		return nil, err
	}
	var plan Plan
	for start := 0; start < len(pairs); start += columnsPerRow {
		end := min(start+columnsPerRow, len(pairs))
		plan = append(plan, pairs[start:end:end])
	}
	return plan, nil
}

// MarshalJSON writes the subplots in the form they were given.
func (s Subplots) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalJSON accepts a column list or a pair list.
func (s *Subplots) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.value = v
	return nil
}

// UnmarshalYAML accepts a column list or a pair list.
func (s *Subplots) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("line %d: subplots must be a list", node.Line)
	}
	s.value = v
	return nil
}
