package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/ArashLab/caplot/internal/table"
)

// Hover is one tooltip line: a display label and the column it shows.
type Hover struct {
	Label  string
	Column string
}

// HoverMap is an insertion-ordered mapping from display label to column.
// The zero value is an empty map ready to use.
type HoverMap struct {
	entries []Hover
}

// NewHoverMap builds a map from hovers in order. Later duplicates of a
// label replace the earlier column in place.
func NewHoverMap(hovers ...Hover) HoverMap {
	var m HoverMap
	for _, h := range hovers {
		m.Set(h.Label, h.Column)
	}
	return m
}

// ParseHoverMap reads a JSON object such as {"Gene": "gene_symbol"},
// keeping the key order of the document.
func ParseHoverMap(s string) (HoverMap, error) {
	var m HoverMap
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return HoverMap{}, err
	}
	return m, nil
}

// Set maps label to column. An existing label keeps its position.
func (m *HoverMap) Set(label, column string) {
	label = norm.NFC.String(label)
	for i := range m.entries {
		if m.entries[i].Label == label {
			m.entries[i].Column = column
			return
		}
	}
	m.entries = append(m.entries, Hover{Label: label, Column: column})
}

// Merge copies every entry of other into m, in other's order.
func (m *HoverMap) Merge(other HoverMap) {
	for _, h := range other.entries {
		m.Set(h.Label, h.Column)
	}
}

// Len returns the number of entries.
func (m HoverMap) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in order.
func (m HoverMap) Entries() []Hover {
	return append([]Hover(nil), m.entries...)
}

// Labels returns the labels in order.
func (m HoverMap) Labels() []string {
	out := make([]string, len(m.entries))
	for i, h := range m.entries {
		out[i] = h.Label
	}
	return out
}

// Column returns the column shown under label.
func (m HoverMap) Column(label string) (string, bool) {
	label = norm.NFC.String(label)
	for _, h := range m.entries {
		if h.Label == label {
			return h.Column, true
		}
	}
	return "", false
}

// Values returns, for each row of t, the text of every hover column in
// label order. Missing cells are empty strings.
func (m HoverMap) Values(t *table.Table) ([][]string, error) {
	cols := make([][]string, len(m.entries))
	for i, h := range m.entries {
		values, err := t.Strings(h.Column)
		if err != nil {
			return nil, fmt.Errorf("hover %q: %w", h.Label, err)
		}
		cols[i] = values
	}
	out := make([][]string, t.Len())
	for row := range out {
		out[row] = make([]string, len(cols))
		for i := range cols {
			out[row][i] = cols[i][row]
		}
	}
	return out, nil
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (m HoverMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(h.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(h.Column)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
func (m *HoverMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("hover map: %w", err)
	}
	if tok == nil {
		*m = HoverMap{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("hover map must be a JSON object")
	}
	var out HoverMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("hover map: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("hover map: unexpected key %v", tok)
		}
		var column string
		if err := dec.Decode(&column); err != nil {
			return fmt.Errorf("hover %q: value must be a column name", label)
		}
		out.Set(label, column)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("hover map: %w", err)
	}
	*m = out
	return nil
}

// UnmarshalYAML reads a YAML mapping of string values, keeping key order.
func (m *HoverMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: hover map must be a mapping", node.Line)
	}
	var out HoverMap
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: hover %q must map to a column name", v.Line, k.Value)
		}
		out.Set(k.Value, v.Value)
	}
	*m = out
	return nil
}
