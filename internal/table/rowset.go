package table

import "sort"

// RowSet is an immutable set of row identifiers.
type RowSet struct {
	ids    []int
	member map[int]struct{}
}

// NewRowSet creates a set from identifiers. Duplicates are ignored.
func NewRowSet(ids []int) RowSet {
	member := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := member[id]; ok {
			continue
		}
		member[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Ints(unique)
	return RowSet{ids: unique, member: member}
}

// Len returns the number of identifiers in the set.
func (r RowSet) Len() int {
	return len(r.ids)
}

// Contains reports whether id is in the set.
func (r RowSet) Contains(id int) bool {
	_, ok := r.member[id]
	return ok
}

// IDs returns the identifiers in ascending order.
func (r RowSet) IDs() []int {
	out := make([]int, len(r.ids))
	copy(out, r.ids)
	return out
}

// Complement returns the identifiers of universe that are not in r.
func (r RowSet) Complement(universe []int) RowSet {
	out := make([]int, 0, len(universe))
	for _, id := range universe {
		if !r.Contains(id) {
			out = append(out, id)
		}
	}
	return NewRowSet(out)
}

// SubsetOf reports whether every identifier of r is in universe.
func (r RowSet) SubsetOf(universe RowSet) bool {
	for _, id := range r.ids {
		if !universe.Contains(id) {
			return false
		}
	}
	return true
}
