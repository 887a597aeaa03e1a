// Package sorting holds the user's sort choice and reorders table rows by a
// derived column.
package sorting

import (
	"cmp"
	"math"
	"slices"

	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/dom"

	"golang.org/x/net/html"
)

type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// State is the active sort column and direction. The zero value sorts
// nothing.
type State struct {
	Column    columns.Derived
	Direction Direction
}

// Active reports whether a sort column has been chosen.
func (s State) Active() bool {
	return s.Column != columns.None
}

// Select applies a header click: the same column flips direction, another
// column becomes active in descending order.
func (s *State) Select(col columns.Derived) {
	if s.Column == col {
		if s.Direction == Descending {
			s.Direction = Ascending
		} else {
			s.Direction = Descending
		}
		return
	}
	s.Column = col
	s.Direction = Descending
}

// Apply stable-sorts rows by their cached value in the active column and
// reattaches them, in order, to the tbody of the first row. Rows without a
// value sort as negative infinity. The sorted slice is returned.
func (s State) Apply(rows []*html.Node) []*html.Node {
	if !s.Active() || len(rows) == 0 {
		return rows
	}

	class := s.Column.CellClass()
	type keyed struct {
		row *html.Node
		key float64
	}
	items := make([]keyed, len(rows))
	for i, row := range rows {
		key := math.Inf(-1)
		if v, ok := columns.CachedValue(row, class); ok {
			key = float64(v)
		}
		items[i] = keyed{row: row, key: key}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if s.Direction == Ascending {
			return cmp.Compare(a.key, b.key)
		}
		return cmp.Compare(b.key, a.key)
	})

	tbody := dom.Closest(rows[0], "tbody")
	sorted := make([]*html.Node, len(items))
	for i, it := range items {
		sorted[i] = it.row
	}
	if tbody != nil {
		for _, row := range sorted {
			dom.InsertBefore(tbody, row, nil)
		}
	}
	return sorted
}
