// Package columns injects the hide and post-tax columns into a located table
// and keeps their cells current.
package columns

import "strings"

// Derived identifies one of the computed post-tax columns.
type Derived int

const (
	None Derived = iota
	Margin
	Profit
)

const (
	HideHeaderClass = "header-remove"
	HideCellClass   = "cell-remove"
	UnhideButtonID  = "osrs-unhide-btn"

	// ItemAttr carries the row identity on its hide cell.
	ItemAttr = "data-item"
	// ValueAttr caches the last value written to a derived cell.
	ValueAttr = "data-val"
)

func (d Derived) String() string {
	switch d {
	case Margin:
		return "margin"
	case Profit:
		return "profit"
	default:
		return "none"
	}
}

func (d Derived) HeaderClass() string {
	switch d {
	case Margin:
		return "header-tax-margin"
	case Profit:
		return "header-tax-profit"
	}
	return ""
}

func (d Derived) CellClass() string {
	switch d {
	case Margin:
		return "cell-tax-margin"
	case Profit:
		return "cell-tax-profit"
	}
	return ""
}

func (d Derived) Label() string {
	switch d {
	case Margin:
		return "Margin (Post-Tax)"
	case Profit:
		return "Total Profit (Post-Tax)"
	}
	return ""
}

// ParseDerived reads "margin" or "profit", case-insensitively.
func ParseDerived(s string) (Derived, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "margin":
		return Margin, true
	case "profit":
		return Profit, true
	}
	return None, false
}

// All lists the derived columns in header order.
var All = []Derived{Margin, Profit}
