package columns

import (
	"fmt"

	"osrs_tax_columns/internal/dom"
	"osrs_tax_columns/internal/locate"

	"golang.org/x/net/html"
)

// Headers are the injected header cells of one table.
type Headers struct {
	Hide   *html.Node
	Margin *html.Node
	Profit *html.Node
	// Created counts header cells inserted by this call.
	Created int
	// Refreshed counts existing headers whose label or highlight was rewritten.
	Refreshed int
}

// For returns the header cell of a derived column.
func (h Headers) For(d Derived) *html.Node {
	switch d {
	case Margin:
		return h.Margin
	case Profit:
		return h.Profit
	}
	return nil
}

// EnsureHeaders makes sure the table carries exactly one hide header (first)
// and one header per derived column (after the column it derives from), then
// refreshes the sort indicator on the derived headers.
func EnsureHeaders(table locate.Table, active Derived, ascending bool) Headers {
	var h Headers
	row := table.HeaderRow

	h.Hide = dom.FindFirst(table.Node, dom.Class(HideHeaderClass))
	if h.Hide == nil {
		h.Hide = dom.NewElement("th")
		dom.SetAttr(h.Hide, "class", HideHeaderClass)
		dom.SetStyle(h.Hide, "width", "50px")
		dom.SetStyle(h.Hide, "text-align", "center")
		dom.SetText(h.Hide, "Hide")
		dom.Prepend(row, h.Hide)
		h.Created++
	}

	h.Margin, h.Created = ensureDerivedHeader(table, Margin, locate.IsMarginHeader, h.Created)
	h.Profit, h.Created = ensureDerivedHeader(table, Profit, locate.IsProfitHeader, h.Created)

	for _, d := range All {
		if refreshHeader(h.For(d), d, active, ascending) {
			h.Refreshed++
		}
	}
	return h
}

func ensureDerivedHeader(table locate.Table, d Derived, anchor func(string) bool, created int) (*html.Node, int) {
	if th := dom.FindFirst(table.Node, dom.Class(d.HeaderClass())); th != nil {
		return th, created
	}

	th := dom.NewElement("th")
	dom.SetAttr(th, "class", d.HeaderClass())
	dom.SetAttr(th, "title", "Click to sort")
	dom.SetStyle(th, "cursor", "pointer")
	dom.SetStyle(th, "background-color", "rgba(0, 230, 0, 0.1)")

	var after *html.Node
	for _, cell := range dom.FindAll(table.HeaderRow, dom.Tag("th")) {
		if anchor(dom.Text(cell)) {
			after = cell
			break
		}
	}
	if after != nil {
		dom.InsertBefore(after.Parent, th, after.NextSibling)
	} else {
		dom.InsertBefore(table.HeaderRow, th, nil)
	}
	return th, created + 1
}

// refreshHeader rewrites label and highlight only where they differ and
// reports whether anything was written.
func refreshHeader(th *html.Node, d, active Derived, ascending bool) bool {
	label, color, decoration := d.Label(), "", ""
	if d == active {
		arrow := "▼"
		if ascending {
			arrow = "▲"
		}
		label = fmt.Sprintf("%s %s", d.Label(), arrow)
		color, decoration = "#fff", "underline"
	}
	changed := dom.SetText(th, label)
	changed = dom.SetStyle(th, "color", color) || changed
	changed = dom.SetStyle(th, "text-decoration", decoration) || changed
	return changed
}

// HeaderColumn reports which derived column th is the header of.
func HeaderColumn(th *html.Node) Derived {
	for _, d := range All {
		if dom.HasClass(th, d.HeaderClass()) {
			return d
		}
	}
	return None
}

// UnhideLabel is the text of the unhide-all button.
func UnhideLabel(hidden int) string {
	return fmt.Sprintf("Unhide All Items (%d)", hidden)
}

// EnsureUnhideButton keeps a single unhide-all button in the document,
// inserted immediately before the table the first time. It reports whether
// the button was created and whether an existing button was relabeled.
func EnsureUnhideButton(table *html.Node, hidden int) (btn *html.Node, created, relabeled bool) {
	root := table
	for root.Parent != nil {
		root = root.Parent
	}

	if btn = dom.ByID(root, UnhideButtonID); btn != nil {
		return btn, false, dom.SetText(btn, UnhideLabel(hidden))
	}

	btn = dom.NewElement("button")
	dom.SetAttr(btn, "id", UnhideButtonID)
	dom.SetAttr(btn, "type", "button")
	dom.SetText(btn, UnhideLabel(hidden))
	if table.Parent != nil {
		dom.InsertBefore(table.Parent, btn, table)
	}
	return btn, true, false
}
