package loop

import (
	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/dom"

	"golang.org/x/net/html"
)

// Interaction is a user click described without a node reference, so it
// can be resolved against whatever document is current when it is handled.
type Interaction interface {
	// Target finds the node the click lands on, or nil.
	Target(doc *html.Node) *html.Node
}

// HeaderClick clicks the header of a derived column.
type HeaderClick struct {
	Column columns.Derived
}

func (c HeaderClick) Target(doc *html.Node) *html.Node {
	return dom.FindFirst(doc, dom.Class(c.Column.HeaderClass()))
}

// HideClick clicks the hide button of the row for Item.
type HideClick struct {
	Item string
}

func (c HideClick) Target(doc *html.Node) *html.Node {
	cell := dom.FindFirst(doc, func(n *html.Node) bool {
		item, ok := dom.Attr(n, columns.ItemAttr)
		return ok && item == c.Item && dom.HasClass(n, columns.HideCellClass)
	})
	if cell == nil {
		return nil
	}
	// the click lands on the icon inside the cell
	if btn := dom.FindFirst(cell, dom.Tag("span")); btn != nil {
		return btn
	}
	return cell
}

// UnhideAllClick clicks the unhide-all button.
type UnhideAllClick struct{}

func (UnhideAllClick) Target(doc *html.Node) *html.Node {
	return dom.ByID(doc, columns.UnhideButtonID)
}
