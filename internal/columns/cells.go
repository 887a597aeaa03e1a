package columns

import (
	"strconv"

	"osrs_tax_columns/internal/dom"

	"golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const (
	positiveColor = "#00e600"
	negativeColor = "#ff3333"
)

// cellWithClass returns the direct child cell of row carrying class.
func cellWithClass(row *html.Node, class string) *html.Node {
	for _, c := range dom.Children(row) {
		if dom.HasClass(c, class) {
			return c
		}
	}
	return nil
}

// HasCell reports whether row already carries a cell with class.
func HasCell(row *html.Node, class string) bool {
	return cellWithClass(row, class) != nil
}

// UpdateCell finds or creates the row's cell for class, inserting a new cell
// before the row's element child at position (or last). Text, cached value
// and colour are only written when value differs from the cached one. It
// reports whether the cell was created or written.
func UpdateCell(row *html.Node, class string, value int64, position int) bool {
	changed := false

	cell := cellWithClass(row, class)
	if cell == nil {
		cell = dom.NewElement("td")
		dom.SetAttr(cell, "class", class)
		dom.SetStyle(cell, "text-align", "right")
		dom.SetStyle(cell, "font-weight", "bold")

		var ref *html.Node
		if cells := dom.Children(row); position >= 0 && position < len(cells) {
			ref = cells[position]
		}
		dom.InsertBefore(row, cell, ref)
		changed = true
	}

	formatted := strconv.FormatInt(value, 10)
	if cached, _ := dom.Attr(cell, ValueAttr); cached != formatted {
		dom.SetText(cell, printer.Sprintf("%d", value))
		dom.SetAttr(cell, ValueAttr, formatted)
		color := negativeColor
		if value > 0 {
			color = positiveColor
		}
		dom.SetStyle(cell, "color", color)
		changed = true
	}
	return changed
}

// CachedValue returns the last value written to the row's cell for class.
func CachedValue(row *html.Node, class string) (int64, bool) {
	cell := cellWithClass(row, class)
	if cell == nil {
		return 0, false
	}
	raw, ok := dom.Attr(cell, ValueAttr)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EnsureHideCell gives row a leading hide cell for item. It reports whether
// the cell was created; an existing cell only has its item refreshed.
func EnsureHideCell(row *html.Node, item string) (*html.Node, bool) {
	if cell := cellWithClass(row, HideCellClass); cell != nil {
		dom.SetAttr(cell, ItemAttr, item)
		return cell, false
	}

	cell := dom.NewElement("td")
	dom.SetAttr(cell, "class", HideCellClass)
	dom.SetAttr(cell, ItemAttr, item)
	dom.SetStyle(cell, "text-align", "center")
	dom.SetStyle(cell, "cursor", "pointer")

	btn := dom.NewElement("span")
	dom.SetAttr(btn, "title", "Hide this item")
	dom.SetStyle(btn, "font-size", "1.2em")
	dom.SetText(btn, "⛔")
	cell.AppendChild(btn)

	var first *html.Node
	if cells := dom.Children(row); len(cells) > 0 {
		first = cells[0]
	}
	dom.InsertBefore(row, cell, first)
	return cell, true
}
