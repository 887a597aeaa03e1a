// Package locate finds the item table in a document by its header text and
// maps logical columns to header positions.
package locate

import (
	"strings"

	"osrs_tax_columns/internal/dom"

	"golang.org/x/net/html"
)

// ColumnIndex maps each logical column to its position in the header row;
// -1 means the header was not found.
type ColumnIndex struct {
	Name   int
	Sell   int
	Margin int
	Limit  int
	Profit int
}

// Valid reports whether the columns every pass depends on were found.
func (c ColumnIndex) Valid() bool {
	return c.Name >= 0 && c.Sell >= 0 && c.Margin >= 0
}

// Table is a located item table. It is only valid for the pass that found it.
type Table struct {
	Node      *html.Node
	HeaderRow *html.Node
	Columns   ColumnIndex
}

// Find returns the first table in doc whose headers carry the name, sell
// price and margin columns.
func Find(doc *html.Node) (Table, bool) {
	for _, table := range dom.FindAll(doc, dom.Tag("table")) {
		headers := Headers(table)
		idx := Resolve(headers)
		if !idx.Valid() {
			continue
		}
		return Table{
			Node:      table,
			HeaderRow: dom.Closest(headers[0], "tr"),
			Columns:   idx,
		}, true
	}
	return Table{}, false
}

// Headers returns the th cells under the table's thead.
func Headers(table *html.Node) []*html.Node {
	var out []*html.Node
	for _, thead := range dom.FindAll(table, dom.Tag("thead")) {
		out = append(out, dom.FindAll(thead, dom.Tag("th"))...)
	}
	return out
}

// Rows returns the data rows under the table's tbody elements.
func Rows(table *html.Node) []*html.Node {
	var out []*html.Node
	for _, tbody := range dom.FindAll(table, dom.Tag("tbody")) {
		out = append(out, dom.FindAll(tbody, dom.Tag("tr"))...)
	}
	return out
}

// Resolve maps header cells to a ColumnIndex by their text.
func Resolve(headers []*html.Node) ColumnIndex {
	texts := make([]string, len(headers))
	for i, th := range headers {
		texts[i] = strings.ToLower(dom.Text(th))
	}
	return ColumnIndex{
		Name:   indexOf(texts, contains("name")),
		Sell:   indexOf(texts, contains("sell price")),
		Margin: indexOf(texts, IsMarginHeader),
		Limit:  indexOf(texts, contains("buy limit")),
		Profit: indexOf(texts, IsProfitHeader),
	}
}

// IsMarginHeader matches the host's pre-tax margin header text.
func IsMarginHeader(text string) bool {
	return strings.TrimSpace(strings.ToLower(text)) == "margin"
}

// IsProfitHeader matches the host's pre-tax potential profit header text.
func IsProfitHeader(text string) bool {
	return strings.Contains(strings.ToLower(text), "potential profit")
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func indexOf(texts []string, match func(string) bool) int {
	for i, t := range texts {
		if match(t) {
			return i
		}
	}
	return -1
}
