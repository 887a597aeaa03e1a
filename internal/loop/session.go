// Package loop drives reconciliation passes over the host document and
// dispatches user clicks against the session state.
package loop

import (
	"context"

	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/dom"
	"osrs_tax_columns/internal/hidden"
	"osrs_tax_columns/internal/locate"
	"osrs_tax_columns/internal/rows"
	"osrs_tax_columns/internal/sorting"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const unhidePrompt = "Unhide all items?"

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Session is the state that outlives a single pass: sort choice, hidden
// items and the pending re-sort flag. It is owned by one goroutine.
type Session struct {
	Sort      sorting.State
	Hidden    *hidden.Store
	NeedsSort bool
	Confirm   ConfirmFunc
}

func NewSession(store *hidden.Store, confirm ConfirmFunc) *Session {
	return &Session{Hidden: store, Confirm: confirm}
}

// PassResult reports what one reconciliation pass did.
type PassResult struct {
	Found      bool
	Rows       int
	Skipped    int
	CellWrites int
	Structural int
	// Cosmetic counts label and highlight rewrites. They are published but
	// never trigger a re-sort.
	Cosmetic int
	Sorted   bool
}

// Changed reports whether the pass modified the document.
func (r PassResult) Changed() bool {
	return r.CellWrites > 0 || r.Structural > 0 || r.Cosmetic > 0 || r.Sorted
}

// Pass runs locate, inject, reconcile and, when warranted, sort over doc.
// A document without the item table is left untouched.
func (s *Session) Pass(doc *html.Node) PassResult {
	var res PassResult

	table, ok := locate.Find(doc)
	if !ok {
		return res
	}
	res.Found = true

	_, created, relabeled := columns.EnsureUnhideButton(table.Node, s.Hidden.Len())
	if created {
		res.Structural++
	}
	if relabeled {
		res.Cosmetic++
	}

	h := columns.EnsureHeaders(table, s.Sort.Column, s.Sort.Direction == sorting.Ascending)
	res.Structural += h.Created
	res.Cosmetic += h.Refreshed

	headers := dom.Children(table.HeaderRow)
	layout := rows.Layout{
		Columns: locate.Resolve(headers),
		Hide:    indexOf(headers, h.Hide),
		Margin:  indexOf(headers, h.Margin),
		Profit:  indexOf(headers, h.Profit),
	}

	dataRows := locate.Rows(table.Node)
	rr := rows.Reconcile(dataRows, layout, s.Hidden)
	res.Rows = rr.Reconciled
	res.Skipped = rr.Skipped
	res.CellWrites = rr.CellWrites
	res.Structural += rr.Structural

	if s.Sort.Active() && (res.CellWrites > 0 || res.Structural > 0 || s.NeedsSort) {
		s.Sort.Apply(dataRows)
		s.NeedsSort = false
		res.Sorted = true
	}

	if res.Changed() {
		log.Debug().
			Int("rows", res.Rows).
			Int("cell_writes", res.CellWrites).
			Int("structural", res.Structural).
			Int("cosmetic", res.Cosmetic).
			Bool("sorted", res.Sorted).
			Msg("Reconciliation pass changed the table")
	}
	return res
}

func indexOf(nodes []*html.Node, n *html.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}

// Click dispatches a click on target, or on its nearest interactive
// ancestor. It reports whether the click was handled; handled clicks may
// have changed the document.
func (s *Session) Click(ctx context.Context, doc, target *html.Node) (PassResult, bool) {
	for n := target; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if col := columns.HeaderColumn(n); col != columns.None {
			return s.SortBy(doc, col), true
		}
		if dom.HasClass(n, columns.HideCellClass) {
			item, _ := dom.Attr(n, columns.ItemAttr)
			return PassResult{}, s.HideRow(ctx, dom.Closest(n, "tr"), item)
		}
		if id, _ := dom.Attr(n, "id"); id == columns.UnhideButtonID {
			return s.UnhideAll(ctx, doc)
		}
	}
	return PassResult{}, false
}

// SortBy applies a header click on col and re-runs the pass.
func (s *Session) SortBy(doc *html.Node, col columns.Derived) PassResult {
	s.Sort.Select(col)
	s.NeedsSort = true
	log.Info().
		Str("column", s.Sort.Column.String()).
		Str("direction", s.Sort.Direction.String()).
		Msg("Sort column selected")
	return s.Pass(doc)
}

// HideRow hides item, persists it and hides row right away. The re-sort is
// left to the next pass.
func (s *Session) HideRow(ctx context.Context, row *html.Node, item string) bool {
	if item == "" {
		return false
	}
	if err := s.Hidden.Add(ctx, item); err != nil {
		log.Error().Err(err).Str("item", item).Msg("Failed to persist hidden item")
	}
	if row != nil {
		dom.SetHidden(row, true)
	}
	s.NeedsSort = true
	log.Info().Str("item", item).Int("hidden", s.Hidden.Len()).Msg("Item hidden")
	return true
}

// UnhideAll clears the hidden set after confirmation and refreshes the
// table. Without a Confirm capability nothing is cleared.
func (s *Session) UnhideAll(ctx context.Context, doc *html.Node) (PassResult, bool) {
	if s.Confirm == nil || !s.Confirm(unhidePrompt) {
		log.Info().Msg("Unhide all cancelled")
		return PassResult{}, false
	}

	count := s.Hidden.Len()
	if err := s.Hidden.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to clear hidden items")
	}
	if btn := dom.ByID(doc, columns.UnhideButtonID); btn != nil {
		dom.SetText(btn, columns.UnhideLabel(0))
	}
	s.NeedsSort = true
	log.Info().Int("unhidden", count).Msg("All items unhidden")
	return s.Pass(doc), true
}
