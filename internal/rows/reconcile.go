// Package rows reconciles each data row of the item table: hide affordance,
// visibility and the post-tax cells.
package rows

import (
	"math"
	"strings"

	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/dom"
	"osrs_tax_columns/internal/locate"
	"osrs_tax_columns/internal/numparse"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const (
	TaxRate = 0.02
	// MinCells is the smallest cell count of a row worth reading.
	MinCells = 5
)

// Values are the post-tax figures of one row.
type Values struct {
	Tax           int64
	MarginPostTax int64
	ProfitPostTax int64
}

// Compute applies the flat sell-price tax to a row's margin and limit.
func Compute(sell, margin, limit int64) Values {
	tax := int64(math.Floor(float64(sell) * TaxRate))
	marginPostTax := margin - tax
	return Values{
		Tax:           tax,
		MarginPostTax: marginPostTax,
		ProfitPostTax: marginPostTax * limit,
	}
}

// Layout is the header geometry of the table for one pass. Columns holds
// the host column positions and the remaining fields the positions of the
// injected headers, all indexes into the final header row.
type Layout struct {
	Columns locate.ColumnIndex
	Hide    int
	Margin  int
	Profit  int
}

// HiddenSet answers whether an item is hidden.
type HiddenSet interface {
	Has(name string) bool
}

// Result summarises one reconciliation over the rows.
type Result struct {
	Reconciled int
	Skipped    int
	CellWrites int
	Structural int
}

// Changed reports whether any row changed structurally or in value.
func (r Result) Changed() bool {
	return r.CellWrites > 0 || r.Structural > 0
}

type injected struct {
	position int
	class    string
}

// Reconcile brings every row in line with the layout and hidden set.
func Reconcile(rows []*html.Node, layout Layout, hidden HiddenSet) Result {
	var res Result
	markers := []injected{
		{layout.Hide, columns.HideCellClass},
		{layout.Margin, columns.Margin.CellClass()},
		{layout.Profit, columns.Profit.CellClass()},
	}

	for _, row := range rows {
		cells := dom.Children(row)
		if len(cells) < MinCells {
			res.Skipped++
			continue
		}

		// Resolve positions against this row before anything is injected:
		// a row the host added after our headers lacks some injected cells.
		present := make([]bool, len(markers))
		for i, m := range markers {
			present[i] = columns.HasCell(row, m.class)
		}
		read := func(position int) string {
			if position < 0 {
				return ""
			}
			shifted := position
			for i, m := range markers {
				if m.position >= 0 && m.position < position && !present[i] {
					shifted--
				}
			}
			if shifted < 0 || shifted >= len(cells) {
				return ""
			}
			return dom.Text(cells[shifted])
		}

		name := strings.TrimSpace(read(layout.Columns.Name))
		if name == "" {
			res.Skipped++
			continue
		}

		if dom.SetHidden(row, hidden.Has(name)) {
			res.Structural++
		}
		if _, created := columns.EnsureHideCell(row, name); created {
			res.Structural++
		}

		v := Compute(
			numparse.Parse(read(layout.Columns.Sell)),
			numparse.Parse(read(layout.Columns.Margin)),
			numparse.Parse(read(layout.Columns.Limit)),
		)

		if columns.UpdateCell(row, columns.Margin.CellClass(), v.MarginPostTax, layout.Margin) {
			res.CellWrites++
		}
		if columns.UpdateCell(row, columns.Profit.CellClass(), v.ProfitPostTax, layout.Profit) {
			res.CellWrites++
		}
		res.Reconciled++
	}

	if res.Changed() {
		log.Debug().
			Int("rows", res.Reconciled).
			Int("skipped", res.Skipped).
			Int("cell_writes", res.CellWrites).
			Int("structural", res.Structural).
			Msg("Reconciled rows")
	}
	return res
}
