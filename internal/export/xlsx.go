// Package export snapshots the reconciled item table to a spreadsheet.
package export

import (
	"fmt"

	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/dom"
	"osrs_tax_columns/internal/locate"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

const sheetName = "Items"

// Row is one reconciled item.
type Row struct {
	Item          string
	Hidden        bool
	MarginPostTax int64
	ProfitPostTax int64
}

// Rows collects the reconciled rows of doc's item table in table order.
// Rows without a hide cell were never reconciled and are left out.
func Rows(doc *html.Node) []Row {
	table, ok := locate.Find(doc)
	if !ok {
		return nil
	}

	var out []Row
	for _, tr := range locate.Rows(table.Node) {
		cell := dom.FindFirst(tr, dom.Class(columns.HideCellClass))
		if cell == nil {
			continue
		}
		item, _ := dom.Attr(cell, columns.ItemAttr)
		margin, _ := columns.CachedValue(tr, columns.Margin.CellClass())
		profit, _ := columns.CachedValue(tr, columns.Profit.CellClass())
		out = append(out, Row{
			Item:          item,
			Hidden:        dom.Hidden(tr),
			MarginPostTax: margin,
			ProfitPostTax: profit,
		})
	}
	return out
}

// WriteXLSX writes rows to a new workbook at path.
func WriteXLSX(path string, rows []Row) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Item", columns.Margin.Label(), columns.Profit.Label(), "Hidden"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		values := []interface{}{r.Item, r.MarginPostTax, r.ProfitPostTax, r.Hidden}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Info().Str("path", path).Int("rows", len(rows)).Msg("Exported items")
	return nil
}
