package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/recalc"
	"github.com/Simplici0/tenderhub/internal/store"
)

const (
	itemsSheet   = "Items"
	summarySheet = "Summary"
	moneyFormat  = "#,##0.00"
)

// CategoryLabels are the column captions used for categories in the workbook.
var CategoryLabels = map[markup.Category]string{
	markup.CategoryWorks:                "Works",
	markup.CategoryMaterials:            "Materials",
	markup.CategorySubcontractWorks:     "Subcontract works",
	markup.CategorySubcontractMaterials: "Subcontract materials",
	markup.CategoryWorkEquivalent:       "Work equivalent",
	markup.CategoryMaterialEquivalent:   "Material equivalent",
}

func categoryLabel(c markup.Category) string {
	if l, ok := CategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// CommercialWorkbook renders the tender's items with their commercial costs and a
// per-category summary sheet.
func CommercialWorkbook(tender store.Tender, items []store.BOQItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), itemsSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	if err := writeItems(f, tender, items, titleStyle, headerStyle, moneyStyle); err != nil {
		return nil, err
	}
	if err := writeSummary(f, recalc.Summarize(items), headerStyle, moneyStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func writeItems(f *excelize.File, tender store.Tender, items []store.BOQItem, titleStyle, headerStyle, moneyStyle int) error {
	widths := map[string]float64{"A": 8, "B": 22, "C": 48, "D": 16, "E": 16, "F": 10}
	for col, w := range widths {
		if err := f.SetColWidth(itemsSheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	if err := f.SetCellValue(itemsSheet, "A1", sanitizeExcelCell(tender.Title)); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.SetCellStyle(itemsSheet, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("style title: %w", err)
	}

	headers := []any{"#", "Category", "Description", "Direct cost", "Commercial cost", "Coefficient"}
	if err := f.SetSheetRow(itemsSheet, "A3", &headers); err != nil {
		return fmt.Errorf("write item headers: %w", err)
	}
	if err := f.SetCellStyle(itemsSheet, "A3", "F3", headerStyle); err != nil {
		return fmt.Errorf("style item headers: %w", err)
	}

	for i, it := range items {
		row := i + 4
		values := []any{i + 1, categoryLabel(it.Category), sanitizeExcelCell(it.Description), it.DirectCost, nil, nil}
		if commercial, ok := recalc.CommercialCost(it); ok {
			values[4] = commercial
			if it.DirectCost != 0 {
				values[5] = commercial / it.DirectCost
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(itemsSheet, cell, &values); err != nil {
			return fmt.Errorf("write item row %d: %w", row, err)
		}
		if err := f.SetCellStyle(itemsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), moneyStyle); err != nil {
			return fmt.Errorf("style item row %d: %w", row, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, summary []recalc.CategorySummary, headerStyle, moneyStyle int) error {
	for col, w := range map[string]float64{"A": 24, "B": 8, "C": 16, "D": 16, "E": 12} {
		if err := f.SetColWidth(summarySheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	headers := []any{"Category", "Items", "Direct total", "Commercial total", "Coefficient"}
	if err := f.SetSheetRow(summarySheet, "A1", &headers); err != nil {
		return fmt.Errorf("write summary headers: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("style summary headers: %w", err)
	}

	for i, s := range summary {
		row := i + 2
		values := []any{categoryLabel(s.Category), s.Items, s.DirectTotal, s.CommercialTotal, s.Coefficient}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write summary row %d: %w", row, err)
		}
		if err := f.SetCellStyle(summarySheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), moneyStyle); err != nil {
			return fmt.Errorf("style summary row %d: %w", row, err)
		}
	}

	total := len(summary) + 2
	if len(summary) > 0 {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", total), "Total"); err != nil {
			return err
		}
		for _, col := range []string{"C", "D"} {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, total-1)
			if err := f.SetCellFormula(summarySheet, fmt.Sprintf("%s%d", col, total), formula); err != nil {
				return fmt.Errorf("write total formula: %w", err)
			}
		}
		if err := f.SetCellStyle(summarySheet, fmt.Sprintf("C%d", total), fmt.Sprintf("D%d", total), moneyStyle); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}
	return nil
}

// sanitizeExcelCell keeps user text from being read as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func strPtr(s string) *string { return &s }
