package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/store"
)

func ptr(v float64) *float64 { return &v }

func TestCommercialWorkbook(t *testing.T) {
	tender := store.Tender{ID: 1, Title: "Residential block A", CreatedAt: time.Now()}
	items := []store.BOQItem{
		{ID: 1, Category: markup.CategoryMaterials, Description: "Concrete B25", DirectCost: 100, CommercialMaterialCost: ptr(164.076)},
		{ID: 2, Category: markup.CategoryWorks, Description: "=HYPERLINK(\"x\")", DirectCost: 50, CommercialWorkCost: ptr(82.038)},
		{ID: 3, Category: markup.CategoryWorks, Description: "Not priced yet", DirectCost: 10},
	}

	raw, err := CommercialWorkbook(tender, items)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Items", "Summary"}, f.GetSheetList())

	title, err := f.GetCellValue(itemsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Residential block A", title)

	rows, err := f.GetRows(itemsSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Materials", rows[3][1])
	assert.Equal(t, "164.076", rows[3][4])
	assert.Equal(t, "'=HYPERLINK(\"x\")", rows[4][2])
	assert.Len(t, rows[5], 4, "unpriced item has no commercial cost")

	summary, err := f.GetRows(summarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"Works", "2", "60", "82.04", "1.3673"}, summary[1])
	assert.Equal(t, []string{"Materials", "1", "100", "164.08", "1.64076"}, summary[2])

	formula, err := f.GetCellFormula(summarySheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(D2:D3)", formula)
}

func TestCommercialWorkbook_Empty(t *testing.T) {
	raw, err := CommercialWorkbook(store.Tender{Title: "Empty"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Len(t, summary, 1)
}
