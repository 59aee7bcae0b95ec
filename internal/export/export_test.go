package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbookRoundTrip(t *testing.T) {
	data, err := WriteWorkbook(SheetSpec{
		Name: "ภาษีซื้อ",
		HeaderRows: [][]string{
			{"เลขที่เอกสาร", "วันที่", "มูลค่า", "ภาษี"},
		},
		Rows: [][]any{
			{"INV-001", "01/03/2567", 100.0, 7.0},
			{"INV-002", "02/03/2567", 200.0, 14.0},
		},
		ColWidths: []float64{18, 14, 12, 12},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"ภาษีซื้อ"}, f.GetSheetList())

	got, err := f.GetCellValue("ภาษีซื้อ", "A1")
	require.NoError(t, err)
	assert.Equal(t, "เลขที่เอกสาร", got)

	got, err = f.GetCellValue("ภาษีซื้อ", "A3")
	require.NoError(t, err)
	assert.Equal(t, "INV-002", got)

	got, err = f.GetCellValue("ภาษีซื้อ", "D2")
	require.NoError(t, err)
	assert.Equal(t, "7", got)
}

func TestWriteWorkbookMergedHeaders(t *testing.T) {
	data, err := WriteWorkbook(SheetSpec{
		Name: "หัก ณ ที่จ่าย",
		HeaderRows: [][]string{
			{"เอกสาร", "", "ภาษีที่หัก", ""},
			{"เลขที่", "วันที่", "ฐานภาษี", "จำนวนเงิน"},
		},
		Merges: []MergeRange{
			{FromRow: 1, FromCol: 1, ToRow: 1, ToCol: 2},
			{FromRow: 1, FromCol: 3, ToRow: 1, ToCol: 4},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	merges, err := f.GetMergeCells("หัก ณ ที่จ่าย")
	require.NoError(t, err)
	require.Len(t, merges, 2)
	assert.Equal(t, "A1", merges[0].GetStartAxis())
	assert.Equal(t, "B1", merges[0].GetEndAxis())
}

func TestWriteWorkbookEmptyRowsStillHasHeaders(t *testing.T) {
	data, err := WriteWorkbook(SheetSpec{
		Name:       "ว่าง",
		HeaderRows: [][]string{{"เลขที่เอกสาร", "จำนวนเงิน"}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("ว่าง")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"เลขที่เอกสาร", "จำนวนเงิน"}, rows[0])
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, pageCount(0, 30))
	assert.Equal(t, 1, pageCount(30, 30))
	assert.Equal(t, 2, pageCount(31, 30))
	assert.Equal(t, 4, pageCount(100, 30))
}

func TestRowsPerPageLandscapeHoldsFewerRows(t *testing.T) {
	headerH := headerHeight(3)
	portrait := rowsPerPage(pageSize(false).H, headerH)
	landscape := rowsPerPage(pageSize(true).H, headerH)
	assert.Greater(t, portrait, landscape)
	assert.GreaterOrEqual(t, landscape, 1)
}

func TestPageSizeSwapsForLandscape(t *testing.T) {
	p := pageSize(false)
	l := pageSize(true)
	assert.Equal(t, p.W, l.H)
	assert.Equal(t, p.H, l.W)
	assert.Greater(t, l.W, l.H)
}
