// Package export turns report rows into downloadable documents. Excel
// workbooks are built locally with excelize; PDF documents are laid
// out with gopdf using the configured Thai fonts.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// MergeRange spans header cells across columns or rows. Coordinates
// are 1-based, matching spreadsheet conventions.
type MergeRange struct {
	FromRow, FromCol int
	ToRow, ToCol     int
}

// SheetSpec describes one worksheet. Header rows are rendered bold and
// centered above the data rows; an empty Rows slice still produces the
// headers so users get a well-formed file for an empty period.
type SheetSpec struct {
	Name       string
	HeaderRows [][]string
	Rows       [][]any
	Merges     []MergeRange
	ColWidths  []float64
}

// WriteWorkbook renders a single-sheet workbook and returns the xlsx
// bytes ready to be written to disk.
func WriteWorkbook(spec SheetSpec) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := spec.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("naming sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("building header style: %w", err)
	}

	for r, header := range spec.HeaderRows {
		for c, label := range header {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("header cell %d,%d: %w", r+1, c+1, err)
			}
			if err := f.SetCellValue(sheet, cell, label); err != nil {
				return nil, fmt.Errorf("writing header cell %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return nil, fmt.Errorf("styling header cell %s: %w", cell, err)
			}
		}
	}

	for _, m := range spec.Merges {
		from, err := excelize.CoordinatesToCellName(m.FromCol, m.FromRow)
		if err != nil {
			return nil, fmt.Errorf("merge range start: %w", err)
		}
		to, err := excelize.CoordinatesToCellName(m.ToCol, m.ToRow)
		if err != nil {
			return nil, fmt.Errorf("merge range end: %w", err)
		}
		if err := f.MergeCell(sheet, from, to); err != nil {
			return nil, fmt.Errorf("merging %s:%s: %w", from, to, err)
		}
	}

	dataStart := len(spec.HeaderRows) + 1
	for r, row := range spec.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, dataStart+r)
			if err != nil {
				return nil, fmt.Errorf("data cell %d,%d: %w", dataStart+r, c+1, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("writing data cell %s: %w", cell, err)
			}
		}
	}

	for c, width := range spec.ColWidths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", c+1, err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
