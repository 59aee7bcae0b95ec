package export

import (
	"fmt"

	"github.com/signintech/gopdf"

	"github.com/thanakrit/ledgerctl/internal/config"
)

// Align positions text within a table cell.
type Align int

// Cell alignments.
const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column describes one table column. Width is in points.
type Column struct {
	Title string
	Width float64
	Align Align
}

// TableDoc is a titled tabular document. Subtitles render centered
// under the title, one per line; wide reports set Landscape.
type TableDoc struct {
	Title     string
	Subtitles []string
	Landscape bool
	Columns   []Column
	Rows      [][]string
	TotalRow  []string
}

// Layout constants, all in points.
const (
	marginX      = 36.0
	marginTop    = 40.0
	marginBottom = 48.0
	titleSize    = 16.0
	subtitleSize = 11.0
	bodySize     = 10.0
	lineHeight   = 16.0
	rowHeight    = 18.0
	headerRowH   = 20.0
	footerOffset = 30.0
)

const (
	fontRegular = "sarabun"
	fontBold    = "sarabun-bold"
)

// PDFWriter renders table documents with the configured Thai fonts.
type PDFWriter struct {
	fonts config.Fonts
}

// NewPDFWriter returns a writer using the given font files. Font
// loading is deferred to Render so construction never touches disk.
func NewPDFWriter(fonts config.Fonts) *PDFWriter {
	return &PDFWriter{fonts: fonts}
}

func pageSize(landscape bool) gopdf.Rect {
	if landscape {
		return gopdf.Rect{W: gopdf.PageSizeA4.H, H: gopdf.PageSizeA4.W}
	}
	return *gopdf.PageSizeA4
}

// headerHeight is the vertical space consumed by the title block and
// the column header row on every page.
func headerHeight(subtitleCount int) float64 {
	return lineHeight + 6 + float64(subtitleCount)*lineHeight + 8 + headerRowH + 2
}

// rowsPerPage returns how many data rows fit under the header block.
func rowsPerPage(pageH, headerH float64) int {
	usable := pageH - marginTop - marginBottom - headerH
	n := int(usable / rowHeight)
	if n < 1 {
		n = 1
	}
	return n
}

// pageCount is the number of pages needed for rowCount rows. An empty
// report still renders one page with headers.
func pageCount(rowCount, perPage int) int {
	if rowCount <= 0 {
		return 1
	}
	return (rowCount + perPage - 1) / perPage
}

// Render lays the document out page by page and returns the PDF bytes.
// The page count is computed up front so each footer can carry the
// full "หน้า X / Y" marker.
func (w *PDFWriter) Render(doc TableDoc) ([]byte, error) {
	size := pageSize(doc.Landscape)
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: size})

	if err := pdf.AddTTFFont(fontRegular, w.fonts.RegularPath); err != nil {
		return nil, fmt.Errorf("loading font %s: %w", w.fonts.RegularPath, err)
	}
	boldPath := w.fonts.BoldPath
	if boldPath == "" {
		boldPath = w.fonts.RegularPath
	}
	if err := pdf.AddTTFFont(fontBold, boldPath); err != nil {
		return nil, fmt.Errorf("loading font %s: %w", boldPath, err)
	}

	headerH := headerHeight(len(doc.Subtitles))
	perPage := rowsPerPage(size.H, headerH)
	pages := pageCount(len(doc.Rows), perPage)

	for page := 1; page <= pages; page++ {
		pdf.AddPage()
		y, err := w.renderHeader(pdf, size, doc)
		if err != nil {
			return nil, err
		}

		start := (page - 1) * perPage
		end := start + perPage
		if end > len(doc.Rows) {
			end = len(doc.Rows)
		}
		for _, row := range doc.Rows[start:end] {
			if err := w.renderRow(pdf, doc.Columns, row, y, fontRegular); err != nil {
				return nil, err
			}
			y += rowHeight
		}

		if page == pages && len(doc.TotalRow) > 0 {
			if err := w.renderRow(pdf, doc.Columns, doc.TotalRow, y, fontBold); err != nil {
				return nil, err
			}
		}

		if err := w.renderFooter(pdf, size, page, pages); err != nil {
			return nil, err
		}
	}

	return pdf.GetBytesPdf(), nil
}

func (w *PDFWriter) renderHeader(pdf *gopdf.GoPdf, size gopdf.Rect, doc TableDoc) (float64, error) {
	y := marginTop
	if err := w.centeredText(pdf, size, doc.Title, fontBold, titleSize, y); err != nil {
		return 0, err
	}
	y += lineHeight + 6

	for _, sub := range doc.Subtitles {
		if err := w.centeredText(pdf, size, sub, fontRegular, subtitleSize, y); err != nil {
			return 0, err
		}
		y += lineHeight
	}
	y += 8

	if err := pdf.SetFont(fontBold, "", bodySize); err != nil {
		return 0, err
	}
	x := marginX
	for _, col := range doc.Columns {
		pdf.SetX(x)
		pdf.SetY(y)
		err := pdf.CellWithOption(&gopdf.Rect{W: col.Width, H: headerRowH}, col.Title, gopdf.CellOption{
			Align:  gopdf.Center | gopdf.Middle,
			Border: gopdf.AllBorders,
		})
		if err != nil {
			return 0, fmt.Errorf("rendering column header %q: %w", col.Title, err)
		}
		x += col.Width
	}
	return y + headerRowH + 2, nil
}

func (w *PDFWriter) renderRow(pdf *gopdf.GoPdf, cols []Column, row []string, y float64, font string) error {
	if err := pdf.SetFont(font, "", bodySize); err != nil {
		return err
	}
	x := marginX
	for i, col := range cols {
		text := ""
		if i < len(row) {
			text = row[i]
		}
		pdf.SetX(x)
		pdf.SetY(y)
		opt := gopdf.CellOption{Align: cellAlign(col.Align) | gopdf.Middle}
		if err := pdf.CellWithOption(&gopdf.Rect{W: col.Width, H: rowHeight}, text, opt); err != nil {
			return fmt.Errorf("rendering cell %q: %w", text, err)
		}
		x += col.Width
	}
	return nil
}

func (w *PDFWriter) renderFooter(pdf *gopdf.GoPdf, size gopdf.Rect, page, pages int) error {
	marker := fmt.Sprintf("หน้า %d / %d", page, pages)
	return w.centeredText(pdf, size, marker, fontRegular, 9, size.H-footerOffset)
}

func (w *PDFWriter) centeredText(pdf *gopdf.GoPdf, size gopdf.Rect, text, font string, ptSize, y float64) error {
	if err := pdf.SetFont(font, "", ptSize); err != nil {
		return err
	}
	width, err := pdf.MeasureTextWidth(text)
	if err != nil {
		return fmt.Errorf("measuring %q: %w", text, err)
	}
	pdf.SetX((size.W - width) / 2)
	pdf.SetY(y)
	return pdf.Cell(nil, text)
}

func cellAlign(a Align) int {
	switch a {
	case AlignRight:
		return gopdf.Right
	case AlignCenter:
		return gopdf.Center
	default:
		return gopdf.Left
	}
}
