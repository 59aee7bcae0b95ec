// Package report drives the tax and account-status report screens: one
// parameterized controller owns filter state, pagination, fetching,
// and document export for every report family.
package report

import (
	"context"
	"net/url"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/export"
	"github.com/thanakrit/ledgerctl/internal/model"
)

// Filters is the user-adjustable query state for one report screen.
// Period reports use Year (Buddhist era) and Period (month 1-12); the
// date range is always carried alongside because the backend filters
// on it regardless.
type Filters struct {
	Year        int
	Period      int
	FromDate    string
	ToDate      string
	AccountCode string
	CustCode    string
	Search      string
	Page        int
	PageSize    int
}

// ShopStamp is the owning shop's identity printed on rendered reports.
type ShopStamp struct {
	ID      string
	Name    string
	TaxID   string
	Address string
}

// Query is the resolved request handed to a family's fetch binding.
// Limit and Offset are already computed from page and page size.
type Query struct {
	Limit   int
	Offset  int
	Filters Filters
	Shop    ShopStamp
}

// Column describes one display column of a report table. Columns with
// Total set contribute to the page totals.
type Column struct {
	Key   string
	Title string
	Width float64
	Align export.Align
	Total bool
}

// Row is a family-normalized report row. Cells hold display values
// keyed by column key; Amounts carry the raw numbers behind the
// totalled columns. Key is unique within a fetch even when the
// backend repeats document numbers.
type Row struct {
	Key     string
	Cells   map[string]string
	Amounts map[string]float64
}

// Fetcher retrieves one page of rows plus the report's total row count.
type Fetcher func(ctx context.Context, client *api.Client, q Query) ([]Row, int, error)

// Family configures the controller for one report type. All seven
// report screens share the controller; only the Family differs.
type Family struct {
	Key             string
	Title           string
	PeriodBased     bool
	NeedAccount     bool
	Landscape       bool
	DefaultPageSize int
	Columns         []Column
	Fetch           Fetcher
	PDFKind         string
	PDFParams       func(q Query) url.Values
}

// column looks a column up by key.
func (f Family) column(key string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// TotalColumns returns the keys of columns that are summed per page.
func (f Family) TotalColumns() []string {
	var keys []string
	for _, c := range f.Columns {
		if c.Total {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// PageSizeAll mirrors the backend's unlimited-page sentinel.
const PageSizeAll = model.PageSizeAll
