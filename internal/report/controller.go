package report

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/config"
	"github.com/thanakrit/ledgerctl/internal/export"
	"github.com/thanakrit/ledgerctl/internal/model"
	"github.com/thanakrit/ledgerctl/internal/money"
	"github.com/thanakrit/ledgerctl/internal/notify"
	"github.com/thanakrit/ledgerctl/internal/pdfjob"
	"github.com/thanakrit/ledgerctl/internal/session"
)

// buddhistYearOffset converts a Gregorian year to the Buddhist era the
// tax period filters use.
const buddhistYearOffset = 543

// Deps wires a controller to its collaborators. Now is optional and
// defaults to time.Now; tests inject a fixed clock.
type Deps struct {
	Client   *api.Client
	Reports  *api.ReportClient
	Poller   *pdfjob.Poller
	Store    session.Store
	Notifier notify.Notifier
	Fonts    config.Fonts
	Now      func() time.Time
}

// Controller owns all state for one report screen: filters, the
// current page of rows, master-data caches, and export. One controller
// per family per session; not shared.
type Controller struct {
	family Family
	deps   Deps

	// generation invalidates in-flight fetches superseded by a newer
	// one, so a stale response can never overwrite fresher rows.
	generation atomic.Int64

	filters  Filters
	shop     ShopStamp
	rows     []Row
	total    int
	expanded map[string]bool

	accounts       []model.ChartAccount
	counterparties []model.Counterparty
}

// NewController builds a controller for one report family.
func NewController(family Family, deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewTerminal()
	}
	return &Controller{
		family:   family,
		deps:     deps,
		expanded: map[string]bool{},
	}
}

// Filters returns the current filter state.
func (c *Controller) Filters() Filters { return c.filters }

// SetFilters replaces the adjustable filter fields, keeping pagination.
func (c *Controller) SetFilters(f Filters) {
	f.Page = c.filters.Page
	f.PageSize = c.filters.PageSize
	c.filters = f
}

// SetDateRange overrides the date filter.
func (c *Controller) SetDateRange(from, to string) {
	c.filters.FromDate = from
	c.filters.ToDate = to
}

// SetPeriod sets the tax period and derives the matching date range.
func (c *Controller) SetPeriod(buddhistYear, month int) {
	c.filters.Year = buddhistYear
	c.filters.Period = month
	gregorian := buddhistYear - buddhistYearOffset
	first := time.Date(gregorian, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	c.filters.FromDate = first.Format("2006-01-02")
	c.filters.ToDate = last.Format("2006-01-02")
}

// SetAccount selects the ledger account for status reports.
func (c *Controller) SetAccount(code string) { c.filters.AccountCode = code }

// SetCounterparty narrows status reports to one debtor or creditor.
func (c *Controller) SetCounterparty(code string) { c.filters.CustCode = code }

// Rows returns the currently loaded page.
func (c *Controller) Rows() []Row { return c.rows }

// Total returns the report's total row count across all pages.
func (c *Controller) Total() int { return c.total }

// Accounts returns the cached chart of accounts, filtered to the
// levels a user may select.
func (c *Controller) Accounts() []model.ChartAccount {
	var out []model.ChartAccount
	for _, a := range c.accounts {
		if a.Selectable() {
			out = append(out, a)
		}
	}
	return out
}

// Counterparties returns the cached debtor/creditor list.
func (c *Controller) Counterparties() []model.Counterparty { return c.counterparties }

// Initialize restores the saved filter snapshot, applies default
// dates, loads the shop profile and master data, then fetches page 1.
// A shop-profile failure leaves the report empty: the error is
// surfaced as a toast and no fetch is issued.
func (c *Controller) Initialize(ctx context.Context) error {
	sess, err := c.deps.Store.Session(ctx)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if !sess.HasShop() {
		return common.ErrShopNotSelected
	}

	c.filters.Page = 1
	c.filters.PageSize = c.family.DefaultPageSize
	c.applyDefaultDates()
	c.restoreSnapshot(ctx)

	shop, err := c.deps.Client.GetShop(ctx, sess.ShopID)
	if err != nil {
		common.LogError(err, "failed to load shop profile", common.Fields{"shopid": sess.ShopID})
		c.deps.Notifier.Error("ไม่สามารถโหลดข้อมูลกิจการได้", common.UserMessage(err))
		c.rows = nil
		c.total = 0
		return nil
	}
	c.shop = ShopStamp{
		ID:      shop.GUIDFixed,
		Name:    shop.NameTH(),
		TaxID:   shop.TaxID(),
		Address: shop.AddressTH(),
	}

	c.loadMasterData(ctx)
	return c.Fetch(ctx, false)
}

// applyDefaultDates fills the date filter with the current calendar
// month, and for period reports the current Buddhist year and month.
func (c *Controller) applyDefaultDates() {
	now := c.deps.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	c.filters.FromDate = first.Format("2006-01-02")
	c.filters.ToDate = last.Format("2006-01-02")
	if c.family.PeriodBased {
		c.filters.Year = now.Year() + buddhistYearOffset
		c.filters.Period = int(now.Month())
	}
}

func (c *Controller) restoreSnapshot(ctx context.Context) {
	snap, ok, err := c.deps.Store.Snapshot(ctx, c.family.Key)
	if err != nil {
		common.LogDebug("failed to restore filter snapshot", common.Fields{"family": c.family.Key, "error": err.Error()})
		return
	}
	if !ok {
		return
	}
	if snap.Page > 0 {
		c.filters.Page = snap.Page
	}
	if snap.PageSize > 0 {
		c.filters.PageSize = snap.PageSize
	}
	c.filters.Search = snap.Search
}

// loadMasterData fetches the chart of accounts and counterparty list
// concurrently. Failures degrade the selectors but never block the
// report itself.
func (c *Controller) loadMasterData(ctx context.Context) {
	if !c.family.NeedAccount {
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		accounts, _, err := c.deps.Client.ListChartOfAccounts(ctx, api.ListParams{Limit: 1000})
		if err != nil {
			common.LogError(err, "failed to load chart of accounts", nil)
			return
		}
		c.accounts = accounts
	}()

	kind := api.KindCreditor
	if c.family.Key == FamilyReceivable {
		kind = api.KindDebtor
	}
	go func() {
		defer wg.Done()
		items, _, err := c.deps.Client.ListCounterparties(ctx, kind, api.ListParams{Limit: 1000})
		if err != nil {
			common.LogError(err, "failed to load counterparties", common.Fields{"kind": kind})
			return
		}
		c.counterparties = items
	}()

	wg.Wait()
}

// validate checks the required filters without touching the network.
func (c *Controller) validate() error {
	if c.filters.FromDate == "" || c.filters.ToDate == "" {
		return common.NewUserError("กรุณาระบุช่วงวันที่", common.ErrMissingFilter)
	}
	if c.family.PeriodBased && (c.filters.Year == 0 || c.filters.Period == 0) {
		return common.NewUserError("กรุณาระบุปีและเดือนภาษี", common.ErrMissingFilter)
	}
	if c.family.NeedAccount && c.filters.AccountCode == "" {
		return common.NewUserError("กรุณาเลือกบัญชี", common.ErrMissingFilter)
	}
	return nil
}

// query resolves page and page size into the request the fetcher
// receives. The unlimited sentinel forces page 1 and offset 0.
func (c *Controller) query() Query {
	limit := c.filters.PageSize
	offset := (c.filters.Page - 1) * c.filters.PageSize
	if c.filters.PageSize == PageSizeAll {
		limit = PageSizeAll
		offset = 0
	}
	return Query{Limit: limit, Offset: offset, Filters: c.filters, Shop: c.shop}
}

// Fetch loads the current page. With resetPage the page rewinds to 1
// first. Validation failures warn and skip the network; fetch failures
// clear the rows so stale data never shows under new filters.
func (c *Controller) Fetch(ctx context.Context, resetPage bool) error {
	if err := c.validate(); err != nil {
		c.deps.Notifier.Warn(common.UserMessage(err), "")
		return nil
	}
	if resetPage {
		c.filters.Page = 1
	}
	if c.filters.PageSize == PageSizeAll {
		c.filters.Page = 1
	}

	gen := c.generation.Add(1)
	rows, total, err := c.family.Fetch(ctx, c.deps.Client, c.query())
	if gen != c.generation.Load() {
		// A newer fetch superseded this one; drop the result.
		return nil
	}
	if err != nil {
		common.LogError(err, "report fetch failed", common.Fields{"family": c.family.Key, "page": c.filters.Page})
		c.deps.Notifier.Error("โหลดรายงานไม่สำเร็จ", common.UserMessage(err))
		c.rows = nil
		c.total = 0
		return nil
	}

	c.rows = rows
	c.total = total
	c.pruneExpanded()
	c.saveSnapshot(ctx)
	common.LogInfo("report page loaded", common.Fields{"family": c.family.Key, "rows": len(rows), "total": total})
	return nil
}

// pruneExpanded drops expansion state for rows no longer loaded.
func (c *Controller) pruneExpanded() {
	keep := make(map[string]bool, len(c.expanded))
	for _, r := range c.rows {
		if c.expanded[r.Key] {
			keep[r.Key] = true
		}
	}
	c.expanded = keep
}

func (c *Controller) saveSnapshot(ctx context.Context) {
	snap := session.FilterSnapshot{
		Page:     c.filters.Page,
		PageSize: c.filters.PageSize,
		Search:   c.filters.Search,
	}
	if err := c.deps.Store.SaveSnapshot(ctx, c.family.Key, snap); err != nil {
		common.LogDebug("failed to save filter snapshot", common.Fields{"family": c.family.Key, "error": err.Error()})
	}
}

// TotalPages derives the page count from the total row count. The
// unlimited sentinel always yields a single page.
func (c *Controller) TotalPages() int {
	if c.filters.PageSize == PageSizeAll || c.filters.PageSize <= 0 {
		return 1
	}
	pages := (c.total + c.filters.PageSize - 1) / c.filters.PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// GoToPage moves to page n and fetches it. Out-of-range pages no-op.
func (c *Controller) GoToPage(ctx context.Context, n int) error {
	if n < 1 || n > c.TotalPages() || n == c.filters.Page {
		return nil
	}
	c.filters.Page = n
	return c.Fetch(ctx, false)
}

// SetPageSize changes the page size and reloads from page 1 with a
// single fetch.
func (c *Controller) SetPageSize(ctx context.Context, size int) error {
	if size == c.filters.PageSize {
		return nil
	}
	c.filters.PageSize = size
	return c.Fetch(ctx, true)
}

// SearchAndClose applies the pending filter edits: validates, then
// fetches from page 1. Reports success so the user sees the filter
// took effect.
func (c *Controller) SearchAndClose(ctx context.Context) error {
	if err := c.validate(); err != nil {
		c.deps.Notifier.Warn(common.UserMessage(err), "")
		return nil
	}
	if err := c.Fetch(ctx, true); err != nil {
		return err
	}
	if len(c.rows) > 0 {
		c.deps.Notifier.Success("โหลดรายงานแล้ว", fmt.Sprintf("%d รายการ", c.total))
	}
	return nil
}

// ToggleExpanded flips a row's detail expansion.
func (c *Controller) ToggleExpanded(key string) {
	if c.expanded[key] {
		delete(c.expanded, key)
		return
	}
	c.expanded[key] = true
}

// IsExpanded reports whether a row's details are open.
func (c *Controller) IsExpanded(key string) bool { return c.expanded[key] }

// Totals sums the totalled columns over the loaded page only.
func (c *Controller) Totals() map[string]float64 {
	totals := map[string]float64{}
	for _, key := range c.family.TotalColumns() {
		sum := 0.0
		for _, r := range c.rows {
			sum += r.Amounts[key]
		}
		totals[key] = money.Round(sum, money.DecimalPlaces)
	}
	return totals
}

// IsDownloadDisabled reports whether the PDF download should be
// offered: required filters must be set and the page non-empty.
func (c *Controller) IsDownloadDisabled() bool {
	return c.validate() != nil || len(c.rows) == 0
}

// DownloadPDF re-validates the filters, backfills the shop profile if
// initialization skipped it, then runs the render job to completion
// with an unlimited page size. Returns the document bytes and the
// server-assigned file name.
func (c *Controller) DownloadPDF(ctx context.Context) ([]byte, string, error) {
	if err := c.validate(); err != nil {
		c.deps.Notifier.Warn(common.UserMessage(err), "")
		return nil, "", err
	}
	if c.shop.ID == "" {
		if err := c.backfillShop(ctx); err != nil {
			c.deps.Notifier.Error("ไม่สามารถโหลดข้อมูลกิจการได้", common.UserMessage(err))
			return nil, "", err
		}
	}

	q := c.query()
	q.Limit = PageSizeAll
	q.Offset = 0
	params := c.family.PDFParams(q)

	data, job, err := c.deps.Poller.Run(ctx, pdfjob.Endpoints{
		Submit: func(ctx context.Context) (model.PDFJob, error) {
			return c.deps.Reports.Generate(ctx, c.family.PDFKind, params)
		},
		Check: func(ctx context.Context, job model.PDFJob) (bool, error) {
			return c.deps.Reports.Check(ctx, c.family.PDFKind, job)
		},
		Fetch: func(ctx context.Context, job model.PDFJob) ([]byte, error) {
			return c.deps.Reports.Download(ctx, c.deps.Reports.DownloadURL(c.family.PDFKind, job))
		},
	})
	if err != nil {
		common.LogError(err, "pdf download failed", common.Fields{"family": c.family.Key})
		c.deps.Notifier.Error("ดาวน์โหลดเอกสารไม่สำเร็จ", common.UserMessage(err))
		return nil, "", err
	}

	c.deps.Notifier.Success("ดาวน์โหลดเอกสารแล้ว", job.FileName)
	return data, job.FileName, nil
}

func (c *Controller) backfillShop(ctx context.Context) error {
	sess, err := c.deps.Store.Session(ctx)
	if err != nil {
		return err
	}
	if !sess.HasShop() {
		return common.ErrShopNotSelected
	}
	shop, err := c.deps.Client.GetShop(ctx, sess.ShopID)
	if err != nil {
		return err
	}
	c.shop = ShopStamp{
		ID:      shop.GUIDFixed,
		Name:    shop.NameTH(),
		TaxID:   shop.TaxID(),
		Address: shop.AddressTH(),
	}
	return nil
}

// subtitles builds the shop/date heading lines shared by both export
// formats.
func (c *Controller) subtitles() []string {
	lines := []string{}
	if c.shop.Name != "" {
		lines = append(lines, c.shop.Name)
	}
	if c.shop.TaxID != "" {
		lines = append(lines, "เลขประจำตัวผู้เสียภาษี "+c.shop.TaxID)
	}
	lines = append(lines, fmt.Sprintf("ตั้งแต่วันที่ %s ถึง %s", c.filters.FromDate, c.filters.ToDate))
	return lines
}

// ExportExcel renders the loaded page into a workbook. An empty page
// still produces the header row.
func (c *Controller) ExportExcel() ([]byte, error) {
	header := make([]string, len(c.family.Columns))
	widths := make([]float64, len(c.family.Columns))
	for i, col := range c.family.Columns {
		header[i] = col.Title
		widths[i] = col.Width / 5
	}

	rows := make([][]any, 0, len(c.rows)+1)
	for _, r := range c.rows {
		cells := make([]any, len(c.family.Columns))
		for i, col := range c.family.Columns {
			if col.Total {
				cells[i] = r.Amounts[col.Key]
				continue
			}
			cells[i] = r.Cells[col.Key]
		}
		rows = append(rows, cells)
	}
	if len(c.rows) > 0 {
		rows = append(rows, c.totalCells())
	}

	headerRows := [][]string{{c.family.Title}}
	for _, line := range c.subtitles() {
		headerRows = append(headerRows, []string{line})
	}
	headerRows = append(headerRows, header)

	merges := make([]export.MergeRange, 0, len(headerRows)-1)
	for i := 1; i < len(headerRows); i++ {
		merges = append(merges, export.MergeRange{
			FromRow: i, FromCol: 1, ToRow: i, ToCol: len(c.family.Columns),
		})
	}

	return export.WriteWorkbook(export.SheetSpec{
		Name:       c.family.Key,
		HeaderRows: headerRows,
		Rows:       rows,
		Merges:     merges,
		ColWidths:  widths,
	})
}

func (c *Controller) totalCells() []any {
	totals := c.Totals()
	cells := make([]any, len(c.family.Columns))
	for i, col := range c.family.Columns {
		if col.Total {
			cells[i] = totals[col.Key]
		} else if i == 0 {
			cells[i] = "รวม"
		} else {
			cells[i] = ""
		}
	}
	return cells
}

// ExportPDF renders the loaded page into a local PDF with the
// configured fonts. This is the offline alternative to DownloadPDF.
func (c *Controller) ExportPDF() ([]byte, error) {
	cols := make([]export.Column, len(c.family.Columns))
	for i, col := range c.family.Columns {
		cols[i] = export.Column{Title: col.Title, Width: col.Width, Align: col.Align}
	}

	rows := make([][]string, 0, len(c.rows))
	for _, r := range c.rows {
		cells := make([]string, len(c.family.Columns))
		for i, col := range c.family.Columns {
			cells[i] = r.Cells[col.Key]
		}
		rows = append(rows, cells)
	}

	var totalRow []string
	if len(c.rows) > 0 {
		totals := c.Totals()
		totalRow = make([]string, len(c.family.Columns))
		for i, col := range c.family.Columns {
			switch {
			case col.Total:
				totalRow[i] = money.FormatDisplay(totals[col.Key], money.DisplayDecimalPlaces)
			case i == 0:
				totalRow[i] = "รวม"
			}
		}
	}

	writer := export.NewPDFWriter(c.deps.Fonts)
	return writer.Render(export.TableDoc{
		Title:     c.family.Title,
		Subtitles: c.subtitles(),
		Landscape: c.family.Landscape,
		Columns:   cols,
		Rows:      rows,
		TotalRow:  totalRow,
	})
}
