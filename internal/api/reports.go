package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/thanakrit/ledgerctl/internal/model"
)

// Report endpoints take limit/offset plus the shop stamp fields the
// rendered documents need. Responses carry either a total or pagination
// metadata; callers fall back to the returned row count when both are
// absent.

// VatReportParams filters the VAT (purchase/sale tax) report.
type VatReportParams struct {
	Limit    int
	Offset   int
	Mode     int
	Year     int
	Period   int
	FromDate string
	ToDate   string
	ShopID   string
	ShopName string
	TaxID    string
	Address  string
}

func (p VatReportParams) values() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("mode", strconv.Itoa(p.Mode))
	q.Set("year", strconv.Itoa(p.Year))
	q.Set("period", strconv.Itoa(p.Period))
	q.Set("fromdate", p.FromDate)
	q.Set("todate", p.ToDate)
	q.Set("shopid", p.ShopID)
	q.Set("shopname", p.ShopName)
	q.Set("taxid", p.TaxID)
	q.Set("address", p.Address)
	return q
}

// JournalVat fetches a page of the VAT report.
func (c *Client) JournalVat(ctx context.Context, p VatReportParams) ([]model.VatRow, int, error) {
	env, err := c.do(ctx, http.MethodGet, "/apireport/journalvat", p.values(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vat report: %w", err)
	}
	var rows []model.VatRow
	if err := decodeData(env, &rows); err != nil {
		return nil, 0, err
	}
	return rows, reportTotal(env, len(rows)), nil
}

// WithholdingReportParams filters the withholding/withheld tax reports.
type WithholdingReportParams struct {
	Limit    int
	Offset   int
	TaxType  int
	CustType int
	FromDate string
	ToDate   string
	ShopID   string
	ShopName string
	TaxID    string
	Address  string
}

func (p WithholdingReportParams) values() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("taxtype", strconv.Itoa(p.TaxType))
	q.Set("custtype", strconv.Itoa(p.CustType))
	q.Set("fromdate", p.FromDate)
	q.Set("todate", p.ToDate)
	q.Set("shopid", p.ShopID)
	q.Set("shopname", p.ShopName)
	q.Set("taxid", p.TaxID)
	q.Set("address", p.Address)
	return q
}

// JournalTax fetches a page of the withholding tax report.
func (c *Client) JournalTax(ctx context.Context, p WithholdingReportParams) ([]model.WithholdingRow, int, error) {
	return c.withholdingReport(ctx, "/apireport/journaltax", p)
}

// JournalTaxDeduct fetches a page of the withheld tax report.
func (c *Client) JournalTaxDeduct(ctx context.Context, p WithholdingReportParams) ([]model.WithholdingRow, int, error) {
	return c.withholdingReport(ctx, "/apireport/journaltaxdeduct", p)
}

func (c *Client) withholdingReport(ctx context.Context, path string, p WithholdingReportParams) ([]model.WithholdingRow, int, error) {
	env, err := c.do(ctx, http.MethodGet, path, p.values(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch withholding report: %w", err)
	}
	var rows []model.WithholdingRow
	if err := decodeData(env, &rows); err != nil {
		return nil, 0, err
	}
	return rows, reportTotal(env, len(rows)), nil
}

// StatusReportParams filters the accounts payable/receivable reports.
type StatusReportParams struct {
	Limit       int
	Offset      int
	FromDate    string
	ToDate      string
	ShopID      string
	AccountCode string
	CustCode    string
}

func (p StatusReportParams) values() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("fromdate", p.FromDate)
	q.Set("todate", p.ToDate)
	q.Set("shopid", p.ShopID)
	q.Set("accountcode", p.AccountCode)
	q.Set("custcode", p.CustCode)
	return q
}

// AccountsPayable fetches a page of the creditor status report.
func (c *Client) AccountsPayable(ctx context.Context, p StatusReportParams) ([]model.StatusRow, int, error) {
	return c.statusReport(ctx, "/apireport/accountspayable", p)
}

// AccountsReceivable fetches a page of the debtor status report.
func (c *Client) AccountsReceivable(ctx context.Context, p StatusReportParams) ([]model.StatusRow, int, error) {
	return c.statusReport(ctx, "/apireport/accountsreceivable", p)
}

func (c *Client) statusReport(ctx context.Context, path string, p StatusReportParams) ([]model.StatusRow, int, error) {
	env, err := c.do(ctx, http.MethodGet, path, p.values(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch status report: %w", err)
	}
	var rows []model.StatusRow
	if err := decodeData(env, &rows); err != nil {
		return nil, 0, err
	}
	return rows, reportTotal(env, len(rows)), nil
}

// JournalDetail fetches the posting lines of one journal document.
func (c *Client) JournalDetail(ctx context.Context, docNo string) ([]model.JournalLine, error) {
	env, err := c.do(ctx, http.MethodGet, "/gl/journal/docno/"+url.PathEscape(docNo), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal detail: %w", err)
	}
	var doc struct {
		Journals []model.JournalLine `json:"journaldetail"`
	}
	if err := decodeData(env, &doc); err != nil {
		return nil, err
	}
	return doc.Journals, nil
}

// reportTotal resolves the total record count: pagination metadata first,
// then the flat total, then the returned row count.
func reportTotal(env *envelope, rowCount int) int {
	if env.Pagination != nil && env.Pagination.Total > 0 {
		return env.Pagination.Total
	}
	if env.Total > 0 {
		return env.Total
	}
	return rowCount
}
