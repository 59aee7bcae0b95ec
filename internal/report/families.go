package report

import (
	"context"
	"net/url"
	"strconv"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/export"
	"github.com/thanakrit/ledgerctl/internal/model"
	"github.com/thanakrit/ledgerctl/internal/money"
)

// Report family keys, used for CLI selection and filter snapshots.
const (
	FamilyPurchaseVat = "purchase-vat"
	FamilySaleVat     = "sale-vat"
	FamilyPND3        = "withholding-pnd3"
	FamilyPND53       = "withholding-pnd53"
	FamilyWithheld    = "withheld"
	FamilyPayable     = "payable"
	FamilyReceivable  = "receivable"
)

// VAT report modes.
const (
	vatModePurchase = 0
	vatModeSale     = 1
)

// Withholding counterparty classes as the report endpoints encode them.
const (
	custTypeIndividual = 0
	custTypeJuristic   = 1
)

const defaultPageSize = 10

func fmtAmount(v float64) string {
	return money.FormatDisplay(v, money.DisplayDecimalPlaces)
}

func vatQuery(q Query, mode int) api.VatReportParams {
	return api.VatReportParams{
		Limit:    q.Limit,
		Offset:   q.Offset,
		Mode:     mode,
		Year:     q.Filters.Year,
		Period:   q.Filters.Period,
		FromDate: q.Filters.FromDate,
		ToDate:   q.Filters.ToDate,
		ShopID:   q.Shop.ID,
		ShopName: q.Shop.Name,
		TaxID:    q.Shop.TaxID,
		Address:  q.Shop.Address,
	}
}

func vatRows(mode int, rows []model.VatRow) []Row {
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		out = append(out, Row{
			Key: model.RowKey(mode, r.DocNo, i),
			Cells: map[string]string{
				"docno":     r.DocNo,
				"docdate":   r.DocDate,
				"custname":  r.CustName,
				"custtaxid": r.CustTaxID,
				"branch":    r.Branch,
				"exceptvat": fmtAmount(r.ExceptVat),
				"vatbase":   fmtAmount(r.VatBase),
				"vatamount": fmtAmount(r.VatAmount),
				"total":     fmtAmount(r.Total),
			},
			Amounts: map[string]float64{
				"exceptvat": r.ExceptVat,
				"vatbase":   r.VatBase,
				"vatamount": r.VatAmount,
				"total":     r.Total,
			},
		})
	}
	return out
}

func vatFetcher(mode int) Fetcher {
	return func(ctx context.Context, client *api.Client, q Query) ([]Row, int, error) {
		rows, total, err := client.JournalVat(ctx, vatQuery(q, mode))
		if err != nil {
			return nil, 0, err
		}
		return vatRows(mode, rows), total, nil
	}
}

func vatPDFParams(mode int) func(q Query) url.Values {
	return func(q Query) url.Values {
		p := vatQuery(q, mode)
		v := url.Values{}
		v.Set("limit", strconv.Itoa(p.Limit))
		v.Set("offset", strconv.Itoa(p.Offset))
		v.Set("mode", strconv.Itoa(p.Mode))
		v.Set("year", strconv.Itoa(p.Year))
		v.Set("period", strconv.Itoa(p.Period))
		v.Set("fromdate", p.FromDate)
		v.Set("todate", p.ToDate)
		v.Set("shopid", p.ShopID)
		v.Set("shopname", p.ShopName)
		v.Set("taxid", p.TaxID)
		v.Set("address", p.Address)
		return v
	}
}

var vatColumns = []Column{
	{Key: "docno", Title: "เลขที่เอกสาร", Width: 80},
	{Key: "docdate", Title: "วันที่", Width: 60, Align: export.AlignCenter},
	{Key: "custname", Title: "ชื่อผู้ประกอบการ", Width: 150},
	{Key: "custtaxid", Title: "เลขประจำตัวผู้เสียภาษี", Width: 90, Align: export.AlignCenter},
	{Key: "branch", Title: "สาขา", Width: 45, Align: export.AlignCenter},
	{Key: "exceptvat", Title: "ยกเว้นภาษี", Width: 70, Align: export.AlignRight, Total: true},
	{Key: "vatbase", Title: "มูลค่าสินค้า/บริการ", Width: 85, Align: export.AlignRight, Total: true},
	{Key: "vatamount", Title: "ภาษีมูลค่าเพิ่ม", Width: 75, Align: export.AlignRight, Total: true},
	{Key: "total", Title: "รวมทั้งสิ้น", Width: 80, Align: export.AlignRight, Total: true},
}

func withholdingQuery(q Query, taxType, custType int) api.WithholdingReportParams {
	return api.WithholdingReportParams{
		Limit:    q.Limit,
		Offset:   q.Offset,
		TaxType:  taxType,
		CustType: custType,
		FromDate: q.Filters.FromDate,
		ToDate:   q.Filters.ToDate,
		ShopID:   q.Shop.ID,
		ShopName: q.Shop.Name,
		TaxID:    q.Shop.TaxID,
		Address:  q.Shop.Address,
	}
}

func withholdingRows(mode int, rows []model.WithholdingRow) []Row {
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		d := r.FirstDetail()
		out = append(out, Row{
			Key: model.RowKey(mode, r.DocNo, i),
			Cells: map[string]string{
				"docno":     r.DocNo,
				"docdate":   r.DocDate,
				"custname":  r.CustName,
				"custtaxid": r.CustTaxID,
				"account":   d.AccountName,
				"taxrate":   fmtAmount(d.TaxRate),
				"taxbase":   fmtAmount(d.TaxBase),
				"taxamount": fmtAmount(d.TaxAmount),
			},
			Amounts: map[string]float64{
				"taxbase":   d.TaxBase,
				"taxamount": d.TaxAmount,
			},
		})
	}
	return out
}

func withholdingFetcher(path string, taxType, custType int) Fetcher {
	return func(ctx context.Context, client *api.Client, q Query) ([]Row, int, error) {
		params := withholdingQuery(q, taxType, custType)
		var (
			rows  []model.WithholdingRow
			total int
			err   error
		)
		if path == "deduct" {
			rows, total, err = client.JournalTaxDeduct(ctx, params)
		} else {
			rows, total, err = client.JournalTax(ctx, params)
		}
		if err != nil {
			return nil, 0, err
		}
		return withholdingRows(custType, rows), total, nil
	}
}

func withholdingPDFParams(taxType, custType int) func(q Query) url.Values {
	return func(q Query) url.Values {
		p := withholdingQuery(q, taxType, custType)
		v := url.Values{}
		v.Set("limit", strconv.Itoa(p.Limit))
		v.Set("offset", strconv.Itoa(p.Offset))
		v.Set("taxtype", strconv.Itoa(p.TaxType))
		v.Set("custtype", strconv.Itoa(p.CustType))
		v.Set("fromdate", p.FromDate)
		v.Set("todate", p.ToDate)
		v.Set("shopid", p.ShopID)
		v.Set("shopname", p.ShopName)
		v.Set("taxid", p.TaxID)
		v.Set("address", p.Address)
		return v
	}
}

var withholdingColumns = []Column{
	{Key: "docno", Title: "เลขที่เอกสาร", Width: 85},
	{Key: "docdate", Title: "วันที่จ่าย", Width: 60, Align: export.AlignCenter},
	{Key: "custname", Title: "ผู้ถูกหักภาษี", Width: 170},
	{Key: "custtaxid", Title: "เลขประจำตัวผู้เสียภาษี", Width: 95, Align: export.AlignCenter},
	{Key: "account", Title: "ประเภทเงินได้", Width: 120},
	{Key: "taxrate", Title: "อัตรา (%)", Width: 50, Align: export.AlignRight},
	{Key: "taxbase", Title: "เงินได้ที่จ่าย", Width: 85, Align: export.AlignRight, Total: true},
	{Key: "taxamount", Title: "ภาษีที่หัก", Width: 75, Align: export.AlignRight, Total: true},
}

func statusQuery(q Query) api.StatusReportParams {
	return api.StatusReportParams{
		Limit:       q.Limit,
		Offset:      q.Offset,
		FromDate:    q.Filters.FromDate,
		ToDate:      q.Filters.ToDate,
		ShopID:      q.Shop.ID,
		AccountCode: q.Filters.AccountCode,
		CustCode:    q.Filters.CustCode,
	}
}

func statusRows(mode int, rows []model.StatusRow) []Row {
	out := make([]Row, 0, len(rows))
	for i, r := range rows {
		out = append(out, Row{
			Key: model.RowKey(mode, r.DocNo, i),
			Cells: map[string]string{
				"custcode":  r.CustCode,
				"custname":  r.CustName,
				"docno":     r.DocNo,
				"docdate":   r.DocDate,
				"beginning": fmtAmount(r.BeginningBalance),
				"debit":     fmtAmount(r.DebitAmount),
				"credit":    fmtAmount(r.CreditAmount),
				"ending":    fmtAmount(r.EndingBalance),
			},
			Amounts: map[string]float64{
				"beginning": r.BeginningBalance,
				"debit":     r.DebitAmount,
				"credit":    r.CreditAmount,
				"ending":    r.EndingBalance,
			},
		})
	}
	return out
}

func statusFetcher(receivable bool) Fetcher {
	mode := 0
	if receivable {
		mode = 1
	}
	return func(ctx context.Context, client *api.Client, q Query) ([]Row, int, error) {
		var (
			rows  []model.StatusRow
			total int
			err   error
		)
		if receivable {
			rows, total, err = client.AccountsReceivable(ctx, statusQuery(q))
		} else {
			rows, total, err = client.AccountsPayable(ctx, statusQuery(q))
		}
		if err != nil {
			return nil, 0, err
		}
		return statusRows(mode, rows), total, nil
	}
}

func statusPDFParams(q Query) url.Values {
	p := statusQuery(q)
	v := url.Values{}
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	v.Set("fromdate", p.FromDate)
	v.Set("todate", p.ToDate)
	v.Set("shopid", p.ShopID)
	v.Set("accountcode", p.AccountCode)
	v.Set("custcode", p.CustCode)
	return v
}

var statusColumns = []Column{
	{Key: "custcode", Title: "รหัส", Width: 60},
	{Key: "custname", Title: "ชื่อ", Width: 170},
	{Key: "docno", Title: "เลขที่เอกสาร", Width: 85},
	{Key: "docdate", Title: "วันที่", Width: 60, Align: export.AlignCenter},
	{Key: "beginning", Title: "ยอดยกมา", Width: 80, Align: export.AlignRight, Total: true},
	{Key: "debit", Title: "เดบิต", Width: 80, Align: export.AlignRight, Total: true},
	{Key: "credit", Title: "เครดิต", Width: 80, Align: export.AlignRight, Total: true},
	{Key: "ending", Title: "ยอดคงเหลือ", Width: 80, Align: export.AlignRight, Total: true},
}

// Families returns the seven report configurations in menu order.
func Families() []Family {
	return []Family{
		{
			Key:             FamilyPurchaseVat,
			Title:           "รายงานภาษีซื้อ",
			PeriodBased:     true,
			Landscape:       true,
			DefaultPageSize: defaultPageSize,
			Columns:         vatColumns,
			Fetch:           vatFetcher(vatModePurchase),
			PDFKind:         api.PDFJournalVat,
			PDFParams:       vatPDFParams(vatModePurchase),
		},
		{
			Key:             FamilySaleVat,
			Title:           "รายงานภาษีขาย",
			PeriodBased:     true,
			Landscape:       true,
			DefaultPageSize: defaultPageSize,
			Columns:         vatColumns,
			Fetch:           vatFetcher(vatModeSale),
			PDFKind:         api.PDFJournalVat,
			PDFParams:       vatPDFParams(vatModeSale),
		},
		{
			Key:             FamilyPND3,
			Title:           "รายงานภาษีหัก ณ ที่จ่าย (ภ.ง.ด.3)",
			Landscape:       true,
			DefaultPageSize: defaultPageSize,
			Columns:         withholdingColumns,
			Fetch:           withholdingFetcher("tax", 3, custTypeIndividual),
			PDFKind:         api.PDFJournalTax,
			PDFParams:       withholdingPDFParams(3, custTypeIndividual),
		},
		{
			Key:             FamilyPND53,
			Title:           "รายงานภาษีหัก ณ ที่จ่าย (ภ.ง.ด.53)",
			Landscape:       true,
			DefaultPageSize: defaultPageSize,
			Columns:         withholdingColumns,
			Fetch:           withholdingFetcher("tax", 53, custTypeJuristic),
			PDFKind:         api.PDFJournalTax,
			PDFParams:       withholdingPDFParams(53, custTypeJuristic),
		},
		{
			Key:             FamilyWithheld,
			Title:           "รายงานภาษีถูกหัก ณ ที่จ่าย",
			Landscape:       true,
			DefaultPageSize: defaultPageSize,
			Columns:         withholdingColumns,
			Fetch:           withholdingFetcher("deduct", 0, 0),
			PDFKind:         api.PDFJournalTaxDeduct,
			PDFParams:       withholdingPDFParams(0, 0),
		},
		{
			Key:             FamilyPayable,
			Title:           "รายงานสถานะเจ้าหนี้",
			NeedAccount:     true,
			DefaultPageSize: defaultPageSize,
			Columns:         statusColumns,
			Fetch:           statusFetcher(false),
			PDFKind:         api.PDFAccountsPayable,
			PDFParams:       statusPDFParams,
		},
		{
			Key:             FamilyReceivable,
			Title:           "รายงานสถานะลูกหนี้",
			NeedAccount:     true,
			DefaultPageSize: defaultPageSize,
			Columns:         statusColumns,
			Fetch:           statusFetcher(true),
			PDFKind:         api.PDFAccountsReceivable,
			PDFParams:       statusPDFParams,
		},
	}
}

// FamilyByKey resolves a CLI-supplied family key.
func FamilyByKey(key string) (Family, bool) {
	for _, f := range Families() {
		if f.Key == key {
			return f, true
		}
	}
	return Family{}, false
}
