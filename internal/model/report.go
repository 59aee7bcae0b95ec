package model

import "fmt"

// PageSizeAll is the sentinel page size meaning "show everything": it
// forces page 1 and an unlimited fetch (offset 0, limit PageSizeAll).
const PageSizeAll = 9999

// RowKey synthesizes a unique row identity from the report mode, the
// document number and the row's position in the page. The backend can
// return duplicate document numbers, so the index is required.
func RowKey(mode int, docNo string, index int) string {
	return fmt.Sprintf("%d-%s-%d", mode, docNo, index)
}

// VatRow is one line of the VAT (purchase/sale tax) report.
type VatRow struct {
	DocNo     string  `json:"docno"`
	DocDate   string  `json:"docdate"`
	CustName  string  `json:"custname"`
	CustTaxID string  `json:"custtaxid"`
	Branch    string  `json:"branch"`
	ExceptVat float64 `json:"exceptvat"`
	VatBase   float64 `json:"vatbase"`
	VatAmount float64 `json:"vatamount"`
	Total     float64 `json:"total"`
}

// WithholdingDetail is one withheld line under a withholding-tax document.
type WithholdingDetail struct {
	AccountCode string  `json:"accountcode"`
	AccountName string  `json:"accountname"`
	TaxRate     float64 `json:"taxrate"`
	TaxBase     float64 `json:"taxbase"`
	TaxAmount   float64 `json:"taxamount"`
}

// WithholdingRow is one line of the withholding/withheld tax reports. The
// page-level totals read only the first detail, matching how the backend
// denormalizes the document header.
type WithholdingRow struct {
	DocNo     string              `json:"docno"`
	DocDate   string              `json:"docdate"`
	CustName  string              `json:"custname"`
	CustTaxID string              `json:"custtaxid"`
	Details   []WithholdingDetail `json:"details"`
}

// FirstDetail returns the leading detail line, zero value when absent.
func (r WithholdingRow) FirstDetail() WithholdingDetail {
	if len(r.Details) == 0 {
		return WithholdingDetail{}
	}
	return r.Details[0]
}

// JournalLine is one posting line of a journal document, shown when a
// report row is expanded.
type JournalLine struct {
	AccountCode string  `json:"accountcode"`
	AccountName string  `json:"accountname"`
	Debit       float64 `json:"debitamount"`
	Credit      float64 `json:"creditamount"`
}

// StatusRow is one line of the accounts payable / receivable status
// reports.
type StatusRow struct {
	CustCode         string  `json:"custcode"`
	CustName         string  `json:"custname"`
	DocNo            string  `json:"docno"`
	DocDate          string  `json:"docdate"`
	BeginningBalance float64 `json:"beginning_balance"`
	DebitAmount      float64 `json:"debit_amount"`
	CreditAmount     float64 `json:"credit_amount"`
	EndingBalance    float64 `json:"ending_balance"`
}
