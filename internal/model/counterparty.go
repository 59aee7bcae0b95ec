package model

// Personal types for debtor/creditor records.
const (
	PersonalTypeIndividual = 1
	PersonalTypeJuristic   = 2
)

// Branch types for debtor/creditor records.
const (
	BranchHeadOffice = 1
	BranchSub        = 2
)

// Counterparty is a debtor or creditor master record.
type Counterparty struct {
	GUIDFixed    string          `json:"guidfixed"`
	Code         string          `json:"code"`
	PersonalType int             `json:"personaltype"`
	CustomerType int             `json:"customertype"`
	TaxID        string          `json:"taxid"`
	Names        []LocalizedText `json:"names"`
	Addresses    []LocalizedText `json:"address"`
}

// NameTH returns the Thai display name.
func (c Counterparty) NameTH() string {
	return localized(c.Names, "th")
}

// DisplayLabel renders the "code ~ name" form used in selection lists.
func (c Counterparty) DisplayLabel() string {
	return c.Code + " ~ " + c.NameTH()
}

// ChartAccount is one entry in the chart of accounts. Levels 1 and 2 are
// grouping headers; levels 3 and deeper are postable accounts.
type ChartAccount struct {
	AccountCode  string `json:"accountcode"`
	AccountName  string `json:"accountname"`
	AccountLevel int    `json:"accountlevel"`
}

// Selectable reports whether the account can be chosen in a report filter.
func (a ChartAccount) Selectable() bool {
	return a.AccountLevel >= 3
}
