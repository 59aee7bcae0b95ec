// Package model defines the core data types shared across the application.
package model

// LocalizedText is a language-tagged string as returned by the backend,
// e.g. {"code": "th", "name": "บริษัท ตัวอย่าง จำกัด"}.
type LocalizedText struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ShopSettings carries the subset of shop settings the client reads.
type ShopSettings struct {
	TaxID string `json:"taxid"`
}

// Shop is the owning business profile. Reports stamp its name, address and
// tax id into both request parameters and rendered documents.
type Shop struct {
	GUIDFixed string          `json:"guidfixed"`
	Names     []LocalizedText `json:"names"`
	Address   []LocalizedText `json:"address"`
	Settings  ShopSettings    `json:"settings"`
}

// localized finds the entry for a language code, empty string if absent.
func localized(entries []LocalizedText, code string) string {
	for _, e := range entries {
		if e.Code == code {
			return e.Name
		}
	}
	return ""
}

// NameTH returns the Thai shop name.
func (s *Shop) NameTH() string {
	if s == nil {
		return ""
	}
	return localized(s.Names, "th")
}

// AddressTH returns the Thai shop address.
func (s *Shop) AddressTH() string {
	if s == nil {
		return ""
	}
	return localized(s.Address, "th")
}

// TaxID returns the shop's tax identifier.
func (s *Shop) TaxID() string {
	if s == nil {
		return ""
	}
	return s.Settings.TaxID
}

// ShopSummary is one row of the shop-selection listing.
type ShopSummary struct {
	ShopID     string `json:"shopid"`
	Name       string `json:"name"`
	IsFavorite bool   `json:"isfavorite"`
}
