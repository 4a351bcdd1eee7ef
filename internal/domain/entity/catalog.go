package entity

import "github.com/shopspring/decimal"

// WildcardSet: сет каталога, подходящий под любой запрошенный сет.
const WildcardSet = "Various Sets"

// CatalogEntry: базовая цена карты в состоянии Near Mint.
type CatalogEntry struct {
	CardName  string          `json:"cardName"`
	SetName   string          `json:"setName"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Priority  string          `json:"priority,omitempty"`
	Tier      string          `json:"tier,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}
