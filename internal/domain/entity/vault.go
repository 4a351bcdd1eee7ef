package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/value"
)

// VaultPosition: карта, лежащая в хранилище.
type VaultPosition struct {
	DealID         string               `json:"dealId"`
	CardName       string               `json:"cardName"`
	SetName        string               `json:"setName"`
	AssetClass     value.AssetClass     `json:"assetClass"`
	GradingStatus  value.GradingStatus  `json:"gradingStatus"`
	Condition      value.Condition      `json:"condition,omitempty"`
	GradingCompany value.GradingCompany `json:"gradingCompany,omitempty"`
	Grade          string               `json:"grade,omitempty"`
	CertNumber     string               `json:"certNumber,omitempty"`
	PurchasePrice  decimal.Decimal      `json:"purchasePrice"`
	EstimatedValue decimal.Decimal      `json:"estimatedValue"`
	DateReceived   time.Time            `json:"dateReceived"`
	HoldUntil      time.Time            `json:"holdUntil"`
	Location       string               `json:"location"`
}

func (p VaultPosition) IsRaw() bool {
	return p.GradingStatus == value.GradingStatusRaw
}

// ReadyToSell: срок удержания истёк к моменту now.
func (p VaultPosition) ReadyToSell(now time.Time) bool {
	return !now.Before(p.HoldUntil)
}

// Realization: итог продажи позиции.
type Realization struct {
	Position  VaultPosition   `json:"position"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Profit    decimal.Decimal `json:"profit"`
	ROI       float64         `json:"roi"`
	SoldAt    time.Time       `json:"soldAt"`
}
