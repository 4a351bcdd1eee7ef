package entity

import "github.com/shopspring/decimal"

// CapitalStatus: снимок использования капитала.
type CapitalStatus struct {
	TotalAvailable       decimal.Decimal `json:"totalAvailable"`
	ActiveExposure       decimal.Decimal `json:"activeExposure"`
	PendingExposure      decimal.Decimal `json:"pendingExposure"`
	ReserveCash          decimal.Decimal `json:"reserveCash"`
	AvailableForNewDeals decimal.Decimal `json:"availableForNewDeals"`
	MaxTotalExposure     decimal.Decimal `json:"maxTotalExposure"`
	PerDealLimit         decimal.Decimal `json:"perDealLimit"`
	ActiveDealCount      int             `json:"activeDealCount"`
	PendingDealCount     int             `json:"pendingDealCount"`
	MaxConcurrent        int             `json:"maxConcurrent"`
	UtilizationPct       float64         `json:"utilizationPct"`
}

// AdmissionDecision: ответ шлюза капитала.
type AdmissionDecision struct {
	Allowed bool            `json:"allowed"`
	Reason  string          `json:"reason"`
	Amount  decimal.Decimal `json:"amount"`
	DealID  string          `json:"dealId,omitempty"`
}
