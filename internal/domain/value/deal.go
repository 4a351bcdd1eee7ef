package value

import "fmt"

type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "STRONG_BUY"
	RecommendationBuy        Recommendation = "BUY"
	RecommendationHold       Recommendation = "HOLD"
	RecommendationPass       Recommendation = "PASS"
	RecommendationStrongPass Recommendation = "STRONG_PASS"
)

func (r Recommendation) String() string {
	return string(r)
}

// IsBuy: рекомендации, по которым сделка попадает в трекер.
func (r Recommendation) IsBuy() bool {
	return r == RecommendationStrongBuy || r == RecommendationBuy
}

// ReasonCode: машиночитаемая причина решения скорера.
type ReasonCode string

const (
	ReasonNone                  ReasonCode = ""
	ReasonBelowThreshold        ReasonCode = "below_threshold"
	ReasonInsufficientPriceData ReasonCode = "insufficient_price_data"
	ReasonReprintRisk           ReasonCode = "reprint_risk"
	ReasonNegativeReturn        ReasonCode = "negative_return"
	ReasonLowMargin             ReasonCode = "low_margin"
	ReasonAboveMarket           ReasonCode = "above_market"
	ReasonLowReturn             ReasonCode = "low_return"
)

func (r ReasonCode) String() string {
	return string(r)
}

// DealStatus: шаг жизненного цикла сделки.
type DealStatus string

const (
	DealStatusPending       DealStatus = "PENDING"
	DealStatusApproved      DealStatus = "APPROVED"
	DealStatusPurchased     DealStatus = "PURCHASED"
	DealStatusShippedToPSA  DealStatus = "SHIPPED_TO_PSA"
	DealStatusAtPSA         DealStatus = "AT_PSA"
	DealStatusGraded        DealStatus = "GRADED"
	DealStatusInVault       DealStatus = "IN_VAULT"
	DealStatusListedForSale DealStatus = "LISTED_FOR_SALE"
	DealStatusSold          DealStatus = "SOLD"
	DealStatusCompleted     DealStatus = "COMPLETED"
)

//nolint:gochecknoglobals
var dealStatusOrder = []DealStatus{
	DealStatusPending,
	DealStatusApproved,
	DealStatusPurchased,
	DealStatusShippedToPSA,
	DealStatusAtPSA,
	DealStatusGraded,
	DealStatusInVault,
	DealStatusListedForSale,
	DealStatusSold,
	DealStatusCompleted,
}

func (s DealStatus) String() string {
	return string(s)
}

// Step: порядковый номер статуса в цепочке; -1 для неизвестного.
func (s DealStatus) Step() int {
	for i, status := range dealStatusOrder {
		if status == s {
			return i
		}
	}

	return -1
}

// Next возвращает ожидаемый следующий статус.
func (s DealStatus) Next() (DealStatus, bool) {
	step := s.Step()
	if step < 0 || step+1 >= len(dealStatusOrder) {
		return "", false
	}

	return dealStatusOrder[step+1], true
}

// IsForwardStep сообщает, что переход s -> next идёт ровно на один шаг вперёд.
func (s DealStatus) IsForwardStep(next DealStatus) bool {
	return next.Step() == s.Step()+1 && next.Step() > 0
}

// IsOpen: сделка занимает капитал (ожидает решения или одобрена).
func (s DealStatus) IsOpen() bool {
	return s == DealStatusPending || s == DealStatusApproved
}

func (s DealStatus) IsRejectable() bool {
	return s.IsOpen()
}

func ParseDealStatus(s string) (DealStatus, error) {
	status := DealStatus(s)
	if status.Step() < 0 {
		return "", fmt.Errorf("unknown deal status %q", s)
	}

	return status, nil
}

func DealStatuses() []DealStatus {
	return append([]DealStatus(nil), dealStatusOrder...)
}
