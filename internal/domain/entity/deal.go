package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/value"
)

// Reason объясняет рекомендацию скорера.
type Reason struct {
	Code    value.ReasonCode `json:"code"`
	Message string           `json:"message"`
}

// StatusChange: запись в журнале статусов. Журнал только дополняется.
type StatusChange struct {
	From       value.DealStatus `json:"from,omitempty"`
	To         value.DealStatus `json:"to"`
	Notes      string           `json:"notes,omitempty"`
	Operator   string           `json:"operator,omitempty"`
	OutOfOrder bool             `json:"outOfOrder,omitempty"`
	ChangedAt  time.Time        `json:"changedAt"`
}

type Deal struct {
	ID         string              `json:"id"`
	Listing    Listing             `json:"listing"`
	Assessment ConditionAssessment `json:"assessment"`

	// Оценка скорера
	ExpectedValue  decimal.Decimal      `json:"expectedValue"`
	ROI            float64              `json:"roi"`
	ProfitMargin   float64              `json:"profitMargin"`
	ReprintRisk    float64              `json:"reprintRisk"`
	Recommendation value.Recommendation `json:"recommendation"`
	Confidence     float64              `json:"confidence"`
	Reason         Reason               `json:"reason"`

	// Цена покупки плюс стоимость грейдинга
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`

	// Жизненный цикл
	Status        value.DealStatus `json:"status"`
	StatusHistory []StatusChange   `json:"statusHistory"`
	Grade         string           `json:"grade,omitempty"`
	CertNumber    string           `json:"certNumber,omitempty"`
	GradedValue   decimal.Decimal  `json:"gradedValue"`
	SalePrice     decimal.Decimal  `json:"salePrice"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone возвращает копию, не разделяющую журнал статусов с оригиналом.
func (d Deal) Clone() Deal {
	d.StatusHistory = append([]StatusChange(nil), d.StatusHistory...)
	d.Assessment.Notes = append([]string(nil), d.Assessment.Notes...)

	return d
}

// RealizedProfit: прибыль по проданной сделке; ok=false, пока цена продажи неизвестна.
func (d Deal) RealizedProfit() (decimal.Decimal, bool) {
	if d.SalePrice.IsZero() {
		return decimal.Zero, false
	}

	return d.SalePrice.Sub(d.InvestmentAmount), true
}
