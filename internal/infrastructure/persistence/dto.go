package persistence

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// dealSchema: строка таблицы deals. Лот и оценка состояния хранятся в JSON.
type dealSchema struct {
	ID               string          `db:"id"`
	Listing          string          `db:"listing"`
	Assessment       string          `db:"assessment"`
	ExpectedValue    decimal.Decimal `db:"expected_value"`
	ROI              float64         `db:"roi"`
	ProfitMargin     float64         `db:"profit_margin"`
	ReprintRisk      float64         `db:"reprint_risk"`
	Recommendation   string          `db:"recommendation"`
	Confidence       float64         `db:"confidence"`
	ReasonCode       string          `db:"reason_code"`
	ReasonMessage    string          `db:"reason_message"`
	InvestmentAmount decimal.Decimal `db:"investment_amount"`
	Status           string          `db:"status"`
	Grade            string          `db:"grade"`
	CertNumber       string          `db:"cert_number"`
	GradedValue      decimal.Decimal `db:"graded_value"`
	SalePrice        decimal.Decimal `db:"sale_price"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func fromDeal(d entity.Deal) (dealSchema, error) {
	listing, err := json.MarshalToString(d.Listing)
	if err != nil {
		return dealSchema{}, fmt.Errorf("marshal listing: %w", err)
	}

	assessment, err := json.MarshalToString(d.Assessment)
	if err != nil {
		return dealSchema{}, fmt.Errorf("marshal assessment: %w", err)
	}

	return dealSchema{
		ID:               d.ID,
		Listing:          listing,
		Assessment:       assessment,
		ExpectedValue:    d.ExpectedValue,
		ROI:              d.ROI,
		ProfitMargin:     d.ProfitMargin,
		ReprintRisk:      d.ReprintRisk,
		Recommendation:   d.Recommendation.String(),
		Confidence:       d.Confidence,
		ReasonCode:       d.Reason.Code.String(),
		ReasonMessage:    d.Reason.Message,
		InvestmentAmount: d.InvestmentAmount,
		Status:           d.Status.String(),
		Grade:            d.Grade,
		CertNumber:       d.CertNumber,
		GradedValue:      d.GradedValue,
		SalePrice:        d.SalePrice,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}, nil
}

func (s *dealSchema) toDomain(history []statusChangeSchema) (entity.Deal, error) {
	var listing entity.Listing
	if err := json.UnmarshalFromString(s.Listing, &listing); err != nil {
		return entity.Deal{}, fmt.Errorf("unmarshal listing: %w", err)
	}

	var assessment entity.ConditionAssessment
	if err := json.UnmarshalFromString(s.Assessment, &assessment); err != nil {
		return entity.Deal{}, fmt.Errorf("unmarshal assessment: %w", err)
	}

	changes := make([]entity.StatusChange, 0, len(history))
	for _, h := range history {
		changes = append(changes, h.toDomain())
	}

	return entity.Deal{
		ID:               s.ID,
		Listing:          listing,
		Assessment:       assessment,
		ExpectedValue:    s.ExpectedValue,
		ROI:              s.ROI,
		ProfitMargin:     s.ProfitMargin,
		ReprintRisk:      s.ReprintRisk,
		Recommendation:   value.Recommendation(s.Recommendation),
		Confidence:       s.Confidence,
		Reason:           entity.Reason{Code: value.ReasonCode(s.ReasonCode), Message: s.ReasonMessage},
		InvestmentAmount: s.InvestmentAmount,
		Status:           value.DealStatus(s.Status),
		StatusHistory:    changes,
		Grade:            s.Grade,
		CertNumber:       s.CertNumber,
		GradedValue:      s.GradedValue,
		SalePrice:        s.SalePrice,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}, nil
}

type statusChangeSchema struct {
	DealID     string    `db:"deal_id"`
	Seq        int       `db:"seq"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	Notes      string    `db:"notes"`
	Operator   string    `db:"operator"`
	OutOfOrder bool      `db:"out_of_order"`
	ChangedAt  time.Time `db:"changed_at"`
}

func fromStatusChange(dealID string, seq int, c entity.StatusChange) statusChangeSchema {
	return statusChangeSchema{
		DealID:     dealID,
		Seq:        seq,
		FromStatus: c.From.String(),
		ToStatus:   c.To.String(),
		Notes:      c.Notes,
		Operator:   c.Operator,
		OutOfOrder: c.OutOfOrder,
		ChangedAt:  c.ChangedAt.UTC(),
	}
}

func (s statusChangeSchema) toDomain() entity.StatusChange {
	return entity.StatusChange{
		From:       value.DealStatus(s.FromStatus),
		To:         value.DealStatus(s.ToStatus),
		Notes:      s.Notes,
		Operator:   s.Operator,
		OutOfOrder: s.OutOfOrder,
		ChangedAt:  s.ChangedAt,
	}
}

// positionSchema: строка таблицы vault_positions.
type positionSchema struct {
	DealID         string          `db:"deal_id"`
	CardName       string          `db:"card_name"`
	SetName        string          `db:"set_name"`
	AssetClass     string          `db:"asset_class"`
	GradingStatus  string          `db:"grading_status"`
	Condition      string          `db:"condition"`
	GradingCompany string          `db:"grading_company"`
	Grade          string          `db:"grade"`
	CertNumber     string          `db:"cert_number"`
	PurchasePrice  decimal.Decimal `db:"purchase_price"`
	EstimatedValue decimal.Decimal `db:"estimated_value"`
	DateReceived   time.Time       `db:"date_received"`
	HoldUntil      time.Time       `db:"hold_until"`
	Location       string          `db:"location"`
}

func fromPosition(p entity.VaultPosition) positionSchema {
	return positionSchema{
		DealID:         p.DealID,
		CardName:       p.CardName,
		SetName:        p.SetName,
		AssetClass:     p.AssetClass.String(),
		GradingStatus:  string(p.GradingStatus),
		Condition:      string(p.Condition),
		GradingCompany: p.GradingCompany.String(),
		Grade:          p.Grade,
		CertNumber:     p.CertNumber,
		PurchasePrice:  p.PurchasePrice,
		EstimatedValue: p.EstimatedValue,
		DateReceived:   p.DateReceived.UTC(),
		HoldUntil:      p.HoldUntil.UTC(),
		Location:       p.Location,
	}
}

func (s *positionSchema) toDomain() entity.VaultPosition {
	return entity.VaultPosition{
		DealID:         s.DealID,
		CardName:       s.CardName,
		SetName:        s.SetName,
		AssetClass:     value.AssetClass(s.AssetClass),
		GradingStatus:  value.GradingStatus(s.GradingStatus),
		Condition:      value.Condition(s.Condition),
		GradingCompany: value.GradingCompany(s.GradingCompany),
		Grade:          s.Grade,
		CertNumber:     s.CertNumber,
		PurchasePrice:  s.PurchasePrice,
		EstimatedValue: s.EstimatedValue,
		DateReceived:   s.DateReceived,
		HoldUntil:      s.HoldUntil,
		Location:       s.Location,
	}
}
