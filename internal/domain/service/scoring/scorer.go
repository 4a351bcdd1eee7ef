package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/internal/domain/value"
)

// Scorer превращает оценённый лот в сделку с рекомендацией. Не хранит состояние между вызовами.
type Scorer struct {
	cfg   Config
	now   func() time.Time
	newID func() string
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

func (s *Scorer) WithIDGenerator(newID func() string) *Scorer {
	s.newID = newID
	return s
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// BelowThreshold: лот дешевле минимальной цены, с которой грейдинг окупается.
func (s *Scorer) BelowThreshold(listing entity.Listing) bool {
	return listing.RawPrice.LessThan(s.cfg.MinRawPrice)
}

// Score оценивает лот. entry == nil означает, что цены в каталоге нет.
func (s *Scorer) Score(
	listing entity.Listing,
	assessment entity.ConditionAssessment,
	entry *entity.CatalogEntry,
	reprintRisk float64,
) entity.Deal {
	now := s.now()

	deal := entity.Deal{
		ID:               s.newID(),
		Listing:          listing,
		Assessment:       assessment,
		ReprintRisk:      reprintRisk,
		Confidence:       assessment.Confidence,
		InvestmentAmount: listing.RawPrice.Add(s.cfg.GradingCost),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if s.BelowThreshold(listing) {
		deal.Recommendation = value.RecommendationPass
		deal.Reason = entity.Reason{
			Code: value.ReasonBelowThreshold,
			Message: fmt.Sprintf("raw price $%s below $%s grading threshold",
				listing.RawPrice.StringFixed(2), s.cfg.MinRawPrice.StringFixed(2)),
		}

		return deal
	}

	if entry == nil {
		deal.Recommendation = value.RecommendationPass
		deal.Reason = entity.Reason{
			Code:    value.ReasonInsufficientPriceData,
			Message: fmt.Sprintf("no catalog price for %s (%s)", listing.CardName, listing.SetName),
		}

		return deal
	}

	deal.ExpectedValue = s.ExpectedValue(*entry, assessment)

	cost := deal.InvestmentAmount.InexactFloat64()
	ev := deal.ExpectedValue.InexactFloat64()

	deal.ROI = roundTo((ev-cost)/cost*100, 2)
	if ev > 0 {
		deal.ProfitMargin = roundTo((ev-cost)/ev, 4)
	}

	deal.Recommendation, deal.Reason = s.recommend(deal.ROI, deal.Confidence)

	if deal.Recommendation.IsBuy() {
		s.applyCaps(&deal, *entry)
	}

	return deal
}

// ExpectedValue: сумма вероятностей оценок, умноженных на цену карты в этой оценке.
func (s *Scorer) ExpectedValue(entry entity.CatalogEntry, assessment entity.ConditionAssessment) decimal.Decimal {
	dist := s.Distribution(assessment)

	prices := make([]float64, len(dist))
	for i, o := range dist {
		prices[i] = catalog.PriceAtGrade(entry, o.Label).InexactFloat64()
	}

	return decimal.NewFromFloat(floats.Dot(dist.Probabilities(), prices)).Round(2)
}

func (s *Scorer) recommend(roi, confidence float64) (value.Recommendation, entity.Reason) {
	switch {
	case roi < 0:
		return value.RecommendationStrongPass, entity.Reason{
			Code:    value.ReasonNegativeReturn,
			Message: fmt.Sprintf("expected return %.1f%% is negative", roi),
		}
	case roi > s.cfg.StrongBuyROI && confidence >= s.cfg.StrongBuyConfidence:
		return value.RecommendationStrongBuy, entity.Reason{
			Message: fmt.Sprintf("ROI %.1f%% above %.0f%% with confidence %.2f", roi, s.cfg.StrongBuyROI, confidence),
		}
	case roi > s.cfg.BuyROI:
		return value.RecommendationBuy, entity.Reason{
			Message: fmt.Sprintf("ROI %.1f%% above %.0f%%", roi, s.cfg.BuyROI),
		}
	case roi > s.cfg.HoldROI:
		return value.RecommendationHold, entity.Reason{
			Message: fmt.Sprintf("ROI %.1f%% above %.0f%%", roi, s.cfg.HoldROI),
		}
	default:
		return value.RecommendationPass, entity.Reason{
			Code:    value.ReasonLowReturn,
			Message: fmt.Sprintf("ROI %.1f%% not above %.0f%%", roi, s.cfg.HoldROI),
		}
	}
}

// applyCaps понижает покупку до HOLD при низкой марже или цене выше рыночного порога.
func (s *Scorer) applyCaps(deal *entity.Deal, entry entity.CatalogEntry) {
	if deal.ProfitMargin < s.cfg.MinProfitMargin {
		deal.Recommendation = value.RecommendationHold
		deal.Reason = entity.Reason{
			Code: value.ReasonLowMargin,
			Message: fmt.Sprintf("profit margin %.1f%% below %.1f%%",
				deal.ProfitMargin*100, s.cfg.MinProfitMargin*100),
		}

		return
	}

	market := entry.BasePrice.Mul(decimal.NewFromFloat(deal.Assessment.Multiplier))
	limit := market.Mul(decimal.NewFromFloat(s.cfg.DealPriceThresholdMultiplier)).Round(2)

	if deal.Listing.RawPrice.GreaterThan(limit) {
		deal.Recommendation = value.RecommendationHold
		deal.Reason = entity.Reason{
			Code: value.ReasonAboveMarket,
			Message: fmt.Sprintf("price $%s above $%s deal threshold",
				deal.Listing.RawPrice.StringFixed(2), limit.StringFixed(2)),
		}
	}
}

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Projection: ожидаемый результат отправки сырой карты на грейдинг.
type Projection struct {
	ExpectedValue decimal.Decimal
	GradingCost   decimal.Decimal
	ROI           float64
}

// ProjectGrading оценивает грейдинг уже купленной сырой карты с себестоимостью costBasis.
// Уверенность не штрафуется: состояние позиции известно точно.
func (s *Scorer) ProjectGrading(
	entry entity.CatalogEntry,
	condition value.Condition,
	costBasis decimal.Decimal,
) Projection {
	assessment := entity.ConditionAssessment{
		Condition:  condition,
		Confidence: s.cfg.LowConfidenceThreshold,
		Multiplier: condition.Multiplier(),
	}

	ev := s.ExpectedValue(entry, assessment)
	cost := costBasis.Add(s.cfg.GradingCost)

	var roi float64
	if cost.IsPositive() {
		roi = roundTo((ev.InexactFloat64()-cost.InexactFloat64())/cost.InexactFloat64()*100, 2)
	}

	return Projection{
		ExpectedValue: ev,
		GradingCost:   s.cfg.GradingCost,
		ROI:           roi,
	}
}
