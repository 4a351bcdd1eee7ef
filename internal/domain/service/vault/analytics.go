package vault

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
)

// RebalanceThreshold: минимальное отклонение доли класса (в п.п.), при котором предлагается ребалансировка.
const RebalanceThreshold = 5.0

// DefaultGradingMinROI: порог ROI для поиска кандидатов на грейдинг.
const DefaultGradingMinROI = 35.0

// Quoter возвращает текущую рыночную цену позиции. ok=false, если цены нет.
type Quoter interface {
	Quote(pos entity.VaultPosition) (decimal.Decimal, bool)
}

// QuoterFunc адаптирует функцию к Quoter.
type QuoterFunc func(pos entity.VaultPosition) (decimal.Decimal, bool)

func (f QuoterFunc) Quote(pos entity.VaultPosition) (decimal.Decimal, bool) {
	return f(pos)
}

// GradingProjection: ожидаемый результат грейдинга сырой позиции.
type GradingProjection struct {
	ExpectedValue decimal.Decimal `json:"expectedValue"`
	GradingCost   decimal.Decimal `json:"gradingCost"`
	ROI           float64         `json:"roi"`
}

// Projector считает проекцию грейдинга для сырой позиции.
type Projector interface {
	ProjectGrading(pos entity.VaultPosition) (GradingProjection, bool)
}

type Metrics struct {
	TotalPositions  int             `json:"totalPositions"`
	CostBasis       decimal.Decimal `json:"costBasis"`
	CurrentValue    decimal.Decimal `json:"currentValue"`
	UnrealizedGains decimal.Decimal `json:"unrealizedGains"`
	ROIPercentage   float64         `json:"roiPercentage"`
	InsuranceValue  decimal.Decimal `json:"insuranceValue"`
}

type GradingOpportunity struct {
	DealID        string          `json:"dealId"`
	CardName      string          `json:"cardName"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	GradingCost   decimal.Decimal `json:"gradingCost"`
	ExpectedValue decimal.Decimal `json:"expectedValue"`
	ExpectedROI   float64         `json:"expectedRoi"`
}

type RebalanceAction string

const (
	RebalanceBuy  RebalanceAction = "buy"
	RebalanceSell RebalanceAction = "sell"
)

type RebalanceSuggestion struct {
	AssetClass value.AssetClass `json:"assetClass"`
	Current    float64          `json:"currentAllocation"`
	Target     float64          `json:"targetAllocation"`
	Difference float64          `json:"difference"`
	Action     RebalanceAction  `json:"action"`
	Amount     decimal.Decimal  `json:"amount"`
}

// Report: сводка по хранилищу.
type Report struct {
	Summary              Metrics                      `json:"summary"`
	Allocation           map[value.AssetClass]float64 `json:"allocation"`
	Positions            []entity.VaultPosition       `json:"positions"`
	GradingOpportunities []GradingOpportunity         `json:"gradingOpportunities"`
	GeneratedAt          time.Time                    `json:"generatedAt"`
}

// Metrics считает агрегаты портфеля. Без котировки позиция оценивается по страховой стоимости.
func (p *Portfolio) Metrics(quoter Quoter) Metrics {
	positions := p.Positions()
	costBasis, insured := p.Totals()

	current := decimal.Zero
	for _, pos := range positions {
		current = current.Add(currentValue(pos, quoter))
	}

	gains := current.Sub(costBasis)

	var roi float64
	if costBasis.IsPositive() {
		roi = gains.Div(costBasis).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	return Metrics{
		TotalPositions:  len(positions),
		CostBasis:       costBasis,
		CurrentValue:    current,
		UnrealizedGains: gains,
		ROIPercentage:   roi,
		InsuranceValue:  insured,
	}
}

// Allocation: доля каждого класса активов в процентах от текущей стоимости.
func (p *Portfolio) Allocation(quoter Quoter) map[value.AssetClass]float64 {
	values := make(map[value.AssetClass]decimal.Decimal)
	total := decimal.Zero

	for _, pos := range p.Positions() {
		v := currentValue(pos, quoter)
		values[pos.AssetClass] = values[pos.AssetClass].Add(v)
		total = total.Add(v)
	}

	result := make(map[value.AssetClass]float64, len(values))
	if !total.IsPositive() {
		return result
	}

	for class, v := range values {
		result[class] = v.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	return result
}

// GradingOpportunities: сырые позиции, грейдинг которых даёт ROI не ниже minROI.
func (p *Portfolio) GradingOpportunities(minROI float64, projector Projector, quoter Quoter) []GradingOpportunity {
	var result []GradingOpportunity

	for _, pos := range p.Positions() {
		if !pos.IsRaw() {
			continue
		}

		projection, ok := projector.ProjectGrading(pos)
		if !ok || projection.ROI < minROI {
			continue
		}

		result = append(result, GradingOpportunity{
			DealID:        pos.DealID,
			CardName:      pos.CardName,
			CurrentValue:  currentValue(pos, quoter),
			GradingCost:   projection.GradingCost,
			ExpectedValue: projection.ExpectedValue,
			ExpectedROI:   projection.ROI,
		})
	}

	slices.SortStableFunc(result, func(a, b GradingOpportunity) int {
		switch {
		case a.ExpectedROI > b.ExpectedROI:
			return -1
		case a.ExpectedROI < b.ExpectedROI:
			return 1
		default:
			return 0
		}
	})

	return result
}

// RebalancingSuggestions сравнивает текущую аллокацию с целевой.
// Сумма считается от страховой стоимости портфеля.
func (p *Portfolio) RebalancingSuggestions(target map[value.AssetClass]float64, quoter Quoter) []RebalanceSuggestion {
	current := p.Allocation(quoter)
	_, insured := p.Totals()

	classes := make([]value.AssetClass, 0, len(target))
	for class := range target {
		classes = append(classes, class)
	}

	slices.Sort(classes)

	var result []RebalanceSuggestion

	for _, class := range classes {
		diff := target[class] - current[class]
		if diff < RebalanceThreshold && diff > -RebalanceThreshold {
			continue
		}

		action := RebalanceBuy
		if diff < 0 {
			action = RebalanceSell
		}

		amount := insured.Mul(decimal.NewFromFloat(diff).Abs()).Div(decimal.NewFromInt(100)).Round(2)

		result = append(result, RebalanceSuggestion{
			AssetClass: class,
			Current:    current[class],
			Target:     target[class],
			Difference: diff,
			Action:     action,
			Amount:     amount,
		})
	}

	return result
}

// Report собирает сводку по портфелю.
func (p *Portfolio) Report(quoter Quoter, projector Projector) Report {
	return Report{
		Summary:              p.Metrics(quoter),
		Allocation:           p.Allocation(quoter),
		Positions:            p.Positions(),
		GradingOpportunities: p.GradingOpportunities(DefaultGradingMinROI, projector, quoter),
		GeneratedAt:          p.now(),
	}
}

func currentValue(pos entity.VaultPosition, quoter Quoter) decimal.Decimal {
	if quoter != nil {
		if price, ok := quoter.Quote(pos); ok {
			return price
		}
	}

	return pos.EstimatedValue
}
