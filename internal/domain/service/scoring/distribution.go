package scoring

import (
	"gonum.org/v1/gonum/floats"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
)

// Outcome: вероятность получить данную оценку после грейдинга.
type Outcome struct {
	Label       value.GradingLabel `json:"label"`
	Probability float64            `json:"probability"`
}

type Distribution []Outcome

// Вероятности PSA 10/9/8/7 для сырых карт по классу состояния.
//
//nolint:gochecknoglobals
var (
	mintOdds     = [4]float64{0.15, 0.45, 0.30, 0.10}
	nearMintOdds = [4]float64{0.05, 0.35, 0.40, 0.20}
	playedOdds   = [4]float64{0.01, 0.20, 0.49, 0.30}
	damagedOdds  = [4]float64{0, 0.05, 0.25, 0.70}
)

func rawOdds(c value.Condition) [4]float64 {
	switch c {
	case value.ConditionNearMintMint:
		return mintOdds
	case value.ConditionNearMint:
		return nearMintOdds
	case value.ConditionExcellent, value.ConditionLightlyPlayed:
		return playedOdds
	default:
		return damagedOdds
	}
}

// Distribution строит распределение оценок. Для слэба это точка в его оценке;
// для сырой карты при низкой уверенности часть вероятности PSA 10 уходит в PSA 7.
func (s *Scorer) Distribution(a entity.ConditionAssessment) Distribution {
	if label, ok := a.Label(); ok {
		return Distribution{{Label: label, Probability: 1}}
	}

	odds := rawOdds(a.Condition)

	if a.Confidence < s.cfg.LowConfidenceThreshold {
		scaled := odds[0] * a.Confidence
		odds[3] += odds[0] - scaled
		odds[0] = scaled
	}

	return Distribution{
		{Label: value.PSA(10), Probability: odds[0]},
		{Label: value.PSA(9), Probability: odds[1]},
		{Label: value.PSA(8), Probability: odds[2]},
		{Label: value.PSA(7), Probability: odds[3]},
	}
}

func (d Distribution) Probabilities() []float64 {
	p := make([]float64, len(d))
	for i, o := range d {
		p[i] = o.Probability
	}

	return p
}

// Total: сумма вероятностей, для корректного распределения равна 1.
func (d Distribution) Total() float64 {
	return floats.Sum(d.Probabilities())
}
