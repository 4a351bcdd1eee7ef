package entity

import "card_arbitrage/internal/domain/value"

// ConditionAssessment: результат оценки состояния карты по тексту лота.
type ConditionAssessment struct {
	Condition      value.Condition      `json:"condition"`
	Confidence     float64              `json:"confidence"`
	Multiplier     float64              `json:"multiplier"`
	GradingCompany value.GradingCompany `json:"gradingCompany,omitempty"`
	Grade          string               `json:"grade,omitempty"`
	Notes          []string             `json:"notes"`
}

func (a ConditionAssessment) IsGraded() bool {
	return a.Condition == value.ConditionGraded
}

// Label возвращает оценку как GradingLabel; ok=false для сырой карты.
func (a ConditionAssessment) Label() (value.GradingLabel, bool) {
	if !a.IsGraded() {
		return value.GradingLabel{}, false
	}

	return value.GradingLabel{Company: a.GradingCompany, Grade: a.Grade}, true
}
