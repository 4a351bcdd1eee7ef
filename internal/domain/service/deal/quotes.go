package deal

import (
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/domain/value"
)

// Quote: текущая цена позиции по снимку каталога.
func (s *Service) Quote(pos entity.VaultPosition) (decimal.Decimal, bool) {
	var grade *value.GradingLabel

	if !pos.IsRaw() && pos.Grade != "" {
		company := pos.GradingCompany
		if company == "" {
			company = value.GradingCompanyPSA
		}

		grade = &value.GradingLabel{Company: company, Grade: pos.Grade}
	}

	return s.catalog.Load().EstimatePrice(pos.CardName, pos.SetName, pos.Condition, grade)
}

// ProjectGrading: проекция грейдинга для сырой позиции хранилища.
func (s *Service) ProjectGrading(pos entity.VaultPosition) (vault.GradingProjection, bool) {
	if !pos.IsRaw() {
		return vault.GradingProjection{}, false
	}

	entry, ok := s.catalog.Load().GetBasePrice(pos.CardName, pos.SetName)
	if !ok {
		return vault.GradingProjection{}, false
	}

	condition := pos.Condition
	if condition == "" {
		condition = value.ConditionNearMint
	}

	projection := s.scorer.ProjectGrading(entry, condition, pos.PurchasePrice)

	return vault.GradingProjection{
		ExpectedValue: projection.ExpectedValue,
		GradingCost:   projection.GradingCost,
		ROI:           projection.ROI,
	}, true
}
