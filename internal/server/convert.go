package server

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/capital"
	"card_arbitrage/internal/domain/service/deal"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/rest"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// optionalMoney: пустая строка для ещё не известной суммы.
func optionalMoney(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}

	return money(d)
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, domain.WrapError(err, errcodes.InvalidPrice, fmt.Sprintf("invalid %s %q", field, s))
	}

	return d, nil
}

// parseOptionalMoney: пустая строка даёт ноль.
func parseOptionalMoney(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}

	return parseMoney(field, s)
}

func newDomainListing(listing rest.Listing) (entity.Listing, error) {
	price, err := parseMoney("rawPrice", listing.RawPrice)
	if err != nil {
		return entity.Listing{}, err
	}

	result := entity.Listing{
		ID:             listing.ID,
		Title:          listing.Title,
		CardName:       listing.CardName,
		SetName:        listing.SetName,
		RawPrice:       price,
		ConditionNotes: listing.ConditionNotes,
		SellerRating:   listing.SellerRating,
		URL:            listing.URL,
	}

	if listing.GradingLabel != "" {
		label, err := value.ParseGradingLabel(listing.GradingLabel)
		if err != nil {
			return entity.Listing{}, domain.WrapError(err, errcodes.InvalidGrade, "invalid gradingLabel")
		}

		result.GradingLabel = &label
	}

	return result, nil
}

func newRESTListing(listing entity.Listing) rest.Listing {
	result := rest.Listing{
		ID:             listing.ID,
		Title:          listing.Title,
		CardName:       listing.CardName,
		SetName:        listing.SetName,
		RawPrice:       money(listing.RawPrice),
		ConditionNotes: listing.ConditionNotes,
		SellerRating:   listing.SellerRating,
		URL:            listing.URL,
	}

	if listing.GradingLabel != nil {
		result.GradingLabel = listing.GradingLabel.String()
	}

	return result
}

func newRESTDeal(d entity.Deal) rest.Deal {
	return rest.Deal{
		ID:      d.ID,
		Listing: newRESTListing(d.Listing),
		Assessment: rest.Assessment{
			Condition:      d.Assessment.Condition.String(),
			Confidence:     d.Assessment.Confidence,
			Multiplier:     d.Assessment.Multiplier,
			GradingCompany: d.Assessment.GradingCompany.String(),
			Grade:          d.Assessment.Grade,
			Notes:          d.Assessment.Notes,
		},
		ExpectedValue:    money(d.ExpectedValue),
		ROI:              d.ROI,
		ProfitMargin:     d.ProfitMargin,
		ReprintRisk:      d.ReprintRisk,
		Recommendation:   d.Recommendation.String(),
		Confidence:       d.Confidence,
		Reason:           rest.Reason{Code: d.Reason.Code.String(), Message: d.Reason.Message},
		InvestmentAmount: money(d.InvestmentAmount),
		Status:           d.Status.String(),
		StatusHistory: lo.Map(d.StatusHistory, func(c entity.StatusChange, _ int) rest.StatusChange {
			return rest.StatusChange{
				From:       c.From.String(),
				To:         c.To.String(),
				Notes:      c.Notes,
				Operator:   c.Operator,
				OutOfOrder: c.OutOfOrder,
				ChangedAt:  c.ChangedAt,
			}
		}),
		Grade:       d.Grade,
		CertNumber:  d.CertNumber,
		GradedValue: optionalMoney(d.GradedValue),
		SalePrice:   optionalMoney(d.SalePrice),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func newRESTAdmission(d entity.AdmissionDecision) rest.Admission {
	return rest.Admission{
		Allowed: d.Allowed,
		Reason:  d.Reason,
		Amount:  money(d.Amount),
		DealID:  d.DealID,
	}
}

func newRESTEvaluation(e deal.Evaluation) rest.Evaluation {
	result := rest.Evaluation{
		Deal:      newRESTDeal(e.Deal),
		Filtered:  e.Filtered,
		Tracked:   e.Tracked,
		Duplicate: e.Duplicate,
	}

	if e.Admission != nil {
		result.Admission = lo.ToPtr(newRESTAdmission(*e.Admission))
	}

	return result
}

func newRESTBatchResult(r deal.BatchResult) rest.BatchResult {
	return rest.BatchResult{
		Items: lo.Map(r.Items, func(item deal.BatchItem, _ int) rest.BatchItem {
			result := rest.BatchItem{Index: item.Index, Error: item.Error}
			if item.Evaluation != nil {
				result.Evaluation = lo.ToPtr(newRESTEvaluation(*item.Evaluation))
			}

			return result
		}),
		Evaluated: r.Evaluated,
		Failed:    r.Failed,
	}
}

func newDomainStatusUpdate(request rest.StatusUpdateRequest) (value.DealStatus, lifecycle.Update, error) {
	status, err := value.ParseDealStatus(strings.ToUpper(strings.TrimSpace(request.Status)))
	if err != nil {
		return "", lifecycle.Update{}, domain.WrapError(err, errcodes.InvalidDealStatus, "invalid status")
	}

	estimated, err := parseOptionalMoney("estimatedValue", request.EstimatedValue)
	if err != nil {
		return "", lifecycle.Update{}, err
	}

	salePrice, err := parseOptionalMoney("salePrice", request.SalePrice)
	if err != nil {
		return "", lifecycle.Update{}, err
	}

	upd := lifecycle.Update{
		Grade:          strings.TrimSpace(request.Grade),
		CertNumber:     strings.TrimSpace(request.CertNumber),
		EstimatedValue: estimated,
		SalePrice:      salePrice,
		Notes:          request.Notes,
		Location:       request.Location,
	}

	if request.GradingCompany != "" {
		company, err := value.ParseGradingCompany(request.GradingCompany)
		if err != nil {
			return "", lifecycle.Update{}, domain.WrapError(err, errcodes.InvalidGrade, "invalid gradingCompany")
		}

		upd.GradingCompany = company
	}

	return status, upd, nil
}

func newRESTCapitalStatus(s entity.CapitalStatus) rest.CapitalStatus {
	return rest.CapitalStatus{
		TotalAvailable:       money(s.TotalAvailable),
		ActiveExposure:       money(s.ActiveExposure),
		PendingExposure:      money(s.PendingExposure),
		ReserveCash:          money(s.ReserveCash),
		AvailableForNewDeals: money(s.AvailableForNewDeals),
		MaxTotalExposure:     money(s.MaxTotalExposure),
		PerDealLimit:         money(s.PerDealLimit),
		ActiveDealCount:      s.ActiveDealCount,
		PendingDealCount:     s.PendingDealCount,
		MaxConcurrent:        s.MaxConcurrent,
		UtilizationPct:       s.UtilizationPct,
	}
}

func newRESTCapitalLimits(l capital.Limits) rest.CapitalLimits {
	return rest.CapitalLimits{
		TotalAvailable:     money(l.TotalAvailable),
		MaxTotalExposure:   money(l.MaxTotalExposure),
		PerDealLimit:       money(l.EffectivePerDealLimit()),
		ReserveCash:        money(l.ReserveCash),
		MaxConcurrentDeals: l.MaxConcurrentDeals,
		MaxPositionPercent: l.MaxPositionPercent,
	}
}

func newRESTPosition(p entity.VaultPosition) rest.VaultPosition {
	return rest.VaultPosition{
		DealID:         p.DealID,
		CardName:       p.CardName,
		SetName:        p.SetName,
		AssetClass:     p.AssetClass.String(),
		GradingStatus:  string(p.GradingStatus),
		Condition:      p.Condition.String(),
		GradingCompany: p.GradingCompany.String(),
		Grade:          p.Grade,
		CertNumber:     p.CertNumber,
		PurchasePrice:  money(p.PurchasePrice),
		EstimatedValue: money(p.EstimatedValue),
		DateReceived:   p.DateReceived,
		HoldUntil:      p.HoldUntil,
		Location:       p.Location,
	}
}

func newRESTGradingOpportunities(ops []vault.GradingOpportunity) []rest.GradingOpportunity {
	return lo.Map(ops, func(o vault.GradingOpportunity, _ int) rest.GradingOpportunity {
		return rest.GradingOpportunity{
			DealID:        o.DealID,
			CardName:      o.CardName,
			CurrentValue:  money(o.CurrentValue),
			GradingCost:   money(o.GradingCost),
			ExpectedValue: money(o.ExpectedValue),
			ExpectedROI:   o.ExpectedROI,
		}
	})
}

func newRESTVaultReport(r vault.Report) rest.VaultReport {
	return rest.VaultReport{
		Summary: rest.VaultSummary{
			TotalPositions:  r.Summary.TotalPositions,
			CostBasis:       money(r.Summary.CostBasis),
			CurrentValue:    money(r.Summary.CurrentValue),
			UnrealizedGains: money(r.Summary.UnrealizedGains),
			ROIPercentage:   r.Summary.ROIPercentage,
			InsuranceValue:  money(r.Summary.InsuranceValue),
		},
		Allocation: lo.MapKeys(r.Allocation, func(_ float64, class value.AssetClass) string {
			return class.String()
		}),
		Positions:            lo.Map(r.Positions, func(p entity.VaultPosition, _ int) rest.VaultPosition { return newRESTPosition(p) }),
		GradingOpportunities: newRESTGradingOpportunities(r.GradingOpportunities),
		GeneratedAt:          r.GeneratedAt,
	}
}

func newRESTReadySales(sales []lifecycle.ReadySale) rest.ReadySales {
	return rest.ReadySales{
		Positions: lo.Map(sales, func(s lifecycle.ReadySale, _ int) rest.ReadySale {
			return rest.ReadySale{
				Position:       newRESTPosition(s.Position),
				SuggestedPrice: money(s.SuggestedPrice),
				DaysHeld:       s.DaysHeld,
			}
		}),
	}
}

func newDomainTargetAllocation(target map[string]float64) map[value.AssetClass]float64 {
	return lo.MapKeys(target, func(_ float64, class string) value.AssetClass {
		return value.AssetClass(strings.ToLower(strings.TrimSpace(class)))
	})
}

func newRESTRebalanceSuggestions(suggestions []vault.RebalanceSuggestion) rest.RebalanceSuggestions {
	return rest.RebalanceSuggestions{
		Suggestions: lo.Map(suggestions, func(s vault.RebalanceSuggestion, _ int) rest.RebalanceSuggestion {
			return rest.RebalanceSuggestion{
				AssetClass: s.AssetClass.String(),
				Current:    s.Current,
				Target:     s.Target,
				Difference: s.Difference,
				Action:     string(s.Action),
				Amount:     money(s.Amount),
			}
		}),
	}
}

func newDomainVaultPosition(request rest.VaultPositionRequest) (entity.VaultPosition, error) {
	purchase, err := parseMoney("purchasePrice", request.PurchasePrice)
	if err != nil {
		return entity.VaultPosition{}, err
	}

	if purchase.IsNegative() {
		return entity.VaultPosition{}, domain.NewError(errcodes.InvalidPrice, "purchasePrice must not be negative")
	}

	estimated, err := parseOptionalMoney("estimatedValue", request.EstimatedValue)
	if err != nil {
		return entity.VaultPosition{}, err
	}

	if estimated.IsZero() {
		estimated = purchase
	}

	pos := entity.VaultPosition{
		DealID:         strings.TrimSpace(request.DealID),
		CardName:       strings.TrimSpace(request.CardName),
		SetName:        strings.TrimSpace(request.SetName),
		AssetClass:     value.AssetClassRawCards,
		GradingStatus:  value.GradingStatusRaw,
		CertNumber:     strings.TrimSpace(request.CertNumber),
		PurchasePrice:  purchase,
		EstimatedValue: estimated,
		Location:       request.Location,
	}

	if grade := strings.TrimSpace(request.Grade); grade != "" {
		company := value.GradingCompanyPSA

		if request.GradingCompany != "" {
			company, err = value.ParseGradingCompany(request.GradingCompany)
			if err != nil {
				return entity.VaultPosition{}, domain.WrapError(err, errcodes.InvalidGrade, "invalid gradingCompany")
			}
		}

		pos.AssetClass = value.AssetClassGradedCards
		pos.GradingStatus = value.GradingStatusGraded
		pos.GradingCompany = company
		pos.Grade = grade
	} else if request.Condition != "" {
		condition, err := value.ParseCondition(request.Condition)
		if err != nil || !condition.IsRaw() {
			return entity.VaultPosition{}, domain.NewError(errcodes.ValidationError,
				fmt.Sprintf("invalid condition %q", request.Condition))
		}

		pos.Condition = condition
	}

	if request.AssetClass != "" {
		pos.AssetClass = value.AssetClass(strings.ToLower(strings.TrimSpace(request.AssetClass)))
		if !pos.AssetClass.IsValid() {
			return entity.VaultPosition{}, domain.NewError(errcodes.ValidationError,
				fmt.Sprintf("unknown asset class %q", request.AssetClass))
		}
	}

	return pos, nil
}

func newRESTCatalogEntries(entries []entity.CatalogEntry) rest.CatalogEntries {
	return rest.CatalogEntries{
		Entries: lo.Map(entries, func(e entity.CatalogEntry, _ int) rest.CatalogEntry {
			return rest.CatalogEntry{
				CardName:  e.CardName,
				SetName:   e.SetName,
				BasePrice: money(e.BasePrice),
				Priority:  e.Priority,
				Tier:      e.Tier,
			}
		}),
	}
}
