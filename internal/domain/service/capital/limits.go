package capital

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// exposureShareOfTotal: доля капитала под сделками после UpdateLimits.
const exposureShareOfTotal = 0.8

// Limits: ограничения на использование капитала.
type Limits struct {
	TotalAvailable     decimal.Decimal
	MaxTotalExposure   decimal.Decimal
	PerDealLimit       decimal.Decimal
	ReserveCash        decimal.Decimal
	MaxConcurrentDeals int
	MaxPositionPercent float64
}

// EffectivePerDealLimit: явный лимит на сделку или доля от капитала, если он не задан.
func (l Limits) EffectivePerDealLimit() decimal.Decimal {
	if l.PerDealLimit.IsPositive() {
		return l.PerDealLimit
	}

	return l.TotalAvailable.Mul(decimal.NewFromFloat(l.MaxPositionPercent)).Div(decimal.NewFromInt(100)).Round(2)
}

func (l Limits) Validate() error {
	var errs []error

	if l.TotalAvailable.IsNegative() {
		errs = append(errs, errors.New("total available must not be negative"))
	}

	if l.ReserveCash.IsNegative() {
		errs = append(errs, errors.New("reserve cash must not be negative"))
	}

	if l.MaxConcurrentDeals <= 0 {
		errs = append(errs, fmt.Errorf("max concurrent deals must be positive, got %d", l.MaxConcurrentDeals))
	}

	if !l.PerDealLimit.IsPositive() && l.MaxPositionPercent <= 0 {
		errs = append(errs, errors.New("either per deal limit or max position percent must be set"))
	}

	return errors.Join(errs...)
}
