package scoring

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Config: пороги рекомендаций и экономические параметры скорера.
type Config struct {
	StrongBuyROI        float64
	StrongBuyConfidence float64
	BuyROI              float64
	HoldROI             float64

	// Ниже этой цены грейдинг не окупается
	MinRawPrice decimal.Decimal
	GradingCost decimal.Decimal

	MinProfitMargin              float64
	DealPriceThresholdMultiplier float64

	// Ниже этой уверенности вероятность PSA 10 масштабируется
	LowConfidenceThreshold float64
}

func DefaultConfig() Config {
	return Config{
		StrongBuyROI:                 500,
		StrongBuyConfidence:          0.8,
		BuyROI:                       300,
		HoldROI:                      200,
		MinRawPrice:                  decimal.NewFromInt(250),
		GradingCost:                  decimal.NewFromInt(25),
		MinProfitMargin:              0.25,
		DealPriceThresholdMultiplier: 0.75,
		LowConfidenceThreshold:       0.8,
	}
}

func (c Config) Validate() error {
	var errs []error

	if !(c.StrongBuyROI >= c.BuyROI && c.BuyROI >= c.HoldROI) {
		errs = append(errs, fmt.Errorf("roi thresholds must be ordered: strong %.0f >= buy %.0f >= hold %.0f",
			c.StrongBuyROI, c.BuyROI, c.HoldROI))
	}

	if c.MinRawPrice.IsNegative() {
		errs = append(errs, errors.New("min raw price must not be negative"))
	}

	if c.GradingCost.IsNegative() {
		errs = append(errs, errors.New("grading cost must not be negative"))
	}

	if c.MinProfitMargin < 0 || c.MinProfitMargin >= 1 {
		errs = append(errs, fmt.Errorf("min profit margin %.2f out of [0, 1)", c.MinProfitMargin))
	}

	if c.DealPriceThresholdMultiplier <= 0 {
		errs = append(errs, errors.New("deal price threshold multiplier must be positive"))
	}

	return errors.Join(errs...)
}
