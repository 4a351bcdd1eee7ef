package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/service/capital"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/scoring"
)

// Engine: параметры оценки сделок, лимиты капитала и жизненный цикл.
type Engine struct {
	CatalogPath string `env:"ENGINE_CATALOG_PATH" envDefault:"configs/catalog.json"`

	// Покупки сразу проходят через шлюз капитала, без ручного одобрения
	AutoApprove bool `env:"ENGINE_AUTO_APPROVE" envDefault:"false"`

	StrongBuyROI                 float64         `env:"ENGINE_STRONG_BUY_ROI" envDefault:"500"`
	StrongBuyConfidence          float64         `env:"ENGINE_STRONG_BUY_CONFIDENCE" envDefault:"0.8"`
	BuyROI                       float64         `env:"ENGINE_BUY_ROI" envDefault:"300"`
	HoldROI                      float64         `env:"ENGINE_HOLD_ROI" envDefault:"200"`
	MinVaultPrice                decimal.Decimal `env:"ENGINE_MIN_VAULT_PRICE" envDefault:"250"`
	GradingCost                  decimal.Decimal `env:"ENGINE_GRADING_COST" envDefault:"25"`
	MinProfitMargin              float64         `env:"ENGINE_MIN_PROFIT_MARGIN" envDefault:"0.25"`
	DealPriceThresholdMultiplier float64         `env:"ENGINE_DEAL_PRICE_THRESHOLD_MULTIPLIER" envDefault:"0.75"`
	LowConfidenceThreshold       float64         `env:"ENGINE_LOW_CONFIDENCE_THRESHOLD" envDefault:"0.8"`
	ReprintCutoff                float64         `env:"ENGINE_REPRINT_CUTOFF" envDefault:"0.7"`
	ReprintBlacklist             []string        `env:"ENGINE_REPRINT_BLACKLIST" envSeparator:";"`

	TotalAvailable     decimal.Decimal `env:"CAPITAL_TOTAL_AVAILABLE" envDefault:"10000"`
	MaxTotalExposure   decimal.Decimal `env:"CAPITAL_MAX_TOTAL_EXPOSURE" envDefault:"8000"`
	PerDealLimit       decimal.Decimal `env:"CAPITAL_PER_DEAL_LIMIT" envDefault:"0"`
	ReserveCash        decimal.Decimal `env:"CAPITAL_RESERVE_CASH" envDefault:"2000"`
	MaxConcurrentDeals int             `env:"CAPITAL_MAX_CONCURRENT_DEALS" envDefault:"10"`
	MaxPositionPercent float64         `env:"CAPITAL_MAX_POSITION_PERCENT" envDefault:"10"`

	MinHoldDays      int     `env:"LIFECYCLE_MIN_HOLD_DAYS" envDefault:"7"`
	TargetSaleMarkup float64 `env:"LIFECYCLE_TARGET_SALE_MARKUP" envDefault:"1.1"`
	VaultLocation    string  `env:"LIFECYCLE_VAULT_LOCATION" envDefault:"vault"`
}

// Worker: расписания фоновых задач в формате cron.
type Worker struct {
	SweepSchedule   string `env:"WORKER_SWEEP_SCHEDULE" envDefault:"@every 1h"`
	RefreshSchedule string `env:"WORKER_REFRESH_SCHEDULE" envDefault:"@every 15m"`
}

func (e Engine) Scoring() scoring.Config {
	return scoring.Config{
		StrongBuyROI:                 e.StrongBuyROI,
		StrongBuyConfidence:          e.StrongBuyConfidence,
		BuyROI:                       e.BuyROI,
		HoldROI:                      e.HoldROI,
		MinRawPrice:                  e.MinVaultPrice,
		GradingCost:                  e.GradingCost,
		MinProfitMargin:              e.MinProfitMargin,
		DealPriceThresholdMultiplier: e.DealPriceThresholdMultiplier,
		LowConfidenceThreshold:       e.LowConfidenceThreshold,
	}
}

func (e Engine) Capital() capital.Limits {
	return capital.Limits{
		TotalAvailable:     e.TotalAvailable,
		MaxTotalExposure:   e.MaxTotalExposure,
		PerDealLimit:       e.PerDealLimit,
		ReserveCash:        e.ReserveCash,
		MaxConcurrentDeals: e.MaxConcurrentDeals,
		MaxPositionPercent: e.MaxPositionPercent,
	}
}

func (e Engine) Lifecycle() lifecycle.Config {
	return lifecycle.Config{
		MinHoldDays:      e.MinHoldDays,
		TargetSaleMarkup: e.TargetSaleMarkup,
		VaultLocation:    e.VaultLocation,
	}
}

func (e Engine) Validate() error {
	var errs []error

	if err := e.Scoring().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}

	if err := e.Capital().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("capital: %w", err))
	}

	if e.MinHoldDays < 0 {
		errs = append(errs, errors.New("lifecycle: min hold days must not be negative"))
	}

	if e.TargetSaleMarkup < 1 {
		errs = append(errs, fmt.Errorf("lifecycle: target sale markup %.2f below 1", e.TargetSaleMarkup))
	}

	if e.ReprintCutoff <= 0 || e.ReprintCutoff > 1 {
		errs = append(errs, fmt.Errorf("reprint cutoff %.2f out of (0, 1]", e.ReprintCutoff))
	}

	return errors.Join(errs...)
}
