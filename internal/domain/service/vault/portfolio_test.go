package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/infrastructure/memory"
)

//nolint:gochecknoglobals
var received = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func position(id string, class value.AssetClass, cost, insured int64) entity.VaultPosition {
	status := value.GradingStatusGraded
	if class == value.AssetClassRawCards {
		status = value.GradingStatusRaw
	}

	return entity.VaultPosition{
		DealID:         id,
		CardName:       "Card " + id,
		AssetClass:     class,
		GradingStatus:  status,
		PurchasePrice:  decimal.NewFromInt(cost),
		EstimatedValue: decimal.NewFromInt(insured),
		DateReceived:   received,
		HoldUntil:      received.AddDate(0, 0, 7),
	}
}

type projector map[string]vault.GradingProjection

func (p projector) ProjectGrading(pos entity.VaultPosition) (vault.GradingProjection, bool) {
	projection, ok := p[pos.DealID]
	return projection, ok
}

func newPortfolio(t *testing.T, positions ...entity.VaultPosition) *vault.Portfolio {
	t.Helper()

	p := vault.NewPortfolio(memory.NewVaultStore())
	for _, pos := range positions {
		require.NoError(t, p.AddPosition(context.Background(), pos))
	}

	return p
}

func TestPortfolioTotals(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	p := newPortfolio(t,
		position("a", value.AssetClassGradedCards, 300, 1000),
		position("b", value.AssetClassRawCards, 200, 400),
	)

	cost, insured := p.Totals()
	rq.Equal("500", cost.String())
	rq.Equal("1400", insured.String())

	// замена позиции не задваивает итоги
	rq.NoError(p.AddPosition(ctx, position("a", value.AssetClassGradedCards, 300, 1200)))

	cost, insured = p.Totals()
	rq.Equal("500", cost.String())
	rq.Equal("1600", insured.String())

	realization, ok, err := p.RemovePosition(ctx, "a", decimal.NewFromInt(450))
	rq.NoError(err)
	rq.True(ok)
	rq.Equal("150", realization.Profit.String())
	rq.InDelta(50.0, realization.ROI, 1e-9)

	cost, insured = p.Totals()
	rq.Equal("200", cost.String())
	rq.Equal("400", insured.String())

	_, ok, err = p.RemovePosition(ctx, "a", decimal.NewFromInt(450))
	rq.NoError(err)
	rq.False(ok)
}

func TestPortfolioRestore(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewVaultStore()
	rq.NoError(store.Save(ctx, position("a", value.AssetClassGradedCards, 300, 1000)))
	rq.NoError(store.Save(ctx, position("b", value.AssetClassRawCards, 200, 400)))

	p := vault.NewPortfolio(store)
	rq.NoError(p.Restore(ctx))

	rq.Len(p.Positions(), 2)

	cost, insured := p.Totals()
	rq.Equal("500", cost.String())
	rq.Equal("1400", insured.String())
}

func TestPortfolioReadyToSell(t *testing.T) {
	rq := require.New(t)

	p := newPortfolio(t, position("a", value.AssetClassGradedCards, 300, 1000))

	rq.Empty(p.ReadyToSell(received))
	rq.Empty(p.ReadyToSell(received.AddDate(0, 0, 6)))
	rq.Len(p.ReadyToSell(received.AddDate(0, 0, 7)), 1)
}

func TestPortfolioMetricsAndAllocation(t *testing.T) {
	rq := require.New(t)

	p := newPortfolio(t,
		position("a", value.AssetClassGradedCards, 300, 600),
		position("b", value.AssetClassRawCards, 100, 400),
	)

	quotes := vault.QuoterFunc(func(pos entity.VaultPosition) (decimal.Decimal, bool) {
		if pos.DealID == "a" {
			return decimal.NewFromInt(1500), true
		}

		return decimal.Zero, false
	})

	metrics := p.Metrics(quotes)
	rq.Equal(2, metrics.TotalPositions)
	rq.Equal("1900", metrics.CurrentValue.String())
	rq.Equal("1500", metrics.UnrealizedGains.String())
	rq.InDelta(375.0, metrics.ROIPercentage, 1e-9)
	rq.Equal("1000", metrics.InsuranceValue.String())

	allocation := p.Allocation(nil)
	rq.InDelta(60.0, allocation[value.AssetClassGradedCards], 1e-9)
	rq.InDelta(40.0, allocation[value.AssetClassRawCards], 1e-9)

	rq.Empty(vault.NewPortfolio(memory.NewVaultStore()).Allocation(nil))
}

func TestPortfolioRebalancingSuggestions(t *testing.T) {
	rq := require.New(t)

	p := newPortfolio(t,
		position("a", value.AssetClassGradedCards, 300, 600),
		position("b", value.AssetClassRawCards, 100, 400),
	)

	suggestions := p.RebalancingSuggestions(map[value.AssetClass]float64{
		value.AssetClassGradedCards: 62,
		value.AssetClassRawCards:    30,
		value.AssetClassSealed:      8,
	}, nil)

	rq.Len(suggestions, 2)

	rq.Equal(value.AssetClassRawCards, suggestions[0].AssetClass)
	rq.Equal(vault.RebalanceSell, suggestions[0].Action)
	rq.Equal("100", suggestions[0].Amount.String())

	rq.Equal(value.AssetClassSealed, suggestions[1].AssetClass)
	rq.Equal(vault.RebalanceBuy, suggestions[1].Action)
	rq.Equal("80", suggestions[1].Amount.String())
}

func TestPortfolioGradingOpportunities(t *testing.T) {
	rq := require.New(t)

	p := newPortfolio(t,
		position("graded", value.AssetClassGradedCards, 300, 600),
		position("low", value.AssetClassRawCards, 100, 150),
		position("high", value.AssetClassRawCards, 100, 150),
	)

	proj := projector{
		"graded": {ExpectedValue: decimal.NewFromInt(5000), ROI: 900},
		"low":    {ExpectedValue: decimal.NewFromInt(130), GradingCost: decimal.NewFromInt(25), ROI: 4},
		"high":   {ExpectedValue: decimal.NewFromInt(400), GradingCost: decimal.NewFromInt(25), ROI: 220},
	}

	opportunities := p.GradingOpportunities(vault.DefaultGradingMinROI, proj, nil)
	rq.Len(opportunities, 1)
	rq.Equal("high", opportunities[0].DealID)
	rq.Equal("150", opportunities[0].CurrentValue.String())

	report := p.Report(nil, proj)
	rq.Len(report.Positions, 3)
	rq.Len(report.GradingOpportunities, 1)
}
