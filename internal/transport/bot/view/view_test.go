package view_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/transport/bot/view"
)

func deals(n int) []entity.Deal {
	result := make([]entity.Deal, 0, n)
	for i := range n {
		result = append(result, entity.Deal{
			ID:               fmt.Sprintf("deal-%d", i+1),
			Listing:          entity.Listing{CardName: "Lugia <1st>", SetName: "Neo Genesis"},
			Recommendation:   value.RecommendationBuy,
			ExpectedValue:    decimal.NewFromInt(2500),
			InvestmentAmount: decimal.NewFromInt(425),
			ROI:              488.24,
		})
	}

	return result
}

func TestCommandArgs(t *testing.T) {
	testCases := []struct {
		name string
		text string
		args []string
	}{
		{name: "No args", text: "/approve", args: nil},
		{name: "One arg", text: "/approve deal-1", args: []string{"deal-1"}},
		{name: "Reason", text: "/reject  deal-1   too   pricey", args: []string{"deal-1", "too", "pricey"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.args, view.CommandArgs(tc.text))
		})
	}
}

func TestDealsPage(t *testing.T) {
	testCases := []struct {
		name    string
		count   int
		page    int
		current int
		total   int
		first   string
		last    string
	}{
		{name: "Single page", count: 3, page: 1, current: 1, total: 1, first: "deal-1", last: "deal-3"},
		{name: "Second page", count: 12, page: 2, current: 2, total: 3, first: "deal-6", last: "deal-10"},
		{name: "Page past the end", count: 12, page: 9, current: 3, total: 3, first: "deal-11", last: "deal-12"},
		{name: "Page below one", count: 7, page: 0, current: 1, total: 2, first: "deal-1", last: "deal-5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			text, current, total := view.DealsPage(deals(tc.count), tc.page)

			rq.Equal(tc.current, current)
			rq.Equal(tc.total, total)
			rq.Contains(text, fmt.Sprintf("Стр. %d/%d", tc.current, tc.total))
			rq.Contains(text, "<code>"+tc.first+"</code>")
			rq.Contains(text, "<code>"+tc.last+"</code>")
			rq.Contains(text, "Lugia &lt;1st&gt;")
			rq.Contains(text, "$425.00 → EV $2500.00")
		})
	}
}

func TestDealsPageEmpty(t *testing.T) {
	rq := require.New(t)

	text, current, total := view.DealsPage(nil, 3)

	rq.Equal(view.NoPendingDeals, text)
	rq.Equal(1, current)
	rq.Equal(1, total)
}

func TestCapital(t *testing.T) {
	text := view.Capital(entity.CapitalStatus{
		TotalAvailable:       decimal.NewFromInt(1200),
		ActiveExposure:       decimal.NewFromInt(425),
		ReserveCash:          decimal.NewFromInt(200),
		AvailableForNewDeals: decimal.NewFromInt(375),
		MaxTotalExposure:     decimal.NewFromInt(800),
		PerDealLimit:         decimal.NewFromInt(500),
		ActiveDealCount:      1,
		MaxConcurrent:        5,
		UtilizationPct:       53.125,
	})

	rq := require.New(t)
	rq.Contains(text, "$1200.00")
	rq.Contains(text, "$425.00 (1)")
	rq.Contains(text, "1 из 5")
	rq.Contains(text, "53.1%")
}

func TestVault(t *testing.T) {
	text := view.Vault(vault.Report{
		Summary: vault.Metrics{
			TotalPositions:  2,
			CostBasis:       decimal.NewFromInt(725),
			CurrentValue:    decimal.NewFromInt(5900),
			UnrealizedGains: decimal.NewFromInt(5175),
			ROIPercentage:   713.79,
			InsuranceValue:  decimal.NewFromInt(5900),
		},
		Allocation: map[value.AssetClass]float64{
			value.AssetClassRawCards:    15.3,
			value.AssetClassGradedCards: 84.7,
		},
		GradingOpportunities: []vault.GradingOpportunity{{DealID: "deal-2"}},
	})

	rq := require.New(t)
	rq.Contains(text, "<b>Позиций:</b> 2")
	rq.Contains(text, "$5175.00 (713.8%)")
	rq.Contains(text, "• graded_cards: 84.7%\n• raw_cards: 15.3%")
	rq.Contains(text, "Кандидатов на грейдинг:</b> 1")
}

func TestReadySales(t *testing.T) {
	rq := require.New(t)

	rq.Equal(view.NothingReady, view.ReadySales(nil))

	text := view.ReadySales([]lifecycle.ReadySale{
		{
			Position: entity.VaultPosition{
				CardName:       "Lugia",
				GradingCompany: value.GradingCompanyPSA,
				Grade:          "10",
				DateReceived:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			SuggestedPrice: decimal.NewFromInt(5500),
			DaysHeld:       7,
		},
	})

	rq.Contains(text, "(1)")
	rq.Contains(text, "1. Lugia PSA 10 — $5500.00, 7 дн.")
}

func TestApproved(t *testing.T) {
	rq := require.New(t)

	rq.Contains(view.Approved(entity.AdmissionDecision{
		Allowed: true,
		DealID:  "deal-1",
		Amount:  decimal.NewFromInt(425),
	}), "<code>deal-1</code> одобрена на $425.00")

	rq.Equal("⛔ Отказано: exposure &gt; limit", view.Approved(entity.AdmissionDecision{Reason: "exposure > limit"}))
}
