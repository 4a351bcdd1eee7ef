package scoring_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/scoring"
	"card_arbitrage/internal/domain/value"
)

func mintAssessment(confidence float64) entity.ConditionAssessment {
	return entity.ConditionAssessment{
		Condition:  value.ConditionNearMintMint,
		Confidence: confidence,
		Multiplier: value.ConditionNearMintMint.Multiplier(),
	}
}

func listing(price string) entity.Listing {
	return entity.Listing{
		CardName: "Charizard",
		SetName:  "Base Set Shadowless",
		RawPrice: decimal.RequireFromString(price),
	}
}

func TestScorerScore(t *testing.T) {
	entry := &entity.CatalogEntry{
		CardName:  "Charizard",
		SetName:   "Base Set Shadowless",
		BasePrice: decimal.NewFromInt(1000),
	}

	psa9 := value.PSA(9)
	graded := entity.ConditionAssessment{
		Condition:      value.ConditionGraded,
		Confidence:     0.9,
		Multiplier:     psa9.Multiplier(),
		GradingCompany: psa9.Company,
		Grade:          psa9.Grade,
	}

	lowMarginConfig := scoring.DefaultConfig()
	lowMarginConfig.MinProfitMargin = 0.9

	aboveMarketConfig := scoring.DefaultConfig()
	aboveMarketConfig.DealPriceThresholdMultiplier = 0.2

	testCases := []struct {
		name           string
		config         scoring.Config
		listing        entity.Listing
		assessment     entity.ConditionAssessment
		entry          *entity.CatalogEntry
		recommendation value.Recommendation
		reason         value.ReasonCode
		expectedValue  string
		roi            float64
	}{
		{
			name:           "Strong buy",
			config:         scoring.DefaultConfig(),
			listing:        listing("300"),
			assessment:     mintAssessment(0.85),
			entry:          entry,
			recommendation: value.RecommendationStrongBuy,
			expectedValue:  "2435",
			roi:            649.23,
		},
		{
			name:           "Low confidence shifts PSA 10 odds and blocks strong buy",
			config:         scoring.DefaultConfig(),
			listing:        listing("300"),
			assessment:     mintAssessment(0.7),
			entry:          entry,
			recommendation: value.RecommendationBuy,
			expectedValue:  "2259.5",
			roi:            595.23,
		},
		{
			name:           "Graded listing uses its own grade",
			config:         scoring.DefaultConfig(),
			listing:        listing("400"),
			assessment:     graded,
			entry:          entry,
			recommendation: value.RecommendationBuy,
			expectedValue:  "2500",
			roi:            488.24,
		},
		{
			name:           "Low margin caps at hold",
			config:         lowMarginConfig,
			listing:        listing("300"),
			assessment:     mintAssessment(0.85),
			entry:          entry,
			recommendation: value.RecommendationHold,
			reason:         value.ReasonLowMargin,
			expectedValue:  "2435",
			roi:            649.23,
		},
		{
			name:           "Price above market threshold caps at hold",
			config:         aboveMarketConfig,
			listing:        listing("300"),
			assessment:     mintAssessment(0.85),
			entry:          entry,
			recommendation: value.RecommendationHold,
			reason:         value.ReasonAboveMarket,
			expectedValue:  "2435",
			roi:            649.23,
		},
		{
			name:           "Low return",
			config:         scoring.DefaultConfig(),
			listing:        listing("2000"),
			assessment:     mintAssessment(0.85),
			entry:          entry,
			recommendation: value.RecommendationPass,
			reason:         value.ReasonLowReturn,
			expectedValue:  "2435",
			roi:            20.25,
		},
		{
			name:           "Negative return",
			config:         scoring.DefaultConfig(),
			listing:        listing("3000"),
			assessment:     mintAssessment(0.85),
			entry:          entry,
			recommendation: value.RecommendationStrongPass,
			reason:         value.ReasonNegativeReturn,
			expectedValue:  "2435",
			roi:            -19.5,
		},
		{
			name:           "Below grading threshold",
			config:         scoring.DefaultConfig(),
			listing:        listing("200"),
			assessment:     mintAssessment(0.95),
			entry:          entry,
			recommendation: value.RecommendationPass,
			reason:         value.ReasonBelowThreshold,
			expectedValue:  "0",
		},
		{
			name:           "Missing catalog price",
			config:         scoring.DefaultConfig(),
			listing:        listing("300"),
			assessment:     mintAssessment(0.95),
			recommendation: value.RecommendationPass,
			reason:         value.ReasonInsufficientPriceData,
			expectedValue:  "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			scorer := scoring.NewScorer(tc.config).
				WithClock(func() time.Time { return now }).
				WithIDGenerator(func() string { return "deal-1" })

			deal := scorer.Score(tc.listing, tc.assessment, tc.entry, 0.3)

			rq.Equal("deal-1", deal.ID)
			rq.Equal(now, deal.CreatedAt)
			rq.Equal(tc.recommendation, deal.Recommendation)
			rq.Equal(tc.reason, deal.Reason.Code)
			rq.Equal(tc.expectedValue, deal.ExpectedValue.String())
			rq.InDelta(tc.roi, deal.ROI, 1e-9)
			rq.InDelta(0.3, deal.ReprintRisk, 1e-9)
			rq.True(tc.listing.RawPrice.Add(decimal.NewFromInt(25)).Equal(deal.InvestmentAmount))
			rq.NotEmpty(deal.Reason.Message)
		})
	}
}

func TestScorerBelowThresholdMentionsThreshold(t *testing.T) {
	rq := require.New(t)

	deal := scoring.NewScorer(scoring.DefaultConfig()).Score(listing("200"), mintAssessment(0.9), nil, 0.1)

	rq.Equal(value.RecommendationPass, deal.Recommendation)
	rq.Contains(deal.Reason.Message, "threshold")
}

func TestScorerDistribution(t *testing.T) {
	scorer := scoring.NewScorer(scoring.DefaultConfig())

	conditions := []value.Condition{
		value.ConditionNearMintMint,
		value.ConditionNearMint,
		value.ConditionExcellent,
		value.ConditionLightlyPlayed,
		value.ConditionGood,
		value.ConditionPlayed,
		value.ConditionPoor,
	}

	for _, c := range conditions {
		for _, confidence := range []float64{0.3, 0.79, 0.8, 0.95} {
			dist := scorer.Distribution(entity.ConditionAssessment{Condition: c, Confidence: confidence})

			require.Len(t, dist, 4)
			require.InDelta(t, 1.0, dist.Total(), 1e-9, "%s %.2f", c, confidence)
		}
	}

	dist := scorer.Distribution(mintAssessment(0.5))
	require.InDelta(t, 0.075, dist[0].Probability, 1e-9)
	require.InDelta(t, 0.175, dist[3].Probability, 1e-9)
}

func TestConfigValidate(t *testing.T) {
	rq := require.New(t)

	rq.NoError(scoring.DefaultConfig().Validate())

	cfg := scoring.DefaultConfig()
	cfg.BuyROI = 600
	cfg.MinProfitMargin = 1.5
	cfg.GradingCost = decimal.NewFromInt(-1)

	err := cfg.Validate()
	rq.ErrorContains(err, "roi thresholds must be ordered")
	rq.ErrorContains(err, "min profit margin")
	rq.ErrorContains(err, "grading cost")
}

func TestScorerProjectGrading(t *testing.T) {
	rq := require.New(t)

	entry := entity.CatalogEntry{CardName: "Charizard", BasePrice: decimal.NewFromInt(1000)}

	projection := scoring.NewScorer(scoring.DefaultConfig()).
		ProjectGrading(entry, value.ConditionNearMint, decimal.NewFromInt(300))

	rq.Equal("1945", projection.ExpectedValue.String())
	rq.Equal("25", projection.GradingCost.String())
	rq.InDelta(498.46, projection.ROI, 1e-9)
}
