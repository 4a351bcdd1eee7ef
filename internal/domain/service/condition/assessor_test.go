package condition_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/condition"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/tests"
)

func rating(r float64) *float64 {
	return &r
}

func TestAssessorAssess(t *testing.T) {
	assessor := condition.NewAssessor()

	testCases := []struct {
		name         string
		title        string
		description  string
		sellerRating *float64
		condition    value.Condition
		confidence   float64
		multiplier   float64
		company      value.GradingCompany
		grade        string
	}{
		{
			name:        "Near mint with light wear keeps tier",
			title:       "Charizard",
			description: "Near Mint condition with excellent centering. Minor edge wear.",
			condition:   value.ConditionNearMint,
			confidence:  0.75,
			multiplier:  0.9,
		},
		{
			name:       "PSA numeric grade",
			title:      "PSA 10 Charizard VMAX Champions Path",
			condition:  value.ConditionGraded,
			confidence: 0.9,
			multiplier: 5.0,
			company:    value.GradingCompanyPSA,
			grade:      "10",
		},
		{
			name:        "PSA grade without space",
			title:       "Umbreon VMAX",
			description: "graded psa9, case is clean",
			condition:   value.ConditionGraded,
			confidence:  0.9,
			multiplier:  2.5,
			company:     value.GradingCompanyPSA,
			grade:       "9",
		},
		{
			name:       "BGS special label wins over numeric grade",
			title:      "Charizard VMAX BGS 10 Black Label",
			condition:  value.ConditionGraded,
			confidence: 0.88,
			multiplier: 10.0,
			company:    value.GradingCompanyBGS,
			grade:      "Black Label",
		},
		{
			name:       "Beckett alias",
			title:      "Beckett 9.5 Lugia",
			condition:  value.ConditionGraded,
			confidence: 0.88,
			multiplier: 3.5,
			company:    value.GradingCompanyBGS,
			grade:      "9.5",
		},
		{
			name:       "CGC longest label first",
			title:      "CGC Pristine 10 Umbreon",
			condition:  value.ConditionGraded,
			confidence: 0.85,
			multiplier: 6.0,
			company:    value.GradingCompanyCGC,
			grade:      "Pristine 10",
		},
		{
			name:       "Grade missing from table",
			title:      "PSA 9.5 Mew",
			condition:  value.ConditionGraded,
			confidence: 0.9,
			multiplier: value.UnknownGradeMultiplier,
			company:    value.GradingCompanyPSA,
			grade:      "9.5",
		},
		{
			name:         "Strong positive upgrades unstated tier",
			title:        "Charizard VMAX Champions Path",
			description:  "Pack fresh, never played",
			sellerRating: rating(98.5),
			condition:    value.ConditionNearMintMint,
			confidence:   0.65,
			multiplier:   1.0,
		},
		{
			name:        "Heavy damage downgrades explicit tier",
			title:       "Charizard Base Set",
			description: "Near mint but has a crease",
			condition:   value.ConditionGood,
			confidence:  0.7,
			multiplier:  0.5,
		},
		{
			name:        "Heavy damage keeps positive confidence but blocks upgrade",
			title:       "Venusaur Base Set",
			description: "Pack fresh but creased",
			condition:   value.ConditionGood,
			confidence:  0.65,
			multiplier:  0.5,
		},
		{
			name:        "Medium negative downgrades mint",
			title:       "Blastoise",
			description: "Mint, light whitening on back",
			condition:   value.ConditionExcellent,
			confidence:  0.65,
			multiplier:  0.75,
		},
		{
			name:        "Medium negative leaves played alone",
			title:       "Charizard VMAX Champions Path - Played",
			description: "Light whitening on corners, some edge wear",
			condition:   value.ConditionPlayed,
			confidence:  0.6,
			multiplier:  0.4,
		},
		{
			name:         "Low seller rating",
			title:        "Pikachu NM",
			sellerRating: rating(90),
			condition:    value.ConditionNearMint,
			confidence:   0.55,
			multiplier:   0.9,
		},
		{
			name:         "Top seller rating",
			title:        "Gengar lightly played",
			sellerRating: rating(99.6),
			condition:    value.ConditionLightlyPlayed,
			confidence:   0.65,
			multiplier:   0.65,
		},
		{
			name:       "Empty input",
			condition:  value.ConditionGood,
			confidence: 0.5,
			multiplier: 0.5,
		},
		{
			name:        "Word inside another word is not a tier",
			title:       "Pokemon card lot",
			description: "Stamped promo, shipped in a toploader",
			condition:   value.ConditionGood,
			confidence:  0.5,
			multiplier:  0.5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			got := assessor.Assess(tc.title, tc.description, tc.sellerRating)

			rq.Equal(tc.condition, got.Condition)
			rq.InDelta(tc.confidence, got.Confidence, 1e-9)
			rq.InDelta(tc.multiplier, got.Multiplier, 1e-9)
			rq.Equal(tc.company, got.GradingCompany)
			rq.Equal(tc.grade, got.Grade)
		})
	}
}

func TestAssessorAssessListingPrefersExplicitLabel(t *testing.T) {
	rq := require.New(t)

	assessor := condition.NewAssessor()

	got := assessor.AssessListing(entity.Listing{
		Title:        "Charizard raw NM",
		CardName:     "Charizard",
		GradingLabel: &value.GradingLabel{Company: value.GradingCompanyPSA, Grade: "9"},
	})

	rq.True(got.IsGraded())
	rq.Equal("9", got.Grade)
	rq.InDelta(2.5, got.Multiplier, 1e-9)
	rq.InDelta(0.9, got.Confidence, 1e-9)
}

func TestAssessorConfidenceBound(t *testing.T) {
	rq := require.New(t)

	assessor := condition.NewAssessor()
	random := tests.NewRandomizer()

	words := []string{
		"near mint/mint", "near mint", "mint", "excellent", "lightly played", "played", "poor",
		"crease", "bent", "whitening", "scratch", "edge wear", "minor wear",
		"pack fresh", "gem", "never played", "sharp corners", "clean", "crisp",
		"clear photos", "damage", "psa", "bgs",
	}

	for i := 0; i < 500; i++ {
		var parts []string

		for _, w := range words {
			if random.Bool() {
				parts = append(parts, w)
			}
		}

		var sellerRating *float64
		if random.Bool() {
			sellerRating = rating(random.Float64() * 100)
		}

		text := strings.Join(parts, ", ")
		first := assessor.Assess("Charizard", text, sellerRating)
		second := assessor.Assess("Charizard", text, sellerRating)

		rq.GreaterOrEqual(first.Confidence, 0.0, text)
		rq.LessOrEqual(first.Confidence, 0.95, text)
		rq.Equal(first, second, text)

		if !first.IsGraded() {
			rq.InDelta(first.Condition.Multiplier(), first.Multiplier, 1e-9, text)
		}
	}
}

func TestAssessorCalculateValue(t *testing.T) {
	rq := require.New(t)

	assessor := condition.NewAssessor()

	got := assessor.CalculateValue(
		decimal.RequireFromString("333.33"),
		entity.ConditionAssessment{Multiplier: 0.75},
	)

	rq.Equal("250", got.String())

	got = assessor.CalculateValue(
		decimal.RequireFromString("100"),
		entity.ConditionAssessment{Multiplier: 0.9},
	)

	rq.Equal("90", got.String())
}
