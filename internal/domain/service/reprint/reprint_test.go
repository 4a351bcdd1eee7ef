package reprint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/service/reprint"
)

func TestModelScore(t *testing.T) {
	model := reprint.NewModel()

	testCases := []struct {
		name     string
		cardName string
		score    float64
		exceeds  bool
	}{
		{name: "High risk character", cardName: "Charizard", score: 0.8, exceeds: true},
		{name: "High risk with modern mechanic", cardName: "Charizard VMAX", score: 1.0, exceeds: true},
		{name: "Vintage offsets character", cardName: "Charizard Shadowless", score: 0.5},
		{name: "Two vintage keywords", cardName: "Dark Charizard Team Rocket 1st Edition", score: 0.2},
		{name: "Neutral card", cardName: "Umbreon", score: 0.5},
		{name: "Medium risk only", cardName: "Umbreon VMAX", score: 0.7},
		{name: "Clamped at zero", cardName: "Lugia Neo Genesis 1st Edition Shadowless", score: 0},
		{name: "Keyword inside word is ignored", cardName: "Neoprene playmat", score: 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			score := model.Score(tc.cardName)
			rq.InDelta(tc.score, score, 1e-9)
			rq.Equal(tc.exceeds, model.Exceeds(score))
		})
	}
}

func TestModelBlacklisted(t *testing.T) {
	rq := require.New(t)

	model := reprint.NewModel().WithBlacklist("Shining Fates")

	phrase, ok := model.Blacklisted("Celebrations Charizard 25th anniversary")
	rq.True(ok)
	rq.Equal("celebrations charizard", phrase)

	_, ok = model.Blacklisted("Shining Fates Charizard")
	rq.True(ok)

	_, ok = model.Blacklisted("Charizard Base Set")
	rq.False(ok)
}

func TestModelWithCutoff(t *testing.T) {
	rq := require.New(t)

	model := reprint.NewModel().WithCutoff(0.9)

	rq.False(model.Exceeds(model.Score("Charizard")))
	rq.True(model.Exceeds(model.Score("Charizard VMAX")))
	rq.InDelta(0.9, model.Cutoff(), 1e-9)
}
