package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
)

func TestCatalogGetBasePrice(t *testing.T) {
	c, err := catalog.LoadFile("testdata/catalog.json")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		cardName string
		setName  string
		found    bool
		price    string
	}{
		{name: "Exact set", cardName: "Charizard", setName: "Base Set Shadowless", found: true, price: "400"},
		{name: "Case insensitive", cardName: "CHARIZARD", setName: "base set shadowless", found: true, price: "400"},
		{name: "Wildcard set", cardName: "charizard", setName: "Champions Path", found: true, price: "120"},
		{name: "Unknown set without wildcard", cardName: "Blastoise", setName: "Evolutions", found: false},
		{name: "Unknown card", cardName: "Missingno", setName: "Base Set", found: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			entry, ok := c.GetBasePrice(tc.cardName, tc.setName)
			rq.Equal(tc.found, ok)

			if tc.found {
				rq.Equal(tc.price, entry.BasePrice.String())

				again, ok := c.GetBasePrice(tc.cardName, tc.setName)
				rq.True(ok)
				rq.Equal(entry, again)
			}
		})
	}
}

func TestCatalogEstimatePrice(t *testing.T) {
	rq := require.New(t)

	c, err := catalog.LoadFile("testdata/catalog.json")
	rq.NoError(err)

	price, ok := c.EstimatePrice("Charizard", "Base Set Shadowless", value.ConditionExcellent, nil)
	rq.True(ok)
	rq.Equal("300", price.String())

	price, ok = c.EstimatePrice("Charizard", "Base Set Shadowless", "", nil)
	rq.True(ok)
	rq.Equal("360", price.String())

	// оценка важнее состояния, множители не перемножаются
	psa9 := value.PSA(9)
	price, ok = c.EstimatePrice("Charizard", "Base Set Shadowless", value.ConditionExcellent, &psa9)
	rq.True(ok)
	rq.Equal("1000", price.String())

	_, ok = c.EstimatePrice("Missingno", "", value.ConditionNearMint, nil)
	rq.False(ok)
}

func TestCatalogCardsInRange(t *testing.T) {
	rq := require.New(t)

	c, err := catalog.LoadFile("testdata/catalog.json")
	rq.NoError(err)

	cards := c.CardsInRange(decimal.NewFromInt(150), decimal.NewFromInt(500))
	rq.Len(cards, 2)
	rq.Equal("Charizard", cards[0].CardName)
	rq.Equal("Blastoise", cards[1].CardName)

	rq.Len(c.CardsInRange(decimal.NewFromInt(150), decimal.Zero), 3)
}

func TestCatalogWithPrices(t *testing.T) {
	rq := require.New(t)

	c := catalog.New([]entity.CatalogEntry{
		{CardName: "Umbreon VMAX", SetName: "Evolving Skies", BasePrice: decimal.NewFromInt(300)},
	})

	updated := c.WithPrices(map[catalog.Key]decimal.Decimal{
		catalog.NewKey("umbreon vmax", "evolving skies"): decimal.NewFromInt(340),
		catalog.NewKey("Rayquaza VMAX", "Evolving Skies"): decimal.NewFromInt(220),
		catalog.NewKey("Ignored", "Set"):                  decimal.Zero,
	})

	entry, ok := updated.GetBasePrice("Umbreon VMAX", "Evolving Skies")
	rq.True(ok)
	rq.Equal("340", entry.BasePrice.String())

	_, ok = updated.GetBasePrice("Rayquaza VMAX", "Evolving Skies")
	rq.True(ok)
	rq.Equal(2, updated.Len())

	original, ok := c.GetBasePrice("Umbreon VMAX", "Evolving Skies")
	rq.True(ok)
	rq.Equal("300", original.BasePrice.String())
}

func TestParseRejectsInvalidCatalog(t *testing.T) {
	rq := require.New(t)

	_, err := catalog.Parse([]byte(`{"cards":[{"cardName":"Mew","basePrice":"0"}]}`))
	rq.ErrorContains(err, "base price must be positive")

	_, err = catalog.Parse([]byte(`{"cards":[{"cardName":"","basePrice":"10"}]}`))
	rq.ErrorContains(err, "empty name")

	_, err = catalog.Parse([]byte(`not json`))
	rq.True(domain.HasCode(err, errcodes.InvalidCatalog))
}
