package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	rq := require.New(t)

	cfg, err := config.Load()
	rq.NoError(err)

	rq.Equal(config.StorageSQLite, cfg.Storage.Driver)
	rq.False(cfg.Redis.Enabled())

	scoring := cfg.Engine.Scoring()
	rq.Equal("250", scoring.MinRawPrice.String())
	rq.Equal("25", scoring.GradingCost.String())
	rq.InDelta(0.25, scoring.MinProfitMargin, 1e-9)

	limits := cfg.Engine.Capital()
	rq.Equal("1000", limits.EffectivePerDealLimit().String())
	rq.Equal(10, limits.MaxConcurrentDeals)

	rq.Equal(7, cfg.Engine.Lifecycle().MinHoldDays)
}

func TestLoadFromEnv(t *testing.T) {
	rq := require.New(t)

	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("PG_DSN", "postgres://localhost:5432/cards")
	t.Setenv("CAPITAL_PER_DEAL_LIMIT", "500")
	t.Setenv("ENGINE_REPRINT_BLACKLIST", "celebrations;shiny vault")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := config.Load()
	rq.NoError(err)

	rq.Equal(config.StoragePostgres, cfg.Storage.Driver)
	rq.Equal("500", cfg.Engine.Capital().EffectivePerDealLimit().String())
	rq.Equal([]string{"celebrations", "shiny vault"}, cfg.Engine.ReprintBlacklist)
	rq.True(cfg.Redis.Enabled())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		err  string
	}{
		{
			name: "Postgres without dsn",
			env:  map[string]string{"STORAGE_DRIVER": "postgres"},
			err:  "PG_DSN is required",
		},
		{
			name: "Unknown driver",
			env:  map[string]string{"STORAGE_DRIVER": "mongo"},
			err:  "unknown storage driver",
		},
		{
			name: "Bot without token",
			env:  map[string]string{"BOT_ENABLED": "true"},
			err:  "BOT_TOKEN and BOT_CHAT_ID",
		},
		{
			name: "Unordered thresholds",
			env:  map[string]string{"ENGINE_BUY_ROI": "900"},
			err:  "roi thresholds must be ordered",
		},
		{
			name: "No concurrent deals",
			env:  map[string]string{"CAPITAL_MAX_CONCURRENT_DEALS": "0"},
			err:  "max concurrent deals must be positive",
		},
		{
			name: "Markup below one",
			env:  map[string]string{"LIFECYCLE_TARGET_SALE_MARKUP": "0.9"},
			err:  "target sale markup",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.ErrorContains(t, err, tc.err)
		})
	}
}
