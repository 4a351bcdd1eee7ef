package worker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/worker"
)

type staticChecker []lifecycle.ReadySale

func (c staticChecker) CheckReadyToSell(time.Time) []lifecycle.ReadySale {
	return c
}

type recordingNotifier struct {
	mu    sync.Mutex
	sales []lifecycle.ReadySale
	fail  map[string]bool
}

func (n *recordingNotifier) NotifyReadyToSell(_ context.Context, sale lifecycle.ReadySale) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fail[sale.Position.DealID] {
		return errors.New("send failed")
	}

	n.sales = append(n.sales, sale)

	return nil
}

func sale(id string) lifecycle.ReadySale {
	return lifecycle.ReadySale{
		Position:       entity.VaultPosition{DealID: id, CardName: "Lugia"},
		SuggestedPrice: decimal.NewFromInt(3080),
	}
}

func TestVaultSweeperNotifiesOnce(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	notifier := &recordingNotifier{fail: map[string]bool{"D2": true}}
	sweeper := worker.NewVaultSweeper(staticChecker{sale("D1"), sale("D2")}, notifier)

	rq.Equal(1, sweeper.Sweep(ctx))
	rq.Equal(0, sweeper.Sweep(ctx))
	rq.Len(notifier.sales, 1)

	notifier.fail = nil
	rq.Equal(1, sweeper.Sweep(ctx))
	rq.Len(notifier.sales, 2)
}

func TestVaultSweeperStartStop(t *testing.T) {
	rq := require.New(t)

	sweeper := worker.NewVaultSweeper(staticChecker{}, &recordingNotifier{})

	rq.NoError(sweeper.Start(context.Background()))
	rq.True(sweeper.IsRunning())
	rq.Error(sweeper.Start(context.Background()))

	sweeper.Stop()
	rq.False(sweeper.IsRunning())

	sweeper.Stop()
}

func TestVaultSweeperRejectsBadSchedule(t *testing.T) {
	rq := require.New(t)

	err := worker.NewVaultSweeper(staticChecker{}, &recordingNotifier{}).
		WithSchedule("every now and then").
		Run(context.Background())
	rq.Error(err)
}

type stubPrices struct {
	prices map[catalog.Key]decimal.Decimal
	err    error
}

func (s stubPrices) Load(context.Context) (map[catalog.Key]decimal.Decimal, error) {
	return s.prices, s.err
}

type catalogHolder struct {
	c *catalog.Catalog
}

func (h *catalogHolder) SetCatalog(c *catalog.Catalog) {
	h.c = c
}

func writeCatalog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{"cards": [{"cardName": "Lugia", "setName": "Neo Genesis", "basePrice": "650"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	return path
}

func TestCatalogRefresher(t *testing.T) {
	testCases := []struct {
		name   string
		prices worker.PriceSource
		want   string
	}{
		{
			name: "market price overrides file",
			prices: stubPrices{prices: map[catalog.Key]decimal.Decimal{
				catalog.NewKey("Lugia", "Neo Genesis"): decimal.NewFromInt(700),
			}},
			want: "700",
		},
		{
			name:   "price source failure keeps file prices",
			prices: stubPrices{err: errors.New("redis down")},
			want:   "650",
		},
		{
			name: "no price source",
			want: "650",
		},
		{
			name: "later source wins",
			prices: worker.MultiSource{
				stubPrices{prices: map[catalog.Key]decimal.Decimal{
					catalog.NewKey("Lugia", "Neo Genesis"): decimal.NewFromInt(700),
				}},
				stubPrices{prices: map[catalog.Key]decimal.Decimal{
					catalog.NewKey("Lugia", "Neo Genesis"): decimal.NewFromInt(720),
				}},
			},
			want: "720",
		},
		{
			name: "failed source is skipped",
			prices: worker.MultiSource{
				stubPrices{prices: map[catalog.Key]decimal.Decimal{
					catalog.NewKey("Lugia", "Neo Genesis"): decimal.NewFromInt(700),
				}},
				stubPrices{err: errors.New("feed down")},
			},
			want: "700",
		},
		{
			name:   "all sources failed",
			prices: worker.MultiSource{stubPrices{err: errors.New("redis down")}, stubPrices{err: errors.New("feed down")}},
			want:   "650",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			holder := &catalogHolder{}
			rq.NoError(worker.NewCatalogRefresher(writeCatalog(t), tc.prices, holder).Refresh(context.Background()))

			entry, ok := holder.c.GetBasePrice("lugia", "neo genesis")
			rq.True(ok)
			rq.Equal(tc.want, entry.BasePrice.String())
		})
	}
}

func TestCatalogRefresherMissingFile(t *testing.T) {
	rq := require.New(t)

	holder := &catalogHolder{}
	err := worker.NewCatalogRefresher(filepath.Join(t.TempDir(), "missing.json"), nil, holder).
		Refresh(context.Background())
	rq.Error(err)
	rq.Nil(holder.c)
}
