package worker

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/pkg/logx"
)

type PriceSource interface {
	Load(ctx context.Context) (map[catalog.Key]decimal.Decimal, error)
}

// MultiSource объединяет источники цен: более поздний источник перекрывает ранний.
// Недоступный источник пропускается, ошибка возвращается только если не ответил ни один.
type MultiSource []PriceSource

func (m MultiSource) Load(ctx context.Context) (map[catalog.Key]decimal.Decimal, error) {
	var (
		merged  map[catalog.Key]decimal.Decimal
		lastErr error
	)

	for i, source := range m {
		prices, err := source.Load(ctx)
		if err != nil {
			logger(ctx).Warn("price source unavailable", slog.Int("source", i), logx.Error(err))
			lastErr = err

			continue
		}

		if merged == nil {
			merged = make(map[catalog.Key]decimal.Decimal, len(prices))
		}

		maps.Copy(merged, prices)
	}

	if merged == nil && lastErr != nil {
		return nil, lastErr
	}

	return merged, nil
}

type CatalogSetter interface {
	SetCatalog(c *catalog.Catalog)
}

// CatalogRefresher собирает новый снимок каталога из файла и рыночных цен.
type CatalogRefresher struct {
	path   string
	prices PriceSource
	target CatalogSetter
}

func NewCatalogRefresher(path string, prices PriceSource, target CatalogSetter) *CatalogRefresher {
	return &CatalogRefresher{
		path:   path,
		prices: prices,
		target: target,
	}
}

// Build читает каталог и подмешивает рыночные цены. Ошибка источника цен не фатальна:
// снимок собирается из одного файла.
func (r *CatalogRefresher) Build(ctx context.Context) (*catalog.Catalog, error) {
	base, err := catalog.LoadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: %w", err)
	}

	if r.prices == nil {
		return base, nil
	}

	prices, err := r.prices.Load(ctx)
	if err != nil {
		logger(ctx).Warn("market prices unavailable, using catalog file only", logx.Error(err))
		return base, nil
	}

	return base.WithPrices(prices), nil
}

func (r *CatalogRefresher) Refresh(ctx context.Context) error {
	c, err := r.Build(ctx)
	if err != nil {
		return err
	}

	r.target.SetCatalog(c)

	logger(ctx).Info("catalog refreshed", slog.Int("cards", c.Len()))

	return nil
}
