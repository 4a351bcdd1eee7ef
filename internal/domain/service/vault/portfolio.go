package vault

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/metrics"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/logx"
)

// Store сохраняет позиции между перезапусками.
type Store interface {
	Save(ctx context.Context, position entity.VaultPosition) error
	Delete(ctx context.Context, dealID string) error
	List(ctx context.Context) ([]entity.VaultPosition, error)
}

// Portfolio: позиции в хранилище и их агрегаты. Безопасен для конкурентного использования.
type Portfolio struct {
	mu        sync.RWMutex
	positions map[string]entity.VaultPosition
	costBasis decimal.Decimal
	insured   decimal.Decimal

	store Store
	now   func() time.Time
}

func NewPortfolio(store Store) *Portfolio {
	return &Portfolio{
		positions: make(map[string]entity.VaultPosition),
		store:     store,
		now:       time.Now,
	}
}

func (p *Portfolio) WithClock(now func() time.Time) *Portfolio {
	p.now = now
	return p
}

// Restore загружает позиции из хранилища, заменяя текущие.
func (p *Portfolio) Restore(ctx context.Context) error {
	positions, err := p.store.List(ctx)
	if err != nil {
		return fmt.Errorf("store.List: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.positions = make(map[string]entity.VaultPosition, len(positions))
	p.costBasis = decimal.Zero
	p.insured = decimal.Zero

	for _, pos := range positions {
		p.put(pos)
	}

	p.publish()

	logger(ctx).Info("vault restored", slog.Int("positions", len(positions)))

	return nil
}

// AddPosition добавляет позицию или заменяет существующую с тем же DealID.
func (p *Portfolio) AddPosition(ctx context.Context, pos entity.VaultPosition) error {
	if pos.DateReceived.IsZero() {
		pos.DateReceived = p.now()
	}

	if err := p.store.Save(ctx, pos); err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.positions[pos.DealID]; ok {
		p.drop(old)
	}

	p.put(pos)
	p.publish()

	logger(ctx).Info("position added to vault",
		slog.String(logx.FieldDealID, pos.DealID),
		slog.String(logx.FieldCardName, pos.CardName),
		slog.String("cost-basis", pos.PurchasePrice.StringFixed(2)),
		slog.String("insurance-value", pos.EstimatedValue.StringFixed(2)),
		slog.Time("hold-until", pos.HoldUntil),
	)

	return nil
}

// RemovePosition снимает позицию с учёта при продаже и возвращает реализованную прибыль.
// ok=false, если позиции нет.
func (p *Portfolio) RemovePosition(
	ctx context.Context,
	dealID string,
	salePrice decimal.Decimal,
) (entity.Realization, bool, error) {
	p.mu.RLock()
	pos, ok := p.positions[dealID]
	p.mu.RUnlock()

	if !ok {
		return entity.Realization{}, false, nil
	}

	if err := p.store.Delete(ctx, dealID); err != nil {
		return entity.Realization{}, false, fmt.Errorf("store.Delete: %w", err)
	}

	p.mu.Lock()
	if current, ok := p.positions[dealID]; ok {
		p.drop(current)
		delete(p.positions, dealID)
	}
	p.publish()
	p.mu.Unlock()

	profit := salePrice.Sub(pos.PurchasePrice)

	var roi float64
	if pos.PurchasePrice.IsPositive() {
		roi = profit.Div(pos.PurchasePrice).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	metrics.RealizedProfit.Add(profit.InexactFloat64())

	logger(ctx).Info("position sold",
		slog.String(logx.FieldDealID, dealID),
		slog.String(logx.FieldCardName, pos.CardName),
		slog.String("sale-price", salePrice.StringFixed(2)),
		slog.String("profit", profit.StringFixed(2)),
		slog.Float64(logx.FieldROI, roi),
	)

	return entity.Realization{
		Position:  pos,
		SalePrice: salePrice,
		Profit:    profit,
		ROI:       roi,
		SoldAt:    p.now(),
	}, true, nil
}

func (p *Portfolio) Get(dealID string) (entity.VaultPosition, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pos, ok := p.positions[dealID]

	return pos, ok
}

// Positions возвращает копию позиций в порядке поступления.
func (p *Portfolio) Positions() []entity.VaultPosition {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]entity.VaultPosition, 0, len(p.positions))
	for _, pos := range p.positions {
		result = append(result, pos)
	}

	slices.SortFunc(result, func(a, b entity.VaultPosition) int {
		if c := a.DateReceived.Compare(b.DateReceived); c != 0 {
			return c
		}

		return compareStrings(a.DealID, b.DealID)
	})

	return result
}

// ReadyToSell: позиции, у которых срок удержания истёк к моменту now.
func (p *Portfolio) ReadyToSell(now time.Time) []entity.VaultPosition {
	return slices.DeleteFunc(p.Positions(), func(pos entity.VaultPosition) bool {
		return !pos.ReadyToSell(now)
	})
}

// Totals: себестоимость и страховая стоимость всех позиций.
func (p *Portfolio) Totals() (costBasis, insured decimal.Decimal) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.costBasis, p.insured
}

func (p *Portfolio) put(pos entity.VaultPosition) {
	p.positions[pos.DealID] = pos
	p.costBasis = p.costBasis.Add(pos.PurchasePrice)
	p.insured = p.insured.Add(pos.EstimatedValue)
}

func (p *Portfolio) drop(pos entity.VaultPosition) {
	p.costBasis = p.costBasis.Sub(pos.PurchasePrice)
	p.insured = p.insured.Sub(pos.EstimatedValue)
}

func (p *Portfolio) publish() {
	metrics.VaultPositions.Set(float64(len(p.positions)))
	metrics.VaultInsuranceValue.Set(p.insured.InexactFloat64())
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ErrPositionNotFound возвращается, когда позиции с таким DealID нет.
func ErrPositionNotFound(dealID string) error {
	return domain.NewError(errcodes.PositionNotFound, fmt.Sprintf("vault position %s not found", dealID))
}
