package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"

	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/pkg/logx"
)

const (
	DefaultSweepSchedule   = "@every 1h"
	DefaultRefreshSchedule = "@every 15m"

	// повторное напоминание о той же позиции не чаще раза в сутки
	remindInterval = 24 * time.Hour
)

type ReadyChecker interface {
	CheckReadyToSell(now time.Time) []lifecycle.ReadySale
}

type SaleNotifier interface {
	NotifyReadyToSell(ctx context.Context, sale lifecycle.ReadySale) error
}

// VaultSweeper по расписанию ищет позиции с истёкшим сроком удержания
// и при необходимости обновляет снимок каталога.
type VaultSweeper struct {
	checker   ReadyChecker
	notifier  SaleNotifier
	refresher *CatalogRefresher

	sweepSchedule   string
	refreshSchedule string
	notified        *cache.Cache
	now             func() time.Time

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewVaultSweeper(checker ReadyChecker, notifier SaleNotifier) *VaultSweeper {
	return &VaultSweeper{
		checker:         checker,
		notifier:        notifier,
		sweepSchedule:   DefaultSweepSchedule,
		refreshSchedule: DefaultRefreshSchedule,
		notified:        cache.New(remindInterval, time.Hour),
		now:             time.Now,
	}
}

func (w *VaultSweeper) WithSchedule(sweep string) *VaultSweeper {
	if sweep != "" {
		w.sweepSchedule = sweep
	}

	return w
}

// WithCatalogRefresh добавляет задачу обновления каталога.
func (w *VaultSweeper) WithCatalogRefresh(refresher *CatalogRefresher, schedule string) *VaultSweeper {
	w.refresher = refresher
	if schedule != "" {
		w.refreshSchedule = schedule
	}

	return w
}

func (w *VaultSweeper) WithClock(now func() time.Time) *VaultSweeper {
	w.now = now
	return w
}

func (w *VaultSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("sweeper is already running")
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(sweepCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("sweeper stopped with error", logx.Error(err))
		}
	}()

	return nil
}

func (w *VaultSweeper) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning возвращает текущий статус
func (w *VaultSweeper) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

// Run блокируется до отмены контекста. Задачи, выполняющиеся в момент остановки, дорабатывают.
func (w *VaultSweeper) Run(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc(w.sweepSchedule, func() { w.Sweep(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", w.sweepSchedule, err)
	}

	if w.refresher != nil {
		_, err := c.AddFunc(w.refreshSchedule, func() {
			if err := w.refresher.Refresh(ctx); err != nil {
				logger(ctx).Error("catalog refresh failed", logx.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("cron.AddFunc(%q): %w", w.refreshSchedule, err)
		}
	}

	logger(ctx).Info("vault sweeper started",
		slog.String("sweep-schedule", w.sweepSchedule),
		slog.Bool("catalog-refresh", w.refresher != nil),
	)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	logger(ctx).Info("vault sweeper stopped")

	return ctx.Err()
}

// Sweep отправляет напоминания о позициях, готовых к продаже. Возвращает число отправленных.
func (w *VaultSweeper) Sweep(ctx context.Context) int {
	ready := w.checker.CheckReadyToSell(w.now())

	var sent int

	for _, sale := range ready {
		id := sale.Position.DealID
		if _, found := w.notified.Get(id); found {
			continue
		}

		if err := w.notifier.NotifyReadyToSell(ctx, sale); err != nil {
			logger(ctx).Error("ready to sell notification failed",
				slog.String(logx.FieldDealID, id),
				logx.Error(err),
			)

			continue
		}

		w.notified.Set(id, true, cache.DefaultExpiration)
		sent++
	}

	if len(ready) > 0 {
		logger(ctx).Info("vault sweep completed", slog.Int("ready", len(ready)), slog.Int("notified", sent))
	}

	return sent
}
