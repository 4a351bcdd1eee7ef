package capital

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/metrics"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/logx"
)

type DealReader interface {
	Get(ctx context.Context, id string) (entity.Deal, error)
	ListOpen(ctx context.Context) ([]entity.Deal, error)
}

// Tracker: переходы статусов, которые выполняет шлюз после успешной проверки.
type Tracker interface {
	Create(ctx context.Context, deal entity.Deal) (entity.Deal, error)
	MarkApproved(ctx context.Context, id, notes string) (entity.Deal, error)
}

// Allocator: шлюз капитала. Проверка и одобрение выполняются под одной блокировкой,
// поэтому два параллельных одобрения не могут вместе превысить лимиты.
type Allocator struct {
	mu      sync.Mutex
	limits  Limits
	deals   DealReader
	tracker Tracker
}

func NewAllocator(limits Limits, deals DealReader, tracker Tracker) *Allocator {
	return &Allocator{
		limits:  limits,
		deals:   deals,
		tracker: tracker,
	}
}

type ledger struct {
	active       decimal.Decimal
	pending      decimal.Decimal
	activeCount  int
	pendingCount int
}

// CanApprove проверяет, можно ли открыть сделку на amount. Отказ, это (false, причина), а не ошибка.
func (a *Allocator) CanApprove(ctx context.Context, amount decimal.Decimal) (bool, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.ledger(ctx, "")
	if err != nil {
		return false, "", err
	}

	ok, reason := a.check(l, amount)

	return ok, reason, nil
}

// Approve переводит сделку из PENDING в APPROVED, если лимиты позволяют.
func (a *Allocator) Approve(ctx context.Context, id string) (entity.AdmissionDecision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	deal, err := a.deals.Get(ctx, id)
	if err != nil {
		return entity.AdmissionDecision{}, fmt.Errorf("deals.Get: %w", err)
	}

	if deal.Status != value.DealStatusPending {
		return entity.AdmissionDecision{}, domain.NewError(errcodes.InvalidDealStatus,
			fmt.Sprintf("deal %s is %s, only PENDING deals can be approved", id, deal.Status))
	}

	// сама сделка не должна учитываться в своих же лимитах
	l, err := a.ledger(ctx, id)
	if err != nil {
		return entity.AdmissionDecision{}, err
	}

	decision := a.decide(ctx, l, deal)
	if !decision.Allowed {
		return decision, nil
	}

	if _, err := a.tracker.MarkApproved(ctx, id, decision.Reason); err != nil {
		return entity.AdmissionDecision{}, fmt.Errorf("tracker.MarkApproved: %w", err)
	}

	decision.DealID = id

	return decision, nil
}

// Admit создаёт новую сделку и сразу одобряет её, если лимиты позволяют.
// Отклонённая сделка не сохраняется.
func (a *Allocator) Admit(ctx context.Context, deal entity.Deal) (entity.AdmissionDecision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.ledger(ctx, deal.ID)
	if err != nil {
		return entity.AdmissionDecision{}, err
	}

	decision := a.decide(ctx, l, deal)
	if !decision.Allowed {
		return decision, nil
	}

	created, err := a.tracker.Create(ctx, deal)
	if err != nil {
		return entity.AdmissionDecision{}, fmt.Errorf("tracker.Create: %w", err)
	}

	if _, err := a.tracker.MarkApproved(ctx, created.ID, decision.Reason); err != nil {
		return entity.AdmissionDecision{}, fmt.Errorf("tracker.MarkApproved: %w", err)
	}

	decision.DealID = created.ID

	return decision, nil
}

// Status: снимок использования капитала. Ничего не меняет.
func (a *Allocator) Status(ctx context.Context) (entity.CapitalStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.ledger(ctx, "")
	if err != nil {
		return entity.CapitalStatus{}, err
	}

	available := a.limits.TotalAvailable.Sub(l.active).Sub(a.limits.ReserveCash)
	if available.IsNegative() {
		available = decimal.Zero
	}

	var utilization float64
	if a.limits.TotalAvailable.IsPositive() {
		utilization = l.active.Div(a.limits.TotalAvailable).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	return entity.CapitalStatus{
		TotalAvailable:       a.limits.TotalAvailable,
		ActiveExposure:       l.active,
		PendingExposure:      l.pending,
		ReserveCash:          a.limits.ReserveCash,
		AvailableForNewDeals: available,
		MaxTotalExposure:     a.limits.MaxTotalExposure,
		PerDealLimit:         a.limits.EffectivePerDealLimit(),
		ActiveDealCount:      l.activeCount,
		PendingDealCount:     l.pendingCount,
		MaxConcurrent:        a.limits.MaxConcurrentDeals,
		UtilizationPct:       utilization,
	}, nil
}

// UpdateLimits меняет размер капитала: под сделки отводится 80%, лимит на сделку
// пересчитывается из процента позиции, если он задан.
func (a *Allocator) UpdateLimits(ctx context.Context, totalAvailable decimal.Decimal) Limits {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.limits.TotalAvailable = totalAvailable
	a.limits.MaxTotalExposure = totalAvailable.Mul(decimal.NewFromFloat(exposureShareOfTotal)).Round(2)

	if a.limits.MaxPositionPercent > 0 {
		a.limits.PerDealLimit = decimal.Zero
	}

	logger(ctx).Info("capital limits updated",
		slog.String("total-available", a.limits.TotalAvailable.StringFixed(2)),
		slog.String("max-total-exposure", a.limits.MaxTotalExposure.StringFixed(2)),
		slog.String("per-deal-limit", a.limits.EffectivePerDealLimit().StringFixed(2)),
	)

	return a.limits
}

func (a *Allocator) Limits() Limits {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.limits
}

func (a *Allocator) decide(ctx context.Context, l ledger, deal entity.Deal) entity.AdmissionDecision {
	ok, reason := a.check(l, deal.InvestmentAmount)

	result := "approved"
	if !ok {
		result = "rejected"
	}

	metrics.AdmissionDecisions.WithLabelValues(result).Inc()

	logger(ctx).Info("admission decision",
		slog.String(logx.FieldDealID, deal.ID),
		slog.String(logx.FieldAmount, deal.InvestmentAmount.StringFixed(2)),
		slog.Bool("allowed", ok),
		slog.String(logx.FieldReason, reason),
	)

	return entity.AdmissionDecision{
		Allowed: ok,
		Reason:  reason,
		Amount:  deal.InvestmentAmount,
	}
}

// check проверяет лимиты строго по порядку: число сделок, общая экспозиция,
// лимит на сделку, свободный капитал за вычетом резерва.
func (a *Allocator) check(l ledger, amount decimal.Decimal) (bool, string) {
	open := l.activeCount + l.pendingCount
	if open >= a.limits.MaxConcurrentDeals {
		return false, fmt.Sprintf("Already have %d/%d active deals", open, a.limits.MaxConcurrentDeals)
	}

	if exposure := l.active.Add(amount); exposure.GreaterThan(a.limits.MaxTotalExposure) {
		return false, fmt.Sprintf("Would exceed exposure limit: $%s > $%s",
			exposure.StringFixed(2), a.limits.MaxTotalExposure.StringFixed(2))
	}

	if perDeal := a.limits.EffectivePerDealLimit(); amount.GreaterThan(perDeal) {
		return false, fmt.Sprintf("Deal too large: $%s > $%s per-deal limit",
			amount.StringFixed(2), perDeal.StringFixed(2))
	}

	available := a.limits.TotalAvailable.Sub(l.active).Sub(a.limits.ReserveCash)
	if amount.GreaterThan(available) {
		return false, fmt.Sprintf("Insufficient capital: $%s available after $%s reserve",
			available.StringFixed(2), a.limits.ReserveCash.StringFixed(2))
	}

	return true, fmt.Sprintf("Can approve: $%s within limits", amount.StringFixed(2))
}

func (a *Allocator) ledger(ctx context.Context, excludeID string) (ledger, error) {
	deals, err := a.deals.ListOpen(ctx)
	if err != nil {
		return ledger{}, fmt.Errorf("deals.ListOpen: %w", err)
	}

	var l ledger

	for _, d := range deals {
		if d.ID == excludeID {
			continue
		}

		switch d.Status {
		case value.DealStatusApproved:
			l.active = l.active.Add(d.InvestmentAmount)
			l.activeCount++
		case value.DealStatusPending:
			l.pending = l.pending.Add(d.InvestmentAmount)
			l.pendingCount++
		}
	}

	return l, nil
}
