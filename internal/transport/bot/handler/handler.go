package handler

import (
	"context"
	"time"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/domain/value"
)

type capitalService interface {
	Status(ctx context.Context) (entity.CapitalStatus, error)
	Approve(ctx context.Context, id string) (entity.AdmissionDecision, error)
}

type dealTracker interface {
	List(ctx context.Context, status value.DealStatus) ([]entity.Deal, error)
	Reject(ctx context.Context, id, reason string) (entity.Deal, error)
	CheckReadyToSell(now time.Time) []lifecycle.ReadySale
}

type vaultReporter interface {
	Report(quoter vault.Quoter, projector vault.Projector) vault.Report
}

type vaultPricing interface {
	vault.Quoter
	vault.Projector
}

// Handler обслуживает команды оператора.
type Handler struct {
	capital capitalService
	deals   dealTracker
	vault   vaultReporter
	pricing vaultPricing
	now     func() time.Time
}

func New(capital capitalService, deals dealTracker, vault vaultReporter, pricing vaultPricing) *Handler {
	return &Handler{
		capital: capital,
		deals:   deals,
		vault:   vault,
		pricing: pricing,
		now:     time.Now,
	}
}
