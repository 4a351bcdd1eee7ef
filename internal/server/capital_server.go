package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/capital"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/httpx/reply"
	"card_arbitrage/pkg/httpx/req"
	"card_arbitrage/pkg/rest"
)

type capitalService interface {
	Status(ctx context.Context) (entity.CapitalStatus, error)
	CanApprove(ctx context.Context, amount decimal.Decimal) (bool, string, error)
	UpdateLimits(ctx context.Context, totalAvailable decimal.Decimal) capital.Limits
	Limits() capital.Limits
}

type CapitalServer struct {
	capitalService capitalService
}

func NewCapitalServer(capitalService capitalService) CapitalServer {
	return CapitalServer{
		capitalService: capitalService,
	}
}

func (s CapitalServer) getV1Capital(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	status, err := s.capitalService.Status(ctx)
	if err != nil {
		return fmt.Errorf("capitalService.Status: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCapitalStatus(status))

	return nil
}

func (s CapitalServer) getV1CapitalCheck(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	amount, err := parseMoney("amount", r.URL.Query().Get("amount"))
	if err != nil {
		return err
	}

	if !amount.IsPositive() {
		return domain.NewError(errcodes.InvalidPrice, "amount must be positive")
	}

	allowed, reason, err := s.capitalService.CanApprove(ctx, amount)
	if err != nil {
		return fmt.Errorf("capitalService.CanApprove: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.CapitalCheck{
		Amount:  money(amount),
		Allowed: allowed,
		Reason:  reason,
	})

	return nil
}

func (s CapitalServer) getV1CapitalLimits(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTCapitalLimits(s.capitalService.Limits()))

	return nil
}

func (s CapitalServer) putV1CapitalLimits(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CapitalLimitsRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	total, err := parseMoney("totalAvailable", request.TotalAvailable)
	if err != nil {
		return err
	}

	if !total.IsPositive() {
		return domain.NewError(errcodes.InvalidPrice, "totalAvailable must be positive")
	}

	limits := s.capitalService.UpdateLimits(ctx, total)

	reply.JSON(ctx, w, http.StatusOK, newRESTCapitalLimits(limits))

	return nil
}
