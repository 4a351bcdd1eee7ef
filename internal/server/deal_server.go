package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"git.appkode.ru/pub/go/failure"
	"github.com/samber/lo"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/deal"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/httpx/reply"
	"card_arbitrage/pkg/httpx/req"
	"card_arbitrage/pkg/rest"
)

type dealEvaluator interface {
	Evaluate(ctx context.Context, listing entity.Listing) (deal.Evaluation, error)
	EvaluateBatch(ctx context.Context, listings []entity.Listing) deal.BatchResult
}

type dealTracker interface {
	Get(ctx context.Context, id string) (entity.Deal, error)
	List(ctx context.Context, status value.DealStatus) ([]entity.Deal, error)
	UpdateStatus(ctx context.Context, id string, status value.DealStatus, upd lifecycle.Update) (entity.Deal, error)
	Reject(ctx context.Context, id, reason string) (entity.Deal, error)
}

type dealApprover interface {
	Approve(ctx context.Context, id string) (entity.AdmissionDecision, error)
}

type DealServer struct {
	evaluator dealEvaluator
	tracker   dealTracker
	approver  dealApprover
}

func NewDealServer(evaluator dealEvaluator, tracker dealTracker, approver dealApprover) DealServer {
	return DealServer{
		evaluator: evaluator,
		tracker:   tracker,
		approver:  approver,
	}
}

func (s DealServer) postV1ListingEvaluate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.Listing

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	listing, err := newDomainListing(request)
	if err != nil {
		return fmt.Errorf("newDomainListing: %w", err)
	}

	evaluation, err := s.evaluator.Evaluate(ctx, listing)
	if err != nil {
		return fmt.Errorf("evaluator.Evaluate: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTEvaluation(evaluation))

	return nil
}

// postV1ListingEvaluateBatch разбирает все лоты до оценки: один неразборчивый лот отклоняет весь запрос.
func (s DealServer) postV1ListingEvaluateBatch(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.EvaluateBatchRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	listings := make([]entity.Listing, 0, len(request.Listings))

	for i, l := range request.Listings {
		listing, err := newDomainListing(l)
		if err != nil {
			return fmt.Errorf("listings[%d]: %w", i, err)
		}

		listings = append(listings, listing)
	}

	result := s.evaluator.EvaluateBatch(ctx, listings)

	reply.JSON(ctx, w, http.StatusOK, newRESTBatchResult(result))

	return nil
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var status value.DealStatus

	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := value.ParseDealStatus(strings.ToUpper(raw))
		if err != nil {
			return domain.WrapError(err, errcodes.InvalidDealStatus, "invalid status filter")
		}

		status = parsed
	}

	deals, err := s.tracker.List(ctx, status)
	if err != nil {
		return fmt.Errorf("tracker.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Deals{
		Deals: lo.Map(deals, func(d entity.Deal, _ int) rest.Deal { return newRESTDeal(d) }),
	})

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealID(r)
	if err != nil {
		return err
	}

	d, err := s.tracker.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("tracker.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(d))

	return nil
}

// postV1DealApprove отвечает 409, если лимиты капитала не позволяют одобрить сделку.
func (s DealServer) postV1DealApprove(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealID(r)
	if err != nil {
		return err
	}

	decision, err := s.approver.Approve(ctx, id)
	if err != nil {
		return fmt.Errorf("approver.Approve: %w", err)
	}

	if !decision.Allowed {
		return domain.NewError(errcodes.CapitalLimitExceeded, decision.Reason)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTAdmission(decision))

	return nil
}

func (s DealServer) postV1DealReject(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealID(r)
	if err != nil {
		return err
	}

	var request rest.RejectRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	d, err := s.tracker.Reject(ctx, id, request.Reason)
	if err != nil {
		return fmt.Errorf("tracker.Reject: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(d))

	return nil
}

func (s DealServer) postV1DealStatus(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := dealID(r)
	if err != nil {
		return err
	}

	var request rest.StatusUpdateRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	status, upd, err := newDomainStatusUpdate(request)
	if err != nil {
		return fmt.Errorf("newDomainStatusUpdate: %w", err)
	}

	if status == value.DealStatusApproved {
		return s.approveByStatus(w, r, id)
	}

	d, err := s.tracker.UpdateStatus(ctx, id, status, upd)
	if err != nil {
		return fmt.Errorf("tracker.UpdateStatus: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(d))

	return nil
}

// approveByStatus проводит APPROVED из смены статуса через шлюз капитала, как и /approve.
func (s DealServer) approveByStatus(w http.ResponseWriter, r *http.Request, id string) error {
	ctx := r.Context()

	decision, err := s.approver.Approve(ctx, id)
	if err != nil {
		return fmt.Errorf("approver.Approve: %w", err)
	}

	if !decision.Allowed {
		return domain.NewError(errcodes.CapitalLimitExceeded, decision.Reason)
	}

	d, err := s.tracker.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("tracker.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(d))

	return nil
}

func dealID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", failure.NewInvalidArgumentError(
			"empty deal id",
			failure.WithCode(errcodes.InvalidDealID),
			failure.WithDescription("deal id is required"),
		)
	}

	return id, nil
}
