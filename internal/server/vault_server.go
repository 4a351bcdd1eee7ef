package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.appkode.ru/pub/go/failure"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/internal/domain/service/vault"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/httpx/reply"
	"card_arbitrage/pkg/httpx/req"
	"card_arbitrage/pkg/rest"
)

type vaultPortfolio interface {
	Get(dealID string) (entity.VaultPosition, bool)
	Report(quoter vault.Quoter, projector vault.Projector) vault.Report
	GradingOpportunities(minROI float64, projector vault.Projector, quoter vault.Quoter) []vault.GradingOpportunity
	RebalancingSuggestions(target map[value.AssetClass]float64, quoter vault.Quoter) []vault.RebalanceSuggestion
}

// vaultPricing: котировки и проекции грейдинга по текущему снимку каталога.
type vaultPricing interface {
	vault.Quoter
	vault.Projector
}

type vaultTracker interface {
	CheckReadyToSell(now time.Time) []lifecycle.ReadySale
	IntakePosition(ctx context.Context, pos entity.VaultPosition) (entity.VaultPosition, error)
}

type VaultServer struct {
	portfolio vaultPortfolio
	pricing   vaultPricing
	tracker   vaultTracker
	now       func() time.Time
}

func NewVaultServer(portfolio vaultPortfolio, pricing vaultPricing, tracker vaultTracker) VaultServer {
	return VaultServer{
		portfolio: portfolio,
		pricing:   pricing,
		tracker:   tracker,
		now:       time.Now,
	}
}

func (s VaultServer) WithClock(now func() time.Time) VaultServer {
	s.now = now
	return s
}

func (s VaultServer) getV1Vault(w http.ResponseWriter, r *http.Request) error {
	report := s.portfolio.Report(s.pricing, s.pricing)

	reply.JSON(r.Context(), w, http.StatusOK, newRESTVaultReport(report))

	return nil
}

func (s VaultServer) getV1VaultReady(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTReadySales(s.tracker.CheckReadyToSell(s.now())))

	return nil
}

func (s VaultServer) postV1VaultPositions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.VaultPositionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	pos, err := newDomainVaultPosition(request)
	if err != nil {
		return fmt.Errorf("newDomainVaultPosition: %w", err)
	}

	pos, err = s.tracker.IntakePosition(ctx, pos)
	if err != nil {
		return fmt.Errorf("tracker.IntakePosition: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTPosition(pos))

	return nil
}

func (s VaultServer) getV1VaultPosition(w http.ResponseWriter, r *http.Request) error {
	id, err := dealID(r)
	if err != nil {
		return err
	}

	pos, ok := s.portfolio.Get(id)
	if !ok {
		return vault.ErrPositionNotFound(id)
	}

	reply.JSON(r.Context(), w, http.StatusOK, newRESTPosition(pos))

	return nil
}

func (s VaultServer) getV1VaultGradingOpportunities(w http.ResponseWriter, r *http.Request) error {
	minROI := vault.DefaultGradingMinROI

	if raw := r.URL.Query().Get("minRoi"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return failure.NewInvalidArgumentError(
				fmt.Errorf("strconv.ParseFloat: %w", err).Error(),
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription("minRoi must be a number"),
			)
		}

		minROI = parsed
	}

	opportunities := s.portfolio.GradingOpportunities(minROI, s.pricing, s.pricing)

	reply.JSON(r.Context(), w, http.StatusOK, rest.GradingOpportunities{
		Opportunities: newRESTGradingOpportunities(opportunities),
	})

	return nil
}

func (s VaultServer) postV1VaultRebalance(w http.ResponseWriter, r *http.Request) error {
	var request rest.RebalanceRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	target := newDomainTargetAllocation(request.Target)

	var total float64

	for class, share := range target {
		if !class.IsValid() {
			return failure.NewInvalidArgumentError(
				"unknown asset class",
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription(fmt.Sprintf("unknown asset class %q", class)),
			)
		}

		total += share
	}

	if total > 100 {
		return failure.NewInvalidArgumentError(
			"target allocation above 100%",
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(fmt.Sprintf("target allocation sums to %.2f%%", total)),
		)
	}

	suggestions := s.portfolio.RebalancingSuggestions(target, s.pricing)

	reply.JSON(r.Context(), w, http.StatusOK, newRESTRebalanceSuggestions(suggestions))

	return nil
}
