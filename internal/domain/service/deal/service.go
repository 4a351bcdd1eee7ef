package deal

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"card_arbitrage/internal/domain"
	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/internal/domain/service/condition"
	"card_arbitrage/internal/domain/service/reprint"
	"card_arbitrage/internal/domain/service/scoring"
	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/metrics"
	"card_arbitrage/pkg/errcodes"
	"card_arbitrage/pkg/logx"
)

const (
	processedTTL     = time.Hour
	processedCleanup = 10 * time.Minute
)

// Tracker принимает сделки с рекомендацией на покупку.
type Tracker interface {
	Create(ctx context.Context, deal entity.Deal) (entity.Deal, error)
}

// Admitter сразу одобряет сделку, если позволяет капитал.
type Admitter interface {
	Admit(ctx context.Context, deal entity.Deal) (entity.AdmissionDecision, error)
}

type Notifier interface {
	NotifyDeal(ctx context.Context, deal entity.Deal) error
}

// Evaluation: результат обработки одного лота.
type Evaluation struct {
	Deal      entity.Deal               `json:"deal"`
	Filtered  bool                      `json:"filtered"`
	Tracked   bool                      `json:"tracked"`
	Duplicate bool                      `json:"duplicate"`
	Admission *entity.AdmissionDecision `json:"admission,omitempty"`
}

type Service struct {
	assessor *condition.Assessor
	reprint  *reprint.Model
	scorer   *scoring.Scorer
	catalog  atomic.Pointer[catalog.Catalog]

	tracker     Tracker
	admitter    Admitter
	notifier    Notifier
	autoApprove bool

	processedCache *cache.Cache
	validate       *validator.Validate
}

func NewService(
	assessor *condition.Assessor,
	reprintModel *reprint.Model,
	scorer *scoring.Scorer,
	prices *catalog.Catalog,
	tracker Tracker,
) *Service {
	s := &Service{
		assessor:       assessor,
		reprint:        reprintModel,
		scorer:         scorer,
		tracker:        tracker,
		processedCache: cache.New(processedTTL, processedCleanup),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}

	s.catalog.Store(prices)

	return s
}

func (s *Service) WithNotifier(notifier Notifier) *Service {
	s.notifier = notifier
	return s
}

// WithAutoApprove включает одобрение покупок сразу при оценке через шлюз капитала.
func (s *Service) WithAutoApprove(admitter Admitter) *Service {
	s.admitter = admitter
	s.autoApprove = admitter != nil

	return s
}

// SetCatalog подменяет снимок цен. Оценки, уже идущие в этот момент, досчитываются на старом снимке.
func (s *Service) SetCatalog(c *catalog.Catalog) {
	s.catalog.Store(c)
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// Evaluate проводит лот через порог цены, фильтр переизданий, оценку состояния и скоринг.
// Покупки передаются в трекер. Повторный лот возвращает сохранённый результат.
func (s *Service) Evaluate(ctx context.Context, listing entity.Listing) (Evaluation, error) {
	start := time.Now()

	if err := s.validateListing(ctx, listing); err != nil {
		metrics.EvaluationErrors.Inc()
		return Evaluation{}, err
	}

	listing = listing.Normalized()
	key := listing.Key()

	if cached, found := s.processedCache.Get(key); found {
		evaluation, _ := cached.(Evaluation)
		evaluation.Duplicate = true

		return evaluation, nil
	}

	log := logger(ctx).With(
		slog.String(logx.FieldListingID, key),
		slog.String(logx.FieldCardName, listing.CardName),
		slog.String(logx.FieldSetName, listing.SetName),
	)

	risk := s.reprint.Score(listing.CardName)

	// порог цены проверяется раньше фильтра: дешёвый лот всегда уходит с below_threshold
	if !s.scorer.BelowThreshold(listing) {
		if evaluation, filtered := s.filter(listing, risk); filtered {
			metrics.ListingsFiltered.WithLabelValues(value.ReasonReprintRisk.String()).Inc()
			log.Info("listing filtered", slog.String(logx.FieldReason, evaluation.Deal.Reason.Message))

			s.processedCache.Set(key, evaluation, cache.DefaultExpiration)

			return evaluation, nil
		}
	}

	assessment := s.assessor.AssessListing(listing)

	var entry *entity.CatalogEntry
	if e, ok := s.catalog.Load().GetBasePrice(listing.CardName, listing.SetName); ok {
		entry = &e
	}

	evaluation := Evaluation{
		Deal: s.scorer.Score(listing, assessment, entry, risk),
	}

	if evaluation.Deal.Recommendation.IsBuy() {
		if err := s.track(ctx, &evaluation); err != nil {
			metrics.EvaluationErrors.Inc()
			return Evaluation{}, err
		}
	}

	metrics.ListingsEvaluated.WithLabelValues(evaluation.Deal.Recommendation.String()).Inc()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())

	log.Info("listing evaluated",
		slog.String(logx.FieldRecommendation, evaluation.Deal.Recommendation.String()),
		slog.Float64(logx.FieldROI, evaluation.Deal.ROI),
		slog.String(logx.FieldReason, evaluation.Deal.Reason.Message),
		slog.Bool("tracked", evaluation.Tracked),
	)

	s.processedCache.Set(key, evaluation, cache.DefaultExpiration)

	if evaluation.Tracked {
		s.notify(ctx, evaluation.Deal)
	}

	return evaluation, nil
}

// BatchItem: результат одного лота в пакете. Ошибка одного лота не прерывает остальные.
type BatchItem struct {
	Index      int         `json:"index"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Evaluated int         `json:"evaluated"`
	Failed    int         `json:"failed"`
}

func (s *Service) EvaluateBatch(ctx context.Context, listings []entity.Listing) BatchResult {
	result := BatchResult{Items: make([]BatchItem, 0, len(listings))}

	for i, listing := range listings {
		if ctx.Err() != nil {
			result.Items = append(result.Items, BatchItem{Index: i, Error: ctx.Err().Error()})
			result.Failed++

			continue
		}

		evaluation, err := s.safeEvaluate(ctx, listing)
		if err != nil {
			logger(ctx).Error("batch item failed", slog.Int("index", i), logx.Error(err))

			result.Items = append(result.Items, BatchItem{Index: i, Error: err.Error()})
			result.Failed++

			continue
		}

		result.Items = append(result.Items, BatchItem{Index: i, Evaluation: &evaluation})
		result.Evaluated++
	}

	logger(ctx).Info("batch evaluated",
		slog.Int("total", len(listings)),
		slog.Int("evaluated", result.Evaluated),
		slog.Int("failed", result.Failed),
	)

	return result
}

func (s *Service) safeEvaluate(ctx context.Context, listing entity.Listing) (evaluation Evaluation, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.EvaluationErrors.Inc()
			logger(ctx).Error("listing evaluation panicked",
				slog.Any("panic", r),
				slog.String(logx.FieldStack, string(debug.Stack())),
			)

			err = domain.NewError(errcodes.InternalServerError, fmt.Sprintf("evaluation panicked: %v", r))
		}
	}()

	return s.Evaluate(ctx, listing)
}

// filter отсекает известные переиздания и карты с риском выше порога до скоринга.
func (s *Service) filter(listing entity.Listing, risk float64) (Evaluation, bool) {
	text := strings.Join([]string{listing.CardName, listing.SetName, listing.Title}, " ")

	var message string

	if phrase, ok := s.reprint.Blacklisted(text); ok {
		message = fmt.Sprintf("known reprint product %q", phrase)
	} else if s.reprint.Exceeds(risk) {
		message = fmt.Sprintf("reprint risk %.2f above %.2f cutoff", risk, s.reprint.Cutoff())
	} else {
		return Evaluation{}, false
	}

	return Evaluation{
		Filtered: true,
		Deal: entity.Deal{
			Listing:          listing,
			ReprintRisk:      risk,
			Recommendation:   value.RecommendationPass,
			Reason:           entity.Reason{Code: value.ReasonReprintRisk, Message: message},
			InvestmentAmount: listing.RawPrice.Add(s.scorer.Config().GradingCost),
		},
	}, true
}

func (s *Service) track(ctx context.Context, evaluation *Evaluation) error {
	if !s.autoApprove {
		created, err := s.tracker.Create(ctx, evaluation.Deal)
		if err != nil {
			return fmt.Errorf("tracker.Create: %w", err)
		}

		evaluation.Deal = created
		evaluation.Tracked = true

		return nil
	}

	decision, err := s.admitter.Admit(ctx, evaluation.Deal)
	if err != nil {
		return fmt.Errorf("admitter.Admit: %w", err)
	}

	evaluation.Admission = &decision

	if decision.Allowed {
		evaluation.Deal.ID = decision.DealID
		evaluation.Deal.Status = value.DealStatusApproved
		evaluation.Tracked = true
	}

	return nil
}

func (s *Service) notify(ctx context.Context, deal entity.Deal) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.NotifyDeal(ctx, deal); err != nil {
		logger(ctx).Warn("deal notification failed",
			slog.String(logx.FieldDealID, deal.ID),
			logx.Error(err),
		)
	}
}

func (s *Service) validateListing(ctx context.Context, listing entity.Listing) error {
	if err := s.validate.StructCtx(ctx, listing); err != nil {
		return domain.WrapError(err, errcodes.InvalidListing, "invalid listing")
	}

	if !listing.RawPrice.IsPositive() {
		return domain.NewError(errcodes.InvalidPrice,
			fmt.Sprintf("raw price must be positive, got %s", listing.RawPrice.String()))
	}

	return nil
}
