package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/deal"
	"card_arbitrage/pkg/application/modules"
	"card_arbitrage/pkg/logx"
)

const (
	TypeListingEvaluate = "listing:evaluate"
	TypeDealNotify      = "deal:notify"

	QueueListings      = "listings"
	QueueNotifications = "notifications"

	notifyMaxRetry = 5
	notifyTimeout  = 30 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// Queues: приоритеты очередей для asynq-сервера.
func Queues() modules.AsynqQueues {
	return modules.AsynqQueues{
		QueueListings:      3, //nolint:mnd // skip
		QueueNotifications: 1,
	}
}

func NewListingTask(listing entity.Listing) (*asynq.Task, error) {
	payload, err := json.Marshal(listing)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeListingEvaluate, payload, asynq.Queue(QueueListings)), nil
}

func NewDealNotifyTask(d entity.Deal) (*asynq.Task, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeDealNotify, payload,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(notifyMaxRetry),
		asynq.Timeout(notifyTimeout),
	), nil
}

type Evaluator interface {
	Evaluate(ctx context.Context, listing entity.Listing) (deal.Evaluation, error)
}

type DealSender interface {
	NotifyDeal(ctx context.Context, d entity.Deal) error
}

// Handlers обрабатывают задачи из очередей.
type Handlers struct {
	evaluator Evaluator
	sender    DealSender
}

func NewHandlers(evaluator Evaluator, sender DealSender) *Handlers {
	return &Handlers{
		evaluator: evaluator,
		sender:    sender,
	}
}

func (h *Handlers) AsynqHandlers() []modules.AsynqHandler {
	handlers := []modules.AsynqHandler{
		{Pattern: TypeListingEvaluate, Handle: h.HandleListingEvaluate},
	}

	if h.sender != nil {
		handlers = append(handlers, modules.AsynqHandler{Pattern: TypeDealNotify, Handle: h.HandleDealNotify})
	}

	return handlers
}

// HandleListingEvaluate оценивает лот из очереди. Невалидный лот не переотправляется.
func (h *Handlers) HandleListingEvaluate(ctx context.Context, task *asynq.Task) error {
	var listing entity.Listing
	if err := json.Unmarshal(task.Payload(), &listing); err != nil {
		return fmt.Errorf("json.Unmarshal: %w: %w", err, asynq.SkipRetry)
	}

	evaluation, err := h.evaluator.Evaluate(ctx, listing)
	if err != nil {
		logger(ctx).Error("queued listing evaluation failed",
			slog.String(logx.FieldTaskType, task.Type()),
			slog.String(logx.FieldCardName, listing.CardName),
			logx.Error(err),
		)

		return fmt.Errorf("evaluator.Evaluate: %w: %w", err, asynq.SkipRetry)
	}

	logger(ctx).Debug("queued listing evaluated",
		slog.String(logx.FieldTaskType, task.Type()),
		slog.String(logx.FieldRecommendation, evaluation.Deal.Recommendation.String()),
		slog.Bool("duplicate", evaluation.Duplicate),
	)

	return nil
}

func (h *Handlers) HandleDealNotify(ctx context.Context, task *asynq.Task) error {
	var d entity.Deal
	if err := json.Unmarshal(task.Payload(), &d); err != nil {
		return fmt.Errorf("json.Unmarshal: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.sender.NotifyDeal(ctx, d); err != nil {
		return fmt.Errorf("sender.NotifyDeal: %w", err)
	}

	return nil
}
