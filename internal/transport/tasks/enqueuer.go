package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/pkg/logx"
)

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer ставит задачи в очередь. Оповещение о сделке уходит через очередь,
// поэтому оценка лота не ждёт Telegram.
type Enqueuer struct {
	client TaskEnqueuer
}

func NewEnqueuer(client TaskEnqueuer) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) NotifyDeal(ctx context.Context, d entity.Deal) error {
	task, err := NewDealNotifyTask(d)
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("client.EnqueueContext: %w", err)
	}

	logger(ctx).Debug("deal notification enqueued",
		slog.String(logx.FieldDealID, d.ID),
		slog.String("task-id", info.ID),
	)

	return nil
}

func (e *Enqueuer) EnqueueListing(ctx context.Context, listing entity.Listing) (string, error) {
	task, err := NewListingTask(listing)
	if err != nil {
		return "", err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("client.EnqueueContext: %w", err)
	}

	return info.ID, nil
}
