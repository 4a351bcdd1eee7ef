package notifier

import (
	"context"
	"log/slog"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/pkg/logx"
)

// LogNotifier пишет оповещения в лог. Используется, когда бот выключен.
type LogNotifier struct{}

func (LogNotifier) NotifyDeal(ctx context.Context, deal entity.Deal) error {
	logger(ctx).Info(FormatDeal(deal), slog.String(logx.FieldDealID, deal.ID))
	return nil
}

func (LogNotifier) NotifyReadyToSell(ctx context.Context, sale lifecycle.ReadySale) error {
	logger(ctx).Info(FormatReadySale(sale), slog.String(logx.FieldDealID, sale.Position.DealID))
	return nil
}
