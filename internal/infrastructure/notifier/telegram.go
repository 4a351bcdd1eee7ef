package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"card_arbitrage/internal/domain/entity"
	"card_arbitrage/internal/domain/service/lifecycle"
	"card_arbitrage/pkg/logx"
)

// TelegramBot отправляет оповещения в один чат простыми текстовыми строками.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (b *TelegramBot) NotifyDeal(ctx context.Context, deal entity.Deal) error {
	if err := b.SendText(ctx, FormatDeal(deal)); err != nil {
		return err
	}

	logger(ctx).Debug("deal notification sent", slog.String(logx.FieldDealID, deal.ID))

	return nil
}

func (b *TelegramBot) NotifyReadyToSell(ctx context.Context, sale lifecycle.ReadySale) error {
	return b.SendText(ctx, FormatReadySale(sale))
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// FormatDeal: одна строка с сутью сделки.
func FormatDeal(deal entity.Deal) string {
	parts := []string{
		fmt.Sprintf("%s: %s (%s)", deal.Recommendation, deal.Listing.CardName, deal.Listing.SetName),
		"price $" + deal.Listing.RawPrice.StringFixed(2),
		"EV $" + deal.ExpectedValue.StringFixed(2),
		fmt.Sprintf("ROI %.1f%%", deal.ROI),
		fmt.Sprintf("confidence %.2f", deal.Confidence),
	}

	if deal.Status != "" {
		parts = append(parts, "status "+deal.Status.String())
	}

	if deal.Listing.URL != "" {
		parts = append(parts, deal.Listing.URL)
	}

	return strings.Join(parts, " | ")
}

func FormatReadySale(sale lifecycle.ReadySale) string {
	pos := sale.Position

	label := pos.CardName
	if pos.Grade != "" {
		label = fmt.Sprintf("%s %s %s", pos.CardName, pos.GradingCompany, pos.Grade)
	}

	return fmt.Sprintf("READY TO SELL: %s | held %d days | list at $%s | cert %s",
		label, sale.DaysHeld, sale.SuggestedPrice.StringFixed(2), pos.CertNumber)
}
