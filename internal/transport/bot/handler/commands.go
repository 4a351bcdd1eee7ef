package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/transport/bot/view"
	"card_arbitrage/pkg/logx"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	status, err := h.capital.Status(ctx)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, "capital.Status", err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Capital(status))
}

func (h *Handler) OnDeals(ctx *th.Context, msg telego.Message) error {
	deals, err := h.deals.List(ctx, value.DealStatusPending)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, "deals.List", err)
	}

	text, page, total := view.DealsPage(deals, 1)

	_, err = ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      tu.ID(msg.Chat.ID),
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: createPaginationKeyboard(page, total),
	})

	return err
}

func (h *Handler) OnApprove(ctx *th.Context, msg telego.Message) error {
	args := view.CommandArgs(msg.Text)
	if len(args) == 0 {
		return h.sendHTML(ctx, msg.Chat.ID, view.ApproveUsage)
	}

	decision, err := h.capital.Approve(ctx, args[0])
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, "capital.Approve", err)
	}

	logger(ctx).Info("deal approved from bot",
		slog.String(logx.FieldDealID, args[0]),
		slog.Bool("allowed", decision.Allowed),
	)

	return h.sendHTML(ctx, msg.Chat.ID, view.Approved(decision))
}

func (h *Handler) OnReject(ctx *th.Context, msg telego.Message) error {
	args := view.CommandArgs(msg.Text)
	if len(args) == 0 {
		return h.sendHTML(ctx, msg.Chat.ID, view.RejectUsage)
	}

	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = "rejected from bot"
	}

	deal, err := h.deals.Reject(ctx, args[0], reason)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, "deals.Reject", err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Rejected(deal))
}

func (h *Handler) OnVault(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Vault(h.vault.Report(h.pricing, h.pricing)))
}

func (h *Handler) OnReady(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.ReadySales(h.deals.CheckReadyToSell(h.now())))
}

func createPaginationKeyboard(page, totalPages int) *telego.InlineKeyboardMarkup {
	var buttons []telego.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tu.InlineKeyboardButton("⬅️").
			WithCallbackData(fmt.Sprintf("%s:%d", view.DealsPagePrefix, page-1)))
	}

	buttons = append(buttons, tu.InlineKeyboardButton(fmt.Sprintf("%d / %d", page, totalPages)).
		WithCallbackData("noop"))

	if page < totalPages {
		buttons = append(buttons, tu.InlineKeyboardButton("➡️").
			WithCallbackData(fmt.Sprintf("%s:%d", view.DealsPagePrefix, page+1)))
	}

	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(buttons...),
	)
}

// fail сообщает оператору об ошибке. Ошибка уже залогирована и дальше не передаётся.
func (h *Handler) fail(ctx *th.Context, chatID int64, op string, err error) error {
	logger(ctx).Error(op, logx.Error(err))

	text := view.RequestFailed + ": " + err.Error()

	return h.send(ctx, chatID, text)
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    tu.ID(chatID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	})

	return err
}

func (h *Handler) send(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID: tu.ID(chatID),
		Text:   text,
	})

	return err
}
