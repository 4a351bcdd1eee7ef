package handler

import (
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"card_arbitrage/internal/domain/value"
	"card_arbitrage/internal/transport/bot/view"
	"card_arbitrage/pkg/logx"
)

// OnDealsCallback листает список сделок. Формат данных: "deals_page:<номер>".
func (h *Handler) OnDealsCallback(ctx *th.Context, query telego.CallbackQuery) error {
	if query.Message == nil {
		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
	}

	var page int

	_, err := fmt.Sscanf(query.Data, view.DealsPagePrefix+":%d", &page)
	if err != nil || page < 1 {
		page = 1
	}

	deals, err := h.deals.List(ctx, value.DealStatusPending)
	if err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText(view.CallbackFailed).WithShowAlert())

		return fmt.Errorf("deals.List: %w", err)
	}

	text, page, total := view.DealsPage(deals, page)

	_, err = ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      tu.ID(query.Message.GetChat().ID),
		MessageID:   query.Message.GetMessageID(),
		Text:        text,
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: createPaginationKeyboard(page, total),
	})
	if err != nil {
		// Telegram отвечает ошибкой, если текст не изменился
		logger(ctx).Debug("EditMessageText", logx.Error(err))
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}
