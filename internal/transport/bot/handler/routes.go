package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"card_arbitrage/internal/transport/bot/middleware"
	"card_arbitrage/internal/transport/bot/view"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnDeals, th.CommandEqual("deals"))
	adminGroup.HandleMessage(h.OnApprove, th.CommandEqual("approve"))
	adminGroup.HandleMessage(h.OnReject, th.CommandEqual("reject"))
	adminGroup.HandleMessage(h.OnVault, th.CommandEqual("vault"))
	adminGroup.HandleMessage(h.OnReady, th.CommandEqual("ready"))

	cbGroup := bh.Group(th.AnyCallbackQuery())
	cbGroup.Use(middleware.AdminOnly(adminID))

	cbGroup.HandleCallbackQuery(h.OnDealsCallback, th.CallbackDataPrefix(view.DealsPagePrefix))
}
