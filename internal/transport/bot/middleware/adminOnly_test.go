package middleware_test

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/transport/bot/middleware"
)

func TestSenderID(t *testing.T) {
	testCases := []struct {
		name   string
		update telego.Update
		id     int64
	}{
		{
			name:   "Message",
			update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 42}}},
			id:     42,
		},
		{
			name:   "Message without sender",
			update: telego.Update{Message: &telego.Message{}},
		},
		{
			name:   "Callback",
			update: telego.Update{CallbackQuery: &telego.CallbackQuery{From: telego.User{ID: 7}}},
			id:     7,
		},
		{
			name: "Other update",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.id, middleware.SenderID(tc.update))
		})
	}
}
