package pricefeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"card_arbitrage/internal/domain/service/catalog"
	"card_arbitrage/internal/infrastructure/pricefeed"
)

func TestFeedLoad(t *testing.T) {
	testCases := []struct {
		name    string
		token   string
		status  int
		body    string
		prices  map[catalog.Key]string
		wantErr error
		errText string
	}{
		{
			name:   "Prices",
			token:  "secret",
			status: http.StatusOK,
			body: `{"prices":[
				{"cardName":"Lugia","setName":"Neo Genesis","price":"1100.50"},
				{"cardName":"Charizard","setName":"Base Set","price":"0"},
				{"cardName":"","setName":"Base Set","price":"10"}
			]}`,
			prices: map[catalog.Key]string{
				catalog.NewKey("lugia", "neo genesis"): "1100.5",
			},
		},
		{
			name:    "Unauthorized",
			token:   "wrong",
			status:  http.StatusUnauthorized,
			wantErr: pricefeed.ErrTokenRejected,
		},
		{
			name:    "Server error",
			token:   "secret",
			status:  http.StatusInternalServerError,
			errText: "unexpected status 500",
		},
		{
			name:    "Broken document",
			token:   "secret",
			status:  http.StatusOK,
			body:    `{"prices":`,
			errText: "json.Unmarshal",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rq.Equal("Bearer "+tc.token, r.Header.Get("Authorization"))
				rq.Equal("application/json", r.Header.Get("Accept"))

				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			prices, err := pricefeed.New(ts.URL, tc.token, time.Second).Load(context.Background())

			switch {
			case tc.wantErr != nil:
				rq.ErrorIs(err, tc.wantErr)
				return
			case tc.errText != "":
				rq.ErrorContains(err, tc.errText)
				return
			}

			rq.NoError(err)
			rq.Len(prices, len(tc.prices))

			for key, price := range tc.prices {
				rq.Equal(price, prices[key].String())
			}
		})
	}
}
