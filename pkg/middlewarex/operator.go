package middlewarex

import (
	"net/http"

	"card_arbitrage/pkg/contextx"
)

const headerNameOperator = "X-Operator"

// Operator кладёт в контекст оператора из заголовка, если он передан.
func Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if operator := r.Header.Get(headerNameOperator); operator != "" {
			ctx = contextx.WithOperator(ctx, contextx.Operator(operator))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
