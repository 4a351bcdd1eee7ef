package middlewarex

import (
	"log/slog"
	"net/http"

	"card_arbitrage/pkg/contextx"
	"card_arbitrage/pkg/logx"
)

// Logger кладёт в контекст запроса логгер с trace id. Ставится после TraceID.
func Logger(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := base

			if traceID, err := contextx.TraceIDFromContext(ctx); err == nil {
				l = l.With(slog.String(logx.FieldTraceID, traceID.String()))
			}

			next.ServeHTTP(w, r.WithContext(contextx.WithLogger(ctx, l)))
		})
	}
}
