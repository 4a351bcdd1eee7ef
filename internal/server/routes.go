package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"card_arbitrage/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/listings", func(r chi.Router) {
				r.Post("/evaluate", handler(s.postV1ListingEvaluate))
				r.Post("/evaluate/batch", handler(s.postV1ListingEvaluateBatch))
			})

			r.Route("/deals", func(r chi.Router) {
				r.Get("/", handler(s.getV1Deals))
				r.Get("/{id}", handler(s.getV1Deal))
				r.Post("/{id}/approve", handler(s.postV1DealApprove))
				r.Post("/{id}/reject", handler(s.postV1DealReject))
				r.Post("/{id}/status", handler(s.postV1DealStatus))
			})

			r.Route("/capital", func(r chi.Router) {
				r.Get("/", handler(s.getV1Capital))
				r.Get("/check", handler(s.getV1CapitalCheck))
				r.Get("/limits", handler(s.getV1CapitalLimits))
				r.Put("/limits", handler(s.putV1CapitalLimits))
			})

			r.Route("/vault", func(r chi.Router) {
				r.Get("/", handler(s.getV1Vault))
				r.Get("/ready", handler(s.getV1VaultReady))
				r.Get("/grading-opportunities", handler(s.getV1VaultGradingOpportunities))
				r.Post("/rebalance", handler(s.postV1VaultRebalance))
				r.Post("/positions", handler(s.postV1VaultPositions))
				r.Get("/positions/{id}", handler(s.getV1VaultPosition))
			})

			r.Get("/catalog", handler(s.getV1Catalog))
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
