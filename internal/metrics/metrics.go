package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "card_arbitrage"

//nolint:gochecknoglobals
var (
	ListingsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_evaluated_total",
		Help:      "Evaluated listings by recommendation.",
	}, []string{"recommendation"})

	ListingsFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_filtered_total",
		Help:      "Listings dropped before scoring.",
	}, []string{"reason"})

	EvaluationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluation_errors_total",
		Help:      "Listings that failed validation or processing.",
	})

	AdmissionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_decisions_total",
		Help:      "Capital admission decisions by result.",
	}, []string{"result"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_status_transitions_total",
		Help:      "Deal status changes by target status and ordering.",
	}, []string{"status", "in_order"})

	VaultPositions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "vault_positions",
		Help:      "Positions currently held in the vault.",
	})

	VaultInsuranceValue = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "vault_insurance_value_dollars",
		Help:      "Total insurance value of vault positions.",
	})

	// Gauge, потому что убыточная продажа уменьшает значение
	RealizedProfit = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realized_profit_dollars",
		Help:      "Net profit realized from sold positions.",
	})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Time to evaluate a single listing.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)
