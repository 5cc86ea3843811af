package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// StatementsRenderedTotal counts statement rendering outcomes.
	StatementsRenderedTotal *prometheus.CounterVec
	// StatementAmountCents records the total owed per rendered statement in cents.
	StatementAmountCents prometheus.Histogram
	// PerformancesPricedTotal counts priced performances by genre.
	PerformancesPricedTotal *prometheus.CounterVec
	// CatalogWritesTotal counts catalog mutations by operation and outcome.
	CatalogWritesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		StatementsRenderedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_rendered_total",
			Help:      "Count of statement rendering outcomes.",
		}, []string{"result"}))
		StatementAmountCents = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "statement_amount_cents",
			Help:      "Amount owed per rendered statement in cents.",
			Buckets:   prometheus.ExponentialBuckets(10000, 4, 8),
		}))
		PerformancesPricedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "performances_priced_total",
			Help:      "Count of priced performances by genre.",
		}, []string{"genre"}))
		CatalogWritesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_writes_total",
			Help:      "Count of play catalog mutations by operation and outcome.",
		}, []string{"op", "result"}))
	})
}

// ObserveStatement records a rendering outcome. Collectors that were never registered are skipped.
func ObserveStatement(result string, amountCents int64, genres []string) {
	if StatementsRenderedTotal != nil {
		StatementsRenderedTotal.WithLabelValues(result).Inc()
	}
	if result != "ok" {
		return
	}
	if StatementAmountCents != nil {
		StatementAmountCents.Observe(float64(amountCents))
	}
	if PerformancesPricedTotal != nil {
		for _, g := range genres {
			PerformancesPricedTotal.WithLabelValues(g).Inc()
		}
	}
}

// ObserveCatalogWrite records a catalog mutation outcome.
func ObserveCatalogWrite(op string, err error) {
	if CatalogWritesTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	CatalogWritesTotal.WithLabelValues(op, result).Inc()
}
