// Package metrics exposes the Prometheus instruments the server records.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookbuddy_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Completion API
	AICompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_ai_completions_total",
			Help: "Chat completion calls by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	AICompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookbuddy_ai_completion_duration_seconds",
			Help:    "Chat completion latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	// AIFallbacksTotal counts responses served from a fallback because the completion failed.
	AIFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_ai_fallbacks_total",
			Help: "Responses served from a fallback after a completion failure",
		},
		[]string{"feature"}, // "chat", "mood", "personalized", "playlist"
	)

	// Payments
	PaymentVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_payment_verifications_total",
			Help: "Payment signature verifications by result",
		},
		[]string{"result"}, // "verified", "mismatch", "already_paid"
	)

	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_orders_created_total",
			Help: "Orders created by type",
		},
		[]string{"type"},
	)

	// Catalog
	CatalogBooksImportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_catalog_books_imported_total",
			Help: "Books added to the catalog by source",
		},
		[]string{"source"}, // "api", "seed", "import"
	)

	CoverPlaceholdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookbuddy_cover_placeholders_total",
			Help: "Cover BlurHash computations by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAICompletion records the outcome of one completion call.
func RecordAICompletion(duration time.Duration, content string, err error) {
	AICompletionDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		AICompletionsTotal.WithLabelValues("error").Inc()
	case content == "":
		AICompletionsTotal.WithLabelValues("empty").Inc()
	default:
		AICompletionsTotal.WithLabelValues("ok").Inc()
	}
}

// RecordAIFallback counts a fallback served by feature.
func RecordAIFallback(feature string) {
	AIFallbacksTotal.WithLabelValues(feature).Inc()
}

// RecordPaymentVerification counts a verification result.
func RecordPaymentVerification(result string) {
	PaymentVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordOrderCreated counts a created order.
func RecordOrderCreated(orderType string) {
	OrdersCreatedTotal.WithLabelValues(orderType).Inc()
}

// RecordBooksImported adds n books imported from source.
func RecordBooksImported(source string, n int) {
	if n <= 0 {
		return
	}
	CatalogBooksImportedTotal.WithLabelValues(source).Add(float64(n))
}

// RecordCoverPlaceholder counts a cover placeholder computation.
func RecordCoverPlaceholder(err error) {
	if err != nil {
		CoverPlaceholdersTotal.WithLabelValues("error").Inc()
		return
	}
	CoverPlaceholdersTotal.WithLabelValues("ok").Inc()
}
