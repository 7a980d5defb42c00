// README: Prometheus collectors for quoting, the remote pricing path and distance lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	QuotesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedyvan_quotes_issued_total",
			Help: "Quotes returned to callers, by calculator that produced them",
		},
		[]string{"source"},
	)

	RemoteQuoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speedyvan_remote_quote_duration_seconds",
			Help:    "Latency of remote quote calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
		[]string{"provider"},
	)

	RemoteQuoteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedyvan_remote_quote_failures_total",
			Help: "Remote quote attempts that fell back to the local calculator",
		},
		[]string{"provider", "reason"},
	)

	DistanceLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speedyvan_distance_lookups_total",
			Help: "Distance lookups by outcome",
		},
		[]string{"outcome"},
	)

	WidgetQuotesStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "speedyvan_widget_quotes_stored_total",
			Help: "Widget quotes persisted",
		},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		QuotesIssued,
		RemoteQuoteDuration,
		RemoteQuoteFailures,
		DistanceLookups,
		WidgetQuotesStored,
	)
}

func RecordQuote(source string) {
	QuotesIssued.WithLabelValues(source).Inc()
}

// RecordRemoteQuote records one remote attempt. reason is empty on success.
func RecordRemoteQuote(provider string, duration time.Duration, reason string) {
	RemoteQuoteDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if reason != "" {
		RemoteQuoteFailures.WithLabelValues(provider, reason).Inc()
	}
}

func RecordDistanceLookup(outcome string) {
	DistanceLookups.WithLabelValues(outcome).Inc()
}

func RecordWidgetQuoteStored() {
	WidgetQuotesStored.Inc()
}
