package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	EntriesLiquidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEntriesLiquidated,
			Help: HelpTextEntriesLiquidated,
		},
	)

	MoneyCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMoneyCredited,
			Help: HelpTextMoneyCredited,
		},
	)

	DeliveriesDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDeliveriesDispatched,
			Help: HelpTextDeliveriesDispatched,
		},
	)

	DeliveriesFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDeliveriesFinalized,
			Help: HelpTextDeliveriesFinalized,
		},
	)

	DeliveriesReversed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDeliveriesReversed,
			Help: HelpTextDeliveriesReversed,
		},
		[]string{LabelOutcome},
	)

	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameSessionState,
			Help: HelpTextSessionState,
		},
		[]string{LabelState},
	)
)
