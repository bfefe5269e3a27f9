package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameEntriesLiquidated    = "entries_liquidated_total"
	MetricNameMoneyCredited        = "money_credited_cents_total"
	MetricNameDeliveriesDispatched = "deliveries_dispatched_total"
	MetricNameDeliveriesFinalized  = "deliveries_finalized_total"
	MetricNameDeliveriesReversed   = "deliveries_reversed_total"
	MetricNameSessionState         = "custody_session_state"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextEntriesLiquidated    = "Total number of inventory entries liquidated"
	HelpTextMoneyCredited        = "Total money credited from liquidations in cents"
	HelpTextDeliveriesDispatched = "Total number of delivery proposals dispatched"
	HelpTextDeliveriesFinalized  = "Total number of deliveries finalized"
	HelpTextDeliveriesReversed   = "Total number of deliveries reversed"
	HelpTextSessionState         = "Custody session state (1 for the current state, 0 otherwise)"
)

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelOutcome = "outcome"
	LabelState   = "state"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Log messages
const (
	LogMsgUnexpectedPayload = "Event payload has unexpected type"
)
