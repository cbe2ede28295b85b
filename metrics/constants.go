package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "gamba_http_requests_total"
	MetricNameHTTPRequestDuration  = "gamba_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "gamba_http_requests_in_flight"
)

// Realtime metric names
const (
	MetricNameBroadcastsTotal      = "gamba_broadcasts_total"
	MetricNameBroadcastDrops       = "gamba_broadcast_drops_total"
	MetricNameWebsocketConnections = "gamba_websocket_connections"
)

// Business metric names
const (
	MetricNameBracketTransitions = "gamba_bracket_transitions_total"
	MetricNameBetsPlaced         = "gamba_bets_placed_total"
	MetricNamePointsWagered      = "gamba_points_wagered_total"
	MetricNameCacheLookups       = "gamba_bracket_cache_lookups_total"
	MetricNameArchiveFailures    = "gamba_results_archive_failures_total"
)

// Help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"

	HelpTextBroadcastsTotal      = "Total number of events broadcast to bracket rooms"
	HelpTextBroadcastDrops       = "Total number of event deliveries dropped for slow subscribers"
	HelpTextWebsocketConnections = "Current number of open websocket connections"

	HelpTextBracketTransitions = "Total number of committed bracket transitions"
	HelpTextBetsPlaced         = "Total number of bets placed"
	HelpTextPointsWagered      = "Total points escrowed by bets"
	HelpTextCacheLookups       = "Bracket cache lookups by result"
	HelpTextArchiveFailures    = "Total number of final result snapshots that failed to archive"
)

// Labels
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelEvent     = "event"
	LabelOperation = "operation"
	LabelResult    = "result"
)

// Cache lookup results
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// HTTPLatencyBuckets are histogram buckets for request latency in seconds.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
