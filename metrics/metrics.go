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

// Realtime Metrics
var (
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBroadcastsTotal,
			Help: HelpTextBroadcastsTotal,
		},
		[]string{LabelEvent},
	)

	BroadcastDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBroadcastDrops,
			Help: HelpTextBroadcastDrops,
		},
	)

	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameWebsocketConnections,
			Help: HelpTextWebsocketConnections,
		},
	)
)

// Business Metrics
var (
	BracketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBracketTransitions,
			Help: HelpTextBracketTransitions,
		},
		[]string{LabelOperation},
	)

	BetsPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBetsPlaced,
			Help: HelpTextBetsPlaced,
		},
	)

	PointsWagered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePointsWagered,
			Help: HelpTextPointsWagered,
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCacheLookups,
			Help: HelpTextCacheLookups,
		},
		[]string{LabelResult},
	)

	ArchiveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameArchiveFailures,
			Help: HelpTextArchiveFailures,
		},
	)
)
