package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome label values
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Domain metrics
	fetchRequests      *prometheus.CounterVec
	fetchCycleDuration *prometheus.HistogramVec
	trades             *prometheus.CounterVec
	loadingProgress    prometheus.Gauge
	positions          prometheus.Gauge
	favorites          prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.fetchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_fetch_requests_total",
			Help: "Market data requests by kind and outcome; failed requests were replaced by placeholders",
		},
		[]string{"kind", "status"},
	)
	r.fetchCycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_fetch_cycle_duration_seconds",
			Help:    "Time until every ticker of one kind was merged",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)
	r.trades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_trades_total",
			Help: "Simulated trades by side and outcome",
		},
		[]string{"side", "status"},
	)
	r.loadingProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_loading_progress",
			Help: "Advisory loading progress percentage",
		},
	)
	r.positions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_portfolio_positions",
			Help: "Number of tickers held in the portfolio",
		},
	)
	r.favorites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_favorites",
			Help: "Number of favorite tickers",
		},
	)

	reg.MustRegister(r.fetchRequests)
	reg.MustRegister(r.fetchCycleDuration)
	reg.MustRegister(r.trades)
	reg.MustRegister(r.loadingProgress)
	reg.MustRegister(r.positions)
	reg.MustRegister(r.favorites)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordFetch counts one market data request.
func (r *Registry) RecordFetch(kind string, ok bool) {
	r.fetchRequests.WithLabelValues(kind, outcome(ok)).Inc()
}

// ObserveFetchCycle records how long one kind took to merge.
func (r *Registry) ObserveFetchCycle(kind string, d time.Duration) {
	r.fetchCycleDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordTrade counts one buy or sell attempt.
func (r *Registry) RecordTrade(side string, ok bool) {
	r.trades.WithLabelValues(side, outcome(ok)).Inc()
}

// SetLoadingProgress sets the loading progress gauge.
func (r *Registry) SetLoadingProgress(v int) {
	r.loadingProgress.Set(float64(v))
}

// SetPositions sets the number of held tickers.
func (r *Registry) SetPositions(n int) {
	r.positions.Set(float64(n))
}

// SetFavorites sets the favorites list size.
func (r *Registry) SetFavorites(n int) {
	r.favorites.Set(float64(n))
}

func outcome(ok bool) string {
	if ok {
		return StatusOK
	}
	return StatusFailed
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
