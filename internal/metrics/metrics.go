package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	scanCycles       prometheus.Counter
	scanDuration     prometheus.Histogram
	symbolsScanned   *prometheus.CounterVec
	signalsGenerated *prometheus.CounterVec
	positionsOpened  prometheus.Counter
	positionsClosed  *prometheus.CounterVec
	openPositions    prometheus.Gauge
	walletBalance    prometheus.Gauge
	universeSymbols  prometheus.Gauge
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

	// Business metrics
	r.scanCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kai_scan_cycles_total",
			Help: "Total number of universe scan cycles completed",
		},
	)
	r.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kai_scan_duration_seconds",
			Help:    "Universe scan duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.symbolsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kai_symbols_scanned_total",
			Help: "Total number of symbols scanned",
		},
		[]string{"status"},
	)
	r.signalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kai_signals_generated_total",
			Help: "Total number of buy/sell signals generated",
		},
		[]string{"category", "action"},
	)
	r.positionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kai_positions_opened_total",
			Help: "Total number of paper positions opened",
		},
	)
	r.positionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kai_positions_closed_total",
			Help: "Total number of paper positions closed",
		},
		[]string{"status"},
	)
	r.openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kai_open_positions",
			Help: "Number of currently open paper positions",
		},
	)
	r.walletBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kai_wallet_balance",
			Help: "Free cash in the paper wallet",
		},
	)
	r.universeSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kai_universe_symbols",
			Help: "Number of symbols in the configured universe",
		},
	)

	reg.MustRegister(r.scanCycles)
	reg.MustRegister(r.scanDuration)
	reg.MustRegister(r.symbolsScanned)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.positionsOpened)
	reg.MustRegister(r.positionsClosed)
	reg.MustRegister(r.openPositions)
	reg.MustRegister(r.walletBalance)
	reg.MustRegister(r.universeSymbols)

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

// RecordScanCycle records a completed scan cycle.
func (r *Registry) RecordScanCycle(duration float64) {
	r.scanCycles.Inc()
	r.scanDuration.Observe(duration)
}

// RecordSymbol records a scanned symbol outcome ("ok" or "skipped").
func (r *Registry) RecordSymbol(status string) {
	r.symbolsScanned.WithLabelValues(status).Inc()
}

// RecordSignal records a generated buy or sell signal.
func (r *Registry) RecordSignal(category, action string) {
	r.signalsGenerated.WithLabelValues(category, action).Inc()
}

// RecordPositionOpened records an opened paper position.
func (r *Registry) RecordPositionOpened() {
	r.positionsOpened.Inc()
}

// RecordPositionClosed records a closed position by exit status.
func (r *Registry) RecordPositionClosed(status string) {
	r.positionsClosed.WithLabelValues(status).Inc()
}

// SetWalletState updates the wallet gauges after a ledger change.
func (r *Registry) SetWalletState(openPositions int, balance float64) {
	r.openPositions.Set(float64(openPositions))
	r.walletBalance.Set(balance)
}

// SetUniverseSize sets the configured universe size.
func (r *Registry) SetUniverseSize(size int) {
	r.universeSymbols.Set(float64(size))
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
