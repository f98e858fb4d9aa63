// Package metrics provides Prometheus metrics for the transaction pool.
package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the submission pipeline and the
// pool. It implements the pool's Metrics interface.
type Metrics struct {
	// Submission metrics
	txReceivedTotal   prometheus.Counter
	txAcceptedTotal   prometheus.Counter
	txRejectedTotal   *prometheus.CounterVec
	admissionDuration prometheus.Histogram

	// Pool lifecycle metrics
	txReplacedTotal prometheus.Counter
	txEvictedTotal  prometheus.Counter
	txPromotedTotal prometheus.Counter
	txRemovedTotal  prometheus.Counter

	// Pool depth
	pendingDepth prometheus.Gauge
	queuedDepth  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance and registers all metrics.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{}

	// Submission metrics
	m.txReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_received_total",
		Help:      "Total number of raw transactions submitted",
	})

	m.txAcceptedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_accepted_total",
		Help:      "Total number of transactions admitted to the pool",
	})

	m.txRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_rejected_total",
		Help:      "Total number of rejected submissions by reason",
	}, []string{"reason"})

	m.admissionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tx_admission_seconds",
		Help:      "Time from raw submission to terminal outcome in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	})

	// Pool lifecycle metrics
	m.txReplacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_replaced_total",
		Help:      "Total number of transactions replaced by a higher fee",
	})

	m.txEvictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_evicted_total",
		Help:      "Total number of transactions evicted at capacity",
	})

	m.txPromotedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_promoted_total",
		Help:      "Total number of transactions promoted from queued to pending",
	})

	m.txRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_removed_total",
		Help:      "Total number of transactions removed from the pool",
	})

	// Pool depth
	m.pendingDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_pending",
		Help:      "Current number of pending transactions",
	})

	m.queuedDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_queued",
		Help:      "Current number of queued transactions",
	})

	// Register all metrics
	prometheus.MustRegister(
		m.txReceivedTotal,
		m.txAcceptedTotal,
		m.txRejectedTotal,
		m.admissionDuration,
		m.txReplacedTotal,
		m.txEvictedTotal,
		m.txPromotedTotal,
		m.txRemovedTotal,
		m.pendingDepth,
		m.queuedDepth,
	)

	return m
}

// IncReceived counts a raw submission arriving at the facade.
func (m *Metrics) IncReceived() {
	m.txReceivedTotal.Inc()
}

// IncRejected counts a rejected submission with its reason label.
func (m *Metrics) IncRejected(reason string) {
	m.txRejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveAdmission records how long a submission took end to end.
func (m *Metrics) ObserveAdmission(duration time.Duration) {
	m.admissionDuration.Observe(duration.Seconds())
}

// TxAdded counts a fresh admission into either partition.
func (m *Metrics) TxAdded(pending bool) {
	m.txAcceptedTotal.Inc()
}

// TxReplaced counts a replace-by-fee swap.
func (m *Metrics) TxReplaced() {
	m.txAcceptedTotal.Inc()
	m.txReplacedTotal.Inc()
}

// TxEvicted counts a capacity eviction.
func (m *Metrics) TxEvicted() {
	m.txEvictedTotal.Inc()
}

// TxPromoted counts a queued entry becoming pending.
func (m *Metrics) TxPromoted() {
	m.txPromotedTotal.Inc()
}

// TxRemoved counts an explicit removal.
func (m *Metrics) TxRemoved(pending bool) {
	m.txRemovedTotal.Inc()
}

// SetDepth updates the partition depth gauges.
func (m *Metrics) SetDepth(pending, queued int) {
	m.pendingDepth.Set(float64(pending))
	m.queuedDepth.Set(float64(queued))
}

// StatusProvider reports current pool depths for the /status endpoint.
type StatusProvider func() (pending, queued int)

// Server exposes metrics and health endpoints over HTTP.
type Server struct {
	addr   string
	server *http.Server
}

// NewServer creates a metrics HTTP server. status may be nil, in which case
// /status reports zero depths.
func NewServer(addr string, status StatusProvider) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		var pending, queued int
		if status != nil {
			pending, queued = status()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{
			"pending": pending,
			"queued":  queued,
		})
	})

	return &Server{
		addr: addr,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start starts the metrics server.
func (s *Server) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	return nil
}

// Stop stops the metrics server.
func (s *Server) Stop() error {
	return s.server.Close()
}
