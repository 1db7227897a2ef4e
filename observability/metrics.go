package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons used as the "reason" label of live_poll_votes_dropped_total.
const (
	ReasonMalformed       = "malformed"
	ReasonUnauthenticated = "unauthenticated"
	ReasonPollNotFound    = "poll_not_found"
	ReasonOptionNotFound  = "option_not_found"
	ReasonDuplicate       = "duplicate"
	ReasonStore           = "store"
	ReasonQueueFull       = "queue_full"
)

// Metrics tracks the vote pipeline, fan-out and live connections.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	VotesApplied     prometheus.Counter
	VotesDropped     *prometheus.CounterVec
	VoteDuration     prometheus.Histogram
	PollsCreated     prometheus.Counter
	Broadcasts       *prometheus.CounterVec
	DeliveryFailures prometheus.Counter
	LiveConnections  prometheus.Gauge
	WorkerRestarts   *prometheus.CounterVec
	VoteQueueDepth   *prometheus.GaugeVec
	ProcessCPU       prometheus.Gauge
	ProcessRSS       prometheus.Gauge
}

// NewRegistry returns the server registry with the Go runtime collector.
// Process CPU and memory come from HeartbeatWorker through ProcessCPU and ProcessRSS.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// New registers every metric on reg. Pass a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VotesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "live_poll_votes_applied_total",
			Help: "Votes counted and persisted",
		}),
		VotesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "live_poll_votes_dropped_total",
			Help: "Votes discarded by the vote pipeline, by reason",
		}, []string{"reason"}),
		VoteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "live_poll_vote_duration_seconds",
			Help:    "Time from vote receipt to broadcast",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PollsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "live_poll_polls_created_total",
			Help: "Polls persisted",
		}),
		Broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "live_poll_broadcasts_total",
			Help: "Events fanned out to live connections, by event type",
		}, []string{"type"}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "live_poll_delivery_failures_total",
			Help: "Per-connection deliveries that failed and caused an unregister",
		}),
		LiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "live_poll_connections",
			Help: "Currently registered live connections",
		}),
		WorkerRestarts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "live_poll_worker_restarts_total",
			Help: "Workers restarted by the supervisor after a panic, by worker",
		}, []string{"worker"}),
		VoteQueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "live_poll_vote_queue_depth",
			Help: "Votes waiting in each shard queue, sampled",
		}, []string{"shard"}),
		ProcessCPU: factory.NewGauge(prometheus.GaugeOpts{
			Name: "live_poll_process_cpu_percent",
			Help: "CPU used by the server process, sampled",
		}),
		ProcessRSS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "live_poll_process_rss_bytes",
			Help: "Resident memory of the server process, sampled",
		}),
	}
}

func (m *Metrics) IncrVoteApplied(start time.Time) {
	if m == nil {
		return
	}
	m.VotesApplied.Inc()
	m.VoteDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrVoteDropped(reason string) {
	if m == nil {
		return
	}
	m.VotesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrPollCreated() {
	if m == nil {
		return
	}
	m.PollsCreated.Inc()
}

func (m *Metrics) IncrBroadcast(eventType string) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncrDeliveryFailure() {
	if m == nil {
		return
	}
	m.DeliveryFailures.Inc()
}

func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.LiveConnections.Set(float64(n))
}

func (m *Metrics) IncrWorkerRestart(worker string) {
	if m == nil {
		return
	}
	m.WorkerRestarts.WithLabelValues(worker).Inc()
}

func (m *Metrics) SetQueueDepth(shard, depth int) {
	if m == nil {
		return
	}
	m.VoteQueueDepth.WithLabelValues(strconv.Itoa(shard)).Set(float64(depth))
}

func (m *Metrics) SetProcessStats(cpuPercent float64, rssBytes uint64) {
	if m == nil {
		return
	}
	m.ProcessCPU.Set(cpuPercent)
	m.ProcessRSS.Set(float64(rssBytes))
}
