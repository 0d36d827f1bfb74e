// Package metrics records per-run counters on a private Prometheus registry
// and writes them out in the node exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/intelligrit/guess-tally/internal/model"
)

const namespace = "guess_tally"

// Stage names used with StageFailed.
const (
	StageKML     = "kml"
	StageArchive = "archive"
	StagePost    = "post"
)

// Recorder holds the collect metrics for one process.
type Recorder struct {
	registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	newPlayers    prometheus.Counter
	ranked        *prometheus.GaugeVec
	stageFailures *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastRun       prometheus.Gauge
}

// New creates a Recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions seen by collect, by outcome.",
		}, []string{"round", "outcome"}),
		newPlayers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "new_players_total",
			Help:      "Aliases added to the roster.",
		}),
		ranked: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ranked_participants",
			Help:      "Participants with a computed distance after the last run.",
		}, []string{"round"}),
		stageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Best-effort stages that failed.",
		}, []string{"stage"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a collect run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last collect run finished.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveRun records the counts of a finished run.
func (r *Recorder) ObserveRun(run model.Run, ranked int, took time.Duration) {
	for outcome, n := range map[string]int{
		"segmented":   run.Segmented,
		"unparseable": run.Unparseable,
		"approved":    run.Approved,
		"rejected":    run.Rejected,
	} {
		r.submissions.WithLabelValues(run.Round, outcome).Add(float64(n))
	}
	r.newPlayers.Add(float64(run.NewPlayers))
	r.ranked.WithLabelValues(run.Round).Set(float64(ranked))
	r.runDuration.Observe(took.Seconds())
	r.lastRun.SetToCurrentTime()
}

// StageFailed counts a failed best-effort stage.
func (r *Recorder) StageFailed(stage string) {
	r.stageFailures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
