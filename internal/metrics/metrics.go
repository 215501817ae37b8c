package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every walkopt collector. It is exported as a node_exporter
// textfile after batch runs and served over HTTP in watch mode.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "walkopt_runs_total",
		Help: "Total number of optimization runs, labelled by outcome.",
	}, []string{"outcome"})

	LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Name: "walkopt_last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	})

	RunDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "walkopt_run_duration_ms",
		Help:    "End-to-end run latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueriesProfiled = factory.NewGauge(prometheus.GaugeOpts{
		Name: "walkopt_queries_profiled",
		Help: "Query records in the last profiled result log.",
	})

	CandidateEdges = factory.NewGauge(prometheus.GaugeOpts{
		Name: "walkopt_candidate_edges",
		Help: "Total edges in the last candidate graph.",
	})

	CandidateMaxOutDegree = factory.NewGauge(prometheus.GaugeOpts{
		Name: "walkopt_candidate_max_out_degree",
		Help: "Largest out-degree in the last candidate graph.",
	})

	CandidateValid = factory.NewGauge(prometheus.GaugeOpts{
		Name: "walkopt_candidate_valid",
		Help: "1 if the last candidate passed verification, 0 otherwise.",
	})

	Violations = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "walkopt_verification_violations",
		Help: "Constraint violations in the last candidate, labelled by kind.",
	}, []string{"kind"})

	ExpectedSteps = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "walkopt_expected_steps",
		Help: "Frequency-weighted expected walk length to the top targets, labelled by graph.",
	}, []string{"graph"})
)

// WriteTextfile writes the registry in the Prometheus text format to path.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
