// Package metrics exposes Prometheus collectors for scoring activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ethicscore/internal/model"
)

// Compute kinds
const (
	KindScore    = "score"
	KindCombined = "combined"
	KindProject  = "project"
	KindHotspots = "hotspots"
)

var (
	scoresComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethicscore_scores_computed_total",
		Help: "Total number of computed scores by kind",
	}, []string{"kind"})

	scoringIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethicscore_scoring_issues_total",
		Help: "Total number of scoring issues recorded by issue kind",
	}, []string{"kind"})

	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ethicscore_compute_duration_seconds",
		Help:    "Duration of score computations including storage",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"kind"})

	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethicscore_submissions_total",
		Help: "Total number of response submissions by outcome",
	}, []string{"outcome"})
)

// ObserveCompute records one finished computation of the given kind
func ObserveCompute(kind string, started time.Time) {
	scoresComputed.WithLabelValues(kind).Inc()
	computeDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// RecordIssues counts the issues attached to a score
func RecordIssues(issues []model.Issue) {
	for _, issue := range issues {
		scoringIssues.WithLabelValues(string(issue.Kind)).Inc()
	}
}

// RecordSubmission counts a submission attempt, e.g. "accepted" or "invalid"
func RecordSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}
