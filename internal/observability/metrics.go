// Package observability holds the service's Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exerciselog",
		Subsystem: "persistence",
		Name:      "users_created_total",
		Help:      "Number of users successfully registered.",
	})
	exercisesRecordedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exerciselog",
		Subsystem: "persistence",
		Name:      "exercises_recorded_total",
		Help:      "Number of exercise entries successfully persisted.",
	})
	exercisePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exerciselog",
		Subsystem: "persistence",
		Name:      "last_exercise_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise entry persisted.",
	})
	logQueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "exerciselog",
		Subsystem: "query",
		Name:      "log_query_duration_seconds",
		Help:      "Time spent building filtered exercise logs.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesRecordedCounter, exercisePersistGauge, logQueryDuration)
}

// RecordUserCreated counts a successful registration.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExercisePersisted counts a persisted entry and updates the watermark gauge.
func RecordExercisePersisted(ts time.Time) {
	exercisesRecordedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exercisePersistGauge.Set(float64(ts.Unix()))
}

// ObserveLogQuery records how long one log query took.
func ObserveLogQuery(elapsed time.Duration) {
	logQueryDuration.Observe(elapsed.Seconds())
}
