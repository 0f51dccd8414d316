package events

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exerciselog",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of exercise events successfully published to Kafka.",
	})

	publishFailedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exerciselog",
		Subsystem: "events",
		Name:      "publish_failed_total",
		Help:      "Number of exercise events that failed to publish.",
	})
)

func init() {
	prometheus.MustRegister(publishedCounter, publishFailedCounter)
}
