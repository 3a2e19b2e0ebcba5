package lateness

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "remindd"

var (
	lateFires = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lateness",
			Name:      "fire_delay_seconds",
			Help:      "Delay of late fires past their trigger time",
			Buckets:   []float64{120, 300, 600, 1800, 3600, 21600},
		},
	)

	promptsRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lateness",
			Name:      "prompts_raised_total",
			Help:      "Times the lateness prompt flag was raised",
		},
	)
)

func recordLateFire(late time.Duration) {
	lateFires.Observe(late.Seconds())
}

func recordPromptRaised() {
	promptsRaised.Inc()
}
