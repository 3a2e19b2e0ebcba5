package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trudido/remindd/internal/domain"
)

const namespace = "remindd"

var (
	actionsQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "actions_queued_total",
			Help:      "Action records appended to the outbox, by type",
		},
		[]string{"type"},
	)

	actionsDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "actions_drained_total",
			Help:      "Action records handed to the consumer",
		},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "depth",
			Help:      "Action records currently queued",
		},
	)
)

func recordQueued(actionType domain.ActionType) {
	actionsQueued.WithLabelValues(string(actionType)).Inc()
}

func recordDrained(count int) {
	actionsDrained.Add(float64(count))
}

func setQueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}
