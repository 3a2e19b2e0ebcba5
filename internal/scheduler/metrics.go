package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trudido/remindd/internal/domain"
)

const namespace = "remindd"

var (
	remindersScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "scheduled_total",
			Help:      "Schedule requests by selected delivery tier",
		},
		[]string{"tier"},
	)

	remindersDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "delivered_total",
			Help:      "Reminders rendered, by delivery path",
		},
		[]string{"path"},
	)

	remindersCanceled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "canceled_total",
			Help:      "Cancellation requests processed",
		},
	)

	checkpointRearms = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "checkpoint_rearms_total",
			Help:      "Deferred checkpoints that re-armed themselves",
		},
	)
)

func recordScheduled(tier domain.DeliveryTier) {
	remindersScheduled.WithLabelValues(string(tier)).Inc()
}

func recordDelivered(path deliveryPath) {
	remindersDelivered.WithLabelValues(string(path)).Inc()
}

func recordCanceled() {
	remindersCanceled.Inc()
}

func recordCheckpointRearm() {
	checkpointRearms.Inc()
}
