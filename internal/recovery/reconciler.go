// Package recovery reconciles persisted reminders against wall-clock time
// after process restarts and reboots. In-memory timers do not survive
// either event; the persistent item store is the authority on what should
// still fire.
package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trudido/remindd/internal/domain"
	"github.com/trudido/remindd/internal/scheduler"
)

// Mode selects the stale cutoff for a reconciliation pass.
type Mode string

// Reconciliation modes.
const (
	// ModeStartup runs at process start. Past-due items inside the stale
	// cutoff are left for a later pass rather than guessing user intent.
	ModeStartup Mode = "startup"

	// ModeBoot runs after a device reboot, a strong signal that armed
	// timers were lost outright. Anything not deliverable within grace is
	// dropped, avoiding a burst of stale notifications right after boot.
	ModeBoot Mode = "boot"
)

const (
	// deliveryGrace is how long past its trigger an item is still worth
	// delivering as "fired while we could not observe it".
	deliveryGrace = 30 * time.Minute

	staleCutoff     = 12 * time.Hour
	bootStaleCutoff = 30 * time.Minute
)

// Sink is the slice of the scheduler the reconciler drives.
type Sink interface {
	Schedule(ctx context.Context, taskID, title, body string, triggerAt time.Time) (domain.DeliveryTier, error)
	DeliverNow(ctx context.Context, item domain.ScheduledItem) error
}

// Result summarizes one reconciliation pass.
type Result struct {
	Rearmed   int `json:"rearmed"`
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
	Skipped   int `json:"skipped"`
}

// Reconciler replays the persistent item store through the normal
// scheduling and delivery paths.
type Reconciler struct {
	repo  scheduler.Repository
	sched Sink
	now   func() time.Time
}

// NewReconciler creates a reconciler.
func NewReconciler(repo scheduler.Repository, sched Sink) *Reconciler {
	return &Reconciler{repo: repo, sched: sched, now: time.Now}
}

// Run reconciles every persisted item. Per-item failures are logged and do
// not stop the pass; a failed item is picked up again next time.
func (r *Reconciler) Run(ctx context.Context, mode Mode) (Result, error) {
	items, err := r.repo.All(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load items: %w", err)
	}

	cutoff := staleCutoff
	if mode == ModeBoot {
		cutoff = bootStaleCutoff
	}

	now := r.now()
	var res Result
	for _, item := range items {
		age := now.Sub(item.TriggerAt)
		switch {
		case age < 0:
			// Still in the future: re-arm through normal tier selection.
			if _, err := r.sched.Schedule(ctx, item.TaskID, item.Title, item.Body, item.TriggerAt); err != nil {
				slog.Error("re-arm failed", "task_id", item.TaskID, "error", err)
				continue
			}
			res.Rearmed++
		case age <= deliveryGrace:
			if err := r.sched.DeliverNow(ctx, item); err != nil {
				slog.Error("catch-up delivery failed", "task_id", item.TaskID, "error", err)
				continue
			}
			res.Delivered++
		case age > cutoff:
			// Too old to still be actionable; drop silently.
			if err := r.repo.Remove(ctx, item.TaskID); err != nil {
				slog.Error("drop stale item failed", "task_id", item.TaskID, "error", err)
				continue
			}
			res.Dropped++
		default:
			// Past grace but inside the cutoff: no action this pass.
			res.Skipped++
		}
	}

	if res != (Result{}) {
		slog.Info("reconciliation complete",
			"mode", mode,
			"rearmed", res.Rearmed,
			"delivered", res.Delivered,
			"dropped", res.Dropped,
			"skipped", res.Skipped,
			"total", len(items),
		)
	}
	return res, nil
}
