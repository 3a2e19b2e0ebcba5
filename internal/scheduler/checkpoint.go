package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/trudido/remindd/internal/domain"
)

const checkpointPrefix = "deferred-reminder-"

// armCheckpoint parks a far-future target behind a re-evaluation wake-up
// instead of holding a long-lived precise timer. The checkpoint is keyed by
// task ID with replace-on-conflict, so a reschedule while deferred
// supersedes the pending checkpoint rather than doubling it.
func (s *Scheduler) armCheckpoint(item domain.ScheduledItem, remaining time.Duration) {
	delay := checkpointDelay(remaining)
	reg := &registration{}
	handle, err := s.timers.ArmCheckpoint(checkpointPrefix+item.TaskID, delay, func(ctx context.Context) {
		s.runCheckpoint(ctx, item, reg)
	})
	if err != nil {
		slog.Error("arm checkpoint failed", "task_id", item.TaskID, "error", err)
		return
	}
	s.trackHandle(item.TaskID, reg, handle)
	slog.Debug("deferred via checkpoint",
		"task_id", item.TaskID,
		"delay", delay,
		"trigger_at", item.TriggerAt,
	)
}

// runCheckpoint re-evaluates a deferred target. Because the remaining time
// is recomputed from the wall clock on every pass, drift from device-off
// periods is corrected at each checkpoint instead of compounding.
func (s *Scheduler) runCheckpoint(ctx context.Context, item domain.ScheduledItem, reg *registration) {
	s.untrack(item.TaskID, reg)

	now := s.now()
	remaining := item.TriggerAt.Sub(now)
	if remaining <= 0 {
		// Target passed while deferred.
		if err := s.deliverRemove(ctx, item, deliveryCheckpoint); err != nil {
			slog.Error("checkpoint delivery failed", "task_id", item.TaskID, "error", err)
		}
		return
	}

	tier := SelectTier(now, item.TriggerAt, s.timers.Capabilities())
	if tier == domain.TierDeferredCheckpoint {
		// Still outside the horizon; carry the same trigger time forward.
		s.armCheckpoint(item, remaining)
		recordCheckpointRearm()
		return
	}
	s.armNearHorizon(ctx, item, tier)
}
