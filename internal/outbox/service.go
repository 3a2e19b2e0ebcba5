// Package outbox relays user actions taken outside the consuming
// application back to it: a durable ordered queue of action records plus an
// idempotency set of already-completed tasks.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trudido/remindd/internal/domain"
)

// Snooze behavior, matching what the notification actions promise.
const (
	SnoozeDelay = 10 * time.Minute
	snoozeTitle = "Task Reminder"
	snoozeBody  = "Reminder after snooze"
)

// ReminderScheduler is the slice of the scheduler the outbox needs.
type ReminderScheduler interface {
	Schedule(ctx context.Context, taskID, title, body string, triggerAt time.Time) (domain.DeliveryTier, error)
	Retract(ctx context.Context, taskID string)
}

// Service handles notification actions and outbox draining.
type Service struct {
	repo  Repository
	sched ReminderScheduler
	now   func() time.Time
}

// NewService creates an outbox service.
func NewService(repo Repository, sched ReminderScheduler) *Service {
	return &Service{repo: repo, sched: sched, now: time.Now}
}

// Complete marks a task done and relays the action. It reports false when
// the task was already completed, absorbing duplicate triggers such as a
// double-tap on a notification action.
//
// The durable completion mark is committed before the outbox record, so a
// crash between the two can at worst duplicate the relay, never lose the
// completion.
func (s *Service) Complete(ctx context.Context, taskID string) (bool, error) {
	fresh, err := s.repo.MarkCompletedIfNew(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	if fresh {
		rec := &domain.OutboxRecord{Type: domain.ActionTaskCompleted, TaskID: taskID}
		if err := s.repo.Append(ctx, rec); err != nil {
			return false, fmt.Errorf("append completion action: %w", err)
		}
		recordQueued(domain.ActionTaskCompleted)
	} else {
		slog.Debug("duplicate completion absorbed", "task_id", taskID)
	}

	s.sched.Retract(ctx, taskID)
	s.syncDepth(ctx)
	return fresh, nil
}

// Snooze dismisses the notification, re-arms the reminder ten minutes out,
// and relays the new trigger time.
func (s *Service) Snooze(ctx context.Context, taskID string) (time.Time, error) {
	s.sched.Retract(ctx, taskID)

	newAt := s.now().Add(SnoozeDelay)
	if _, err := s.sched.Schedule(ctx, taskID, snoozeTitle, snoozeBody, newAt); err != nil {
		return time.Time{}, fmt.Errorf("reschedule snoozed reminder: %w", err)
	}

	rec := &domain.OutboxRecord{Type: domain.ActionTaskSnoozed, TaskID: taskID, NewTriggerAt: &newAt}
	if err := s.repo.Append(ctx, rec); err != nil {
		return time.Time{}, fmt.Errorf("append snooze action: %w", err)
	}
	recordQueued(domain.ActionTaskSnoozed)
	s.syncDepth(ctx)
	return newAt, nil
}

// Drain atomically returns and clears the whole queue in insertion order.
// The consumer must treat the batch as at-least-once.
func (s *Service) Drain(ctx context.Context) ([]domain.OutboxRecord, error) {
	records, err := s.repo.Drain(ctx)
	if err != nil {
		return nil, fmt.Errorf("drain outbox: %w", err)
	}
	if len(records) > 0 {
		slog.Info("outbox drained", "count", len(records))
	}
	recordDrained(len(records))
	s.syncDepth(ctx)
	return records, nil
}

// syncDepth keeps the depth gauge aligned with the store. Best effort; the
// next mutation corrects any miss.
func (s *Service) syncDepth(ctx context.Context) {
	depth, err := s.repo.Depth(ctx)
	if err != nil {
		slog.Debug("read outbox depth failed", "error", err)
		return
	}
	setQueueDepth(depth)
}
