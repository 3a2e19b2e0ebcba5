package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trudido/remindd/internal/domain"
	"github.com/trudido/remindd/internal/lateness"
	"github.com/trudido/remindd/internal/platform"
)

// deliveryPath labels how a reminder reached the user.
type deliveryPath string

const (
	deliveryTimer      deliveryPath = "timer"
	deliveryImmediate  deliveryPath = "immediate"
	deliveryCheckpoint deliveryPath = "checkpoint"
	deliveryRecovery   deliveryPath = "recovery"
)

// Config contains scheduler configuration.
type Config struct {
	// SummaryDebounce is the delay before the group summary is re-checked
	// for collapse after a delivery or dismissal.
	SummaryDebounce time.Duration

	// SummarySampleSize caps the sample titles shown in the summary.
	SummarySampleSize int
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		SummaryDebounce:   350 * time.Millisecond,
		SummarySampleSize: 5,
	}
}

// Scheduler owns tier selection, timer arming, delivery, and cancellation
// for reminders. The persisted item store is always written before any
// timer side effect, so a crash between the two leaves a recoverable
// record rather than a silent loss.
type Scheduler struct {
	config  Config
	repo    Repository
	timers  platform.TimerService
	surface platform.Surface
	monitor *lateness.Monitor
	now     func() time.Time

	mu       sync.Mutex
	pending  map[string]platform.Handle // armed timer or checkpoint per task
	rendered map[string]string          // task ID -> title, feeds the summary
}

// New creates a scheduler.
func New(config Config, repo Repository, timers platform.TimerService, surface platform.Surface, monitor *lateness.Monitor) *Scheduler {
	if config.SummaryDebounce == 0 {
		config.SummaryDebounce = DefaultConfig().SummaryDebounce
	}
	if config.SummarySampleSize == 0 {
		config.SummarySampleSize = DefaultConfig().SummarySampleSize
	}
	return &Scheduler{
		config:   config,
		repo:     repo,
		timers:   timers,
		surface:  surface,
		monitor:  monitor,
		now:      time.Now,
		pending:  make(map[string]platform.Handle),
		rendered: make(map[string]string),
	}
}

// Schedule registers a reminder, replacing any prior registration for the
// same task ID. It reports the delivery tier that was selected.
func (s *Scheduler) Schedule(ctx context.Context, taskID, title, body string, triggerAt time.Time) (domain.DeliveryTier, error) {
	now := s.now()
	item := domain.ScheduledItem{
		TaskID:    taskID,
		Title:     title,
		Body:      body,
		TriggerAt: triggerAt,
	}
	if err := s.repo.Upsert(ctx, &item); err != nil {
		return "", fmt.Errorf("persist item: %w", err)
	}

	tier := SelectTier(now, triggerAt, s.timers.Capabilities())
	recordScheduled(tier)
	slog.Debug("reminder scheduled",
		"task_id", taskID,
		"tier", tier,
		"trigger_at", triggerAt,
		"remaining", triggerAt.Sub(now),
	)

	if tier == domain.TierDeferredCheckpoint {
		s.armCheckpoint(item, triggerAt.Sub(now))
	} else {
		s.armNearHorizon(ctx, item, tier)
	}
	return tier, nil
}

// armNearHorizon arranges delivery for a target inside the 24h horizon.
func (s *Scheduler) armNearHorizon(ctx context.Context, item domain.ScheduledItem, tier domain.DeliveryTier) {
	switch tier {
	case domain.TierExact:
		s.armOneShot(item, true, 0)
	case domain.TierWindowed:
		s.armOneShot(item, false, windowLength(item.TriggerAt.Sub(s.now())))
	default:
		// Near-term with exact wakes denied: better to ring early than
		// not at all.
		slog.Warn("exact wake unavailable for near-term reminder, delivering now", "task_id", item.TaskID)
		s.deliverKeep(ctx, item, deliveryImmediate)
	}
}

// registration carries a timer handle back into its own fire callback, so
// a stale fire racing past a reschedule can only clear its own pending
// entry, never a successor's.
type registration struct {
	handle platform.Handle
}

func (s *Scheduler) armOneShot(item domain.ScheduledItem, exact bool, window time.Duration) {
	reg := &registration{}
	handle, err := s.timers.ArmOneShot(item.TriggerAt, exact, window, func(ctx context.Context) {
		s.handleFire(ctx, item, reg)
	})
	if err != nil {
		slog.Error("arm one-shot failed", "task_id", item.TaskID, "error", err)
		return
	}
	s.trackHandle(item.TaskID, reg, handle)
}

// trackHandle records the pending registration for a task, cancelling any
// registration it supersedes.
func (s *Scheduler) trackHandle(taskID string, reg *registration, handle platform.Handle) {
	s.mu.Lock()
	reg.handle = handle
	prev, ok := s.pending[taskID]
	s.pending[taskID] = handle
	s.mu.Unlock()
	if ok {
		s.timers.Cancel(prev)
	}
}

// untrack clears the pending entry for a task only while it still belongs
// to the given registration.
func (s *Scheduler) untrack(taskID string, reg *registration) {
	s.mu.Lock()
	if handle, ok := s.pending[taskID]; ok && handle == reg.handle {
		delete(s.pending, taskID)
	}
	s.mu.Unlock()
}

// handleFire is the delivery handler for armed one-shots. The item stays
// persisted until the user acts on it or a reschedule supersedes it.
func (s *Scheduler) handleFire(ctx context.Context, item domain.ScheduledItem, reg *registration) {
	s.untrack(item.TaskID, reg)

	// Lateness is measured against the intended trigger time.
	if err := s.monitor.RecordFire(ctx, item.TriggerAt, s.now()); err != nil {
		slog.Error("record fire failed", "task_id", item.TaskID, "error", err)
	}
	s.deliverKeep(ctx, item, deliveryTimer)
}

// deliverKeep renders the reminder without touching its persisted record.
func (s *Scheduler) deliverKeep(ctx context.Context, item domain.ScheduledItem, path deliveryPath) {
	if err := s.surface.Render(ctx, item.TaskID, item.Title, item.Body); err != nil {
		slog.Error("render failed", "task_id", item.TaskID, "error", err)
	}
	recordDelivered(path)

	s.mu.Lock()
	s.rendered[item.TaskID] = item.Title
	s.mu.Unlock()
	s.updateSummary(ctx)
}

// deliverRemove renders the reminder and deletes its record; used when the
// target passed while the engine could not observe it.
func (s *Scheduler) deliverRemove(ctx context.Context, item domain.ScheduledItem, path deliveryPath) error {
	s.deliverKeep(ctx, item, path)
	if err := s.repo.Remove(ctx, item.TaskID); err != nil {
		return fmt.Errorf("remove delivered item: %w", err)
	}
	return nil
}

// DeliverNow renders an overdue reminder immediately and removes its
// persisted record. Used by the recovery reconciler for items whose trigger
// passed within the delivery grace period.
func (s *Scheduler) DeliverNow(ctx context.Context, item domain.ScheduledItem) error {
	return s.deliverRemove(ctx, item, deliveryRecovery)
}

// Cancel removes a reminder: persisted record, pending timer or checkpoint,
// and any already-rendered notification. Unknown task IDs are a no-op.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) error {
	if err := s.repo.Remove(ctx, taskID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	s.mu.Lock()
	handle, armed := s.pending[taskID]
	delete(s.pending, taskID)
	delete(s.rendered, taskID)
	s.mu.Unlock()
	if armed {
		s.timers.Cancel(handle)
	}

	if err := s.surface.Retract(ctx, taskID); err != nil {
		slog.Error("retract failed", "task_id", taskID, "error", err)
	}
	recordCanceled()
	s.updateSummary(ctx)
	return nil
}

// Retract dismisses the rendered notification for a task without touching
// its persisted record or pending timers.
func (s *Scheduler) Retract(ctx context.Context, taskID string) {
	s.mu.Lock()
	delete(s.rendered, taskID)
	s.mu.Unlock()

	if err := s.surface.Retract(ctx, taskID); err != nil {
		slog.Error("retract failed", "task_id", taskID, "error", err)
	}
	s.updateSummary(ctx)
}

// updateSummary refreshes the aggregate entry, then re-checks shortly after
// so rapid sequential dismissals do not leave a stale summary behind.
func (s *Scheduler) updateSummary(ctx context.Context) {
	s.refreshSummary(ctx)
	time.AfterFunc(s.config.SummaryDebounce, func() {
		s.refreshSummary(context.Background())
	})
}

func (s *Scheduler) refreshSummary(ctx context.Context) {
	s.mu.Lock()
	count := len(s.rendered)
	titles := make([]string, 0, s.config.SummarySampleSize)
	for _, title := range s.rendered {
		if len(titles) == s.config.SummarySampleSize {
			break
		}
		titles = append(titles, title)
	}
	s.mu.Unlock()

	if count < 2 {
		titles = nil
	}
	if err := s.surface.RenderSummary(ctx, count, titles); err != nil {
		slog.Error("render summary failed", "count", count, "error", err)
	}
}
