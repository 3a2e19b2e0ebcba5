// Package lateness detects systemically late deliveries. Repeated late
// fires inside a rolling window raise a one-shot prompt flag telling the
// consuming application to nudge the user about power-saving restrictions.
package lateness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Detection thresholds.
const (
	// LateThreshold is how far past its trigger time a fire must land to
	// count as late at all.
	LateThreshold = 2 * time.Minute

	// Window is the length of the (resetting, not sliding) counting window.
	Window = 6 * time.Hour

	// LateCountThreshold is how many late fires inside one window raise
	// the prompt flag.
	LateCountThreshold = 3

	// PromptCooldown is the minimum gap between prompts, measured from
	// when the prompt was consumed, not from when the condition arose.
	PromptCooldown = 48 * time.Hour
)

// Monitor tracks late fires against the persisted lateness window.
// All mutations are serialized; the repository only ever sees one
// read-modify-write at a time.
type Monitor struct {
	mu   sync.Mutex
	repo Repository
	now  func() time.Time
}

// NewMonitor creates a lateness monitor.
func NewMonitor(repo Repository) *Monitor {
	return &Monitor{repo: repo, now: time.Now}
}

// RecordFire records one delivery against its intended trigger time.
// On-time fires are a no-op.
func (m *Monitor) RecordFire(ctx context.Context, scheduledAt, firedAt time.Time) error {
	if scheduledAt.IsZero() {
		return nil
	}
	late := firedAt.Sub(scheduledAt)
	if late < LateThreshold {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load lateness window: %w", err)
	}

	if w.WindowStart.IsZero() || firedAt.Sub(w.WindowStart) > Window {
		w.WindowStart = firedAt
		w.LateCount = 0
	}
	w.LateCount++
	recordLateFire(late)

	if !w.PromptNeeded && w.LateCount >= LateCountThreshold &&
		(w.LastPromptAt.IsZero() || firedAt.Sub(w.LastPromptAt) > PromptCooldown) {
		w.PromptNeeded = true
		recordPromptRaised()
		slog.Info("lateness prompt raised",
			"late_count", w.LateCount,
			"lateness", late,
		)
	}

	if err := m.repo.Save(ctx, w); err != nil {
		return fmt.Errorf("save lateness window: %w", err)
	}
	return nil
}

// ConsumePrompt reports whether the user should be prompted now and clears
// the flag. The cooldown is stamped here so it runs from when the user was
// actually told.
func (m *Monitor) ConsumePrompt(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load lateness window: %w", err)
	}
	if !w.PromptNeeded {
		return false, nil
	}

	w.PromptNeeded = false
	w.LastPromptAt = m.now()
	if err := m.repo.Save(ctx, w); err != nil {
		return false, fmt.Errorf("save lateness window: %w", err)
	}
	return true, nil
}
