// Package platform defines the host services the engine consumes: the
// one-shot timer primitive and the notification rendering surface.
package platform

import (
	"context"
	"time"
)

// Handle identifies a pending timer registration.
type Handle string

// FireFunc runs when a timer elapses.
type FireFunc func(ctx context.Context)

// CapabilitySnapshot holds the platform capabilities observed at one
// decision point. Tier selection is a pure function of a snapshot, never of
// live capability queries.
type CapabilitySnapshot struct {
	// ExactWake reports whether the platform currently grants precise
	// one-shot wakes. The grant is revocable at any time.
	ExactWake bool
}

// TimerService is the host's one-shot timer primitive.
type TimerService interface {
	// ArmOneShot arranges fire to run at the given instant. When exact is
	// false the fire may land anywhere inside [at, at+window].
	ArmOneShot(at time.Time, exact bool, window time.Duration, fire FireFunc) (Handle, error)

	// ArmCheckpoint arranges fire to run after delay. A second checkpoint
	// armed under the same name replaces the pending one, never doubles it.
	ArmCheckpoint(name string, delay time.Duration, fire FireFunc) (Handle, error)

	// Cancel discards a pending registration. Cancelling an unknown or
	// already-fired handle is a no-op. A fire already in flight is not
	// retroactively suppressed.
	Cancel(handle Handle)

	// Capabilities captures the current capability state.
	Capabilities() CapabilitySnapshot
}

// Surface is the notification rendering surface. Rendering is keyed by task
// ID: rendering the same ID again replaces the visible notification.
// Surface failures are best-effort for callers; they are logged at the call
// site and never propagate into scheduling state.
type Surface interface {
	Render(ctx context.Context, taskID, title, body string) error
	Retract(ctx context.Context, taskID string) error

	// RenderSummary shows an aggregate "N pending reminders" entry with up
	// to a few sample titles. A count below two collapses the summary.
	RenderSummary(ctx context.Context, count int, sampleTitles []string) error
}
