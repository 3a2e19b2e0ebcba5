package scheduler

import (
	"time"

	"github.com/trudido/remindd/internal/domain"
	"github.com/trudido/remindd/internal/platform"
)

// Tier selection thresholds.
const (
	// deferredHorizon is how far out a target must be before it is parked
	// behind re-evaluation checkpoints instead of a live timer.
	deferredHorizon = 24 * time.Hour

	// minCheckpointDelay bounds how often a far-future target is
	// re-evaluated: wake when it enters the horizon, but never more than
	// twice a day.
	minCheckpointDelay = 12 * time.Hour

	// windowedCutoff is the shortest remaining time worth a windowed wake
	// when exact wakes are denied; anything nearer is delivered right away
	// rather than risking a missed near-term reminder.
	windowedCutoff = 3 * time.Minute

	minWindow = time.Minute
	maxWindow = 5 * time.Minute
)

// SelectTier picks the delivery tier for a target instant. It is a pure
// function of the decision time, the target, and one capability snapshot.
func SelectTier(now, triggerAt time.Time, caps platform.CapabilitySnapshot) domain.DeliveryTier {
	remaining := triggerAt.Sub(now)
	switch {
	case remaining > deferredHorizon:
		return domain.TierDeferredCheckpoint
	case caps.ExactWake:
		return domain.TierExact
	case remaining > windowedCutoff:
		return domain.TierWindowed
	default:
		return domain.TierImmediate
	}
}

// windowLength widens delivery tolerance proportionally with distance,
// clamped so near-term items keep small user-visible slack.
func windowLength(remaining time.Duration) time.Duration {
	w := remaining / 10
	if w < minWindow {
		w = minWindow
	}
	if w > maxWindow {
		w = maxWindow
	}
	return w
}

// checkpointDelay computes the wake-up delay for a deferred target: check
// back when it enters the near horizon, or after half a day at the least.
func checkpointDelay(remaining time.Duration) time.Duration {
	d := remaining - deferredHorizon
	if d < minCheckpointDelay {
		d = minCheckpointDelay
	}
	return d
}
