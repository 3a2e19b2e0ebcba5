package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trudido/remindd/internal/domain"
	"github.com/trudido/remindd/internal/platform"
)

func TestSelectTier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining time.Duration
		exactWake bool
		expected  domain.DeliveryTier
	}{
		{"far future", 30 * 24 * time.Hour, true, domain.TierDeferredCheckpoint},
		{"just past horizon", 24*time.Hour + time.Second, true, domain.TierDeferredCheckpoint},
		{"exactly at horizon", 24 * time.Hour, true, domain.TierExact},
		{"near with exact wake", time.Hour, true, domain.TierExact},
		{"imminent with exact wake", time.Minute, true, domain.TierExact},
		{"past due with exact wake", -time.Minute, true, domain.TierExact},
		{"near without exact wake", time.Hour, false, domain.TierWindowed},
		{"just above windowed cutoff", 3*time.Minute + time.Second, false, domain.TierWindowed},
		{"exactly at windowed cutoff", 3 * time.Minute, false, domain.TierImmediate},
		{"imminent without exact wake", time.Minute, false, domain.TierImmediate},
		{"past due without exact wake", -time.Minute, false, domain.TierImmediate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := SelectTier(now, now.Add(tt.remaining), platform.CapabilitySnapshot{ExactWake: tt.exactWake})
			assert.Equal(t, tt.expected, tier)
		})
	}
}

func TestWindowLength(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		expected  time.Duration
	}{
		{"clamped to minimum", 5 * time.Minute, time.Minute},
		{"proportional", 30 * time.Minute, 3 * time.Minute},
		{"clamped to maximum", 2 * time.Hour, 5 * time.Minute},
		{"at lower knee", 10 * time.Minute, time.Minute},
		{"at upper knee", 50 * time.Minute, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, windowLength(tt.remaining))
		})
	}
}

func TestCheckpointDelay(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		expected  time.Duration
	}{
		{"far future wakes at horizon entry", 100 * 24 * time.Hour, 99 * 24 * time.Hour},
		{"two days out", 48 * time.Hour, 24 * time.Hour},
		{"just past horizon clamps to half day", 25 * time.Hour, 12 * time.Hour},
		{"thirty hours out clamps to half day", 30 * time.Hour, 12 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checkpointDelay(tt.remaining))
		})
	}
}
