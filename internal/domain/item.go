// Package domain contains the core types of the reminder engine.
package domain

import "time"

// ScheduledItem is one reminder awaiting delivery. At most one live item
// exists per task ID; a schedule request for an existing ID replaces the
// prior record.
type ScheduledItem struct {
	TaskID    string
	Title     string
	Body      string
	TriggerAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeliveryTier is how a reminder will be brought to the user. It is derived
// from (now, trigger time, platform capabilities) at decision time and never
// stored.
type DeliveryTier string

// Delivery tiers, strongest guarantee first.
const (
	TierExact              DeliveryTier = "exact"
	TierWindowed           DeliveryTier = "windowed"
	TierDeferredCheckpoint DeliveryTier = "deferred_checkpoint"
	TierImmediate          DeliveryTier = "immediate"
)
