// Package scheduler implements tier selection, timer arming, and delivery
// for reminders.
package scheduler

import (
	"context"

	"github.com/trudido/remindd/internal/domain"
)

// Repository is the persistent item store. It must be crash-consistent: a
// process kill between an upsert and any later scheduling action leaves the
// store holding the most recent write, so All after a restart is
// authoritative for recovery.
type Repository interface {
	// Upsert atomically replaces any existing item with the same task ID.
	Upsert(ctx context.Context, item *domain.ScheduledItem) error

	// Remove deletes an item. Removing an unknown task ID is a no-op.
	Remove(ctx context.Context, taskID string) error

	// All returns a snapshot of every persisted item.
	All(ctx context.Context) ([]domain.ScheduledItem, error)
}
