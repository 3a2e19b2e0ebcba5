package outbox

import (
	"context"

	"github.com/trudido/remindd/internal/domain"
)

// Repository persists the action outbox and the completion marks.
type Repository interface {
	// Append adds a record to the end of the queue.
	Append(ctx context.Context, rec *domain.OutboxRecord) error

	// Drain atomically returns and clears the queue in insertion order.
	Drain(ctx context.Context) ([]domain.OutboxRecord, error)

	// MarkCompletedIfNew durably marks a task completed, reporting false
	// if the mark already existed.
	MarkCompletedIfNew(ctx context.Context, taskID string) (bool, error)

	// Depth returns the number of queued records.
	Depth(ctx context.Context) (int, error)
}
