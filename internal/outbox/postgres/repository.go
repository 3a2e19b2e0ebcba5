// Package postgres provides the PostgreSQL implementation of the action
// outbox and completion marks.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trudido/remindd/internal/domain"
)

// Repository implements outbox.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Append adds a record to the end of the queue.
func (r *Repository) Append(ctx context.Context, rec *domain.OutboxRecord) error {
	query := `
		INSERT INTO outbox_actions (action_type, task_id, new_trigger_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, rec.Type, rec.TaskID, rec.NewTriggerAt).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

// Drain atomically returns and clears the queue in insertion order.
func (r *Repository) Drain(ctx context.Context) ([]domain.OutboxRecord, error) {
	query := `
		WITH drained AS (
			DELETE FROM outbox_actions
			RETURNING id, action_type, task_id, new_trigger_at, created_at
		)
		SELECT action_type, task_id, new_trigger_at, created_at
		FROM drained
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("drain actions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.OutboxRecord, 0)
	for rows.Next() {
		var rec domain.OutboxRecord
		if err := rows.Scan(&rec.Type, &rec.TaskID, &rec.NewTriggerAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return records, nil
}

// MarkCompletedIfNew durably marks a task completed, reporting false if the
// mark already existed.
func (r *Repository) MarkCompletedIfNew(ctx context.Context, taskID string) (bool, error) {
	query := `
		INSERT INTO completed_marks (task_id)
		VALUES ($1)
		ON CONFLICT (task_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, taskID)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Depth returns the number of queued records.
func (r *Repository) Depth(ctx context.Context) (int, error) {
	var depth int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM outbox_actions`).Scan(&depth); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return depth, nil
}
