// Package postgres provides the PostgreSQL implementation of the scheduled
// item store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trudido/remindd/internal/domain"
)

// Repository implements scheduler.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert atomically replaces any existing item with the same task ID.
func (r *Repository) Upsert(ctx context.Context, item *domain.ScheduledItem) error {
	query := `
		INSERT INTO scheduled_items (task_id, title, body, trigger_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (task_id) DO UPDATE
		SET title = EXCLUDED.title,
		    body = EXCLUDED.body,
		    trigger_at = EXCLUDED.trigger_at,
		    updated_at = now()
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.TaskID,
		item.Title,
		item.Body,
		item.TriggerAt,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// Remove deletes an item. Removing an unknown task ID is a no-op.
func (r *Repository) Remove(ctx context.Context, taskID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM scheduled_items WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// All returns a snapshot of every persisted item, oldest trigger first.
func (r *Repository) All(ctx context.Context) ([]domain.ScheduledItem, error) {
	query := `
		SELECT task_id, title, body, trigger_at, created_at, updated_at
		FROM scheduled_items
		ORDER BY trigger_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ScheduledItem, 0)
	for rows.Next() {
		var item domain.ScheduledItem
		err := rows.Scan(
			&item.TaskID,
			&item.Title,
			&item.Body,
			&item.TriggerAt,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
