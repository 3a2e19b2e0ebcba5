// Package postgres provides the PostgreSQL implementation of the lateness
// window store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trudido/remindd/internal/domain"
)

// Repository implements lateness.Repository using PostgreSQL. The window is
// a single fixed row; migrations seed it, so Load never misses.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Load returns the current lateness window.
func (r *Repository) Load(ctx context.Context) (*domain.LatenessWindow, error) {
	query := `
		SELECT window_start, late_count, prompt_needed, last_prompt_at
		FROM lateness_window
		WHERE id = 1
	`
	var (
		w            domain.LatenessWindow
		windowStart  *time.Time
		lastPromptAt *time.Time
	)
	err := r.db.QueryRow(ctx, query).Scan(&windowStart, &w.LateCount, &w.PromptNeeded, &lastPromptAt)
	if err != nil {
		return nil, fmt.Errorf("load lateness window: %w", err)
	}
	if windowStart != nil {
		w.WindowStart = *windowStart
	}
	if lastPromptAt != nil {
		w.LastPromptAt = *lastPromptAt
	}
	return &w, nil
}

// Save persists the lateness window.
func (r *Repository) Save(ctx context.Context, w *domain.LatenessWindow) error {
	query := `
		UPDATE lateness_window
		SET window_start = $1,
		    late_count = $2,
		    prompt_needed = $3,
		    last_prompt_at = $4,
		    updated_at = now()
		WHERE id = 1
	`
	var windowStart, lastPromptAt *time.Time
	if !w.WindowStart.IsZero() {
		windowStart = &w.WindowStart
	}
	if !w.LastPromptAt.IsZero() {
		lastPromptAt = &w.LastPromptAt
	}
	if _, err := r.db.Exec(ctx, query, windowStart, w.LateCount, w.PromptNeeded, lastPromptAt); err != nil {
		return fmt.Errorf("save lateness window: %w", err)
	}
	return nil
}
