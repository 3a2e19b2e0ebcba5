package lateness

import (
	"context"

	"github.com/trudido/remindd/internal/domain"
)

// Repository persists the single process-wide lateness window.
type Repository interface {
	// Load returns the current window, or a zero value if none was saved.
	Load(ctx context.Context) (*domain.LatenessWindow, error)
	Save(ctx context.Context, w *domain.LatenessWindow) error
}
