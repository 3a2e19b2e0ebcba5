package outbox

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trudido/remindd/internal/domain"
	"github.com/trudido/remindd/internal/pkg/httputil"
)

// Handler handles HTTP requests for notification actions and draining.
type Handler struct {
	service *Service
}

// NewHandler creates an outbox handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers outbox routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reminders/{taskID}/complete", h.CompleteReminder)
	r.Post("/reminders/{taskID}/snooze", h.SnoozeReminder)
	r.Post("/outbox/drain", h.DrainOutbox)
}

type completeResponse struct {
	TaskID    string `json:"task_id"`
	Completed bool   `json:"completed"`
}

type snoozeResponse struct {
	TaskID        string `json:"task_id"`
	TriggerTimeMs int64  `json:"trigger_time_ms"`
}

type actionResponse struct {
	Type          domain.ActionType `json:"type"`
	TaskID        string            `json:"task_id"`
	TriggerTimeMs *int64            `json:"trigger_time_ms,omitempty"`
	CreatedAtMs   int64             `json:"created_at_ms"`
}

// CompleteReminder handles POST /v1/reminders/{taskID}/complete.
// Completed reports false when the task was already marked done.
func (h *Handler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	completed, err := h.service.Complete(r.Context(), taskID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, completeResponse{TaskID: taskID, Completed: completed})
}

// SnoozeReminder handles POST /v1/reminders/{taskID}/snooze.
func (h *Handler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	newAt, err := h.service.Snooze(r.Context(), taskID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, snoozeResponse{TaskID: taskID, TriggerTimeMs: newAt.UnixMilli()})
}

// DrainOutbox handles POST /v1/outbox/drain. The whole batch is returned
// and cleared atomically; the consumer applies it idempotently.
func (h *Handler) DrainOutbox(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Drain(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	out := make([]actionResponse, 0, len(records))
	for _, rec := range records {
		resp := actionResponse{
			Type:        rec.Type,
			TaskID:      rec.TaskID,
			CreatedAtMs: rec.CreatedAt.UnixMilli(),
		}
		if rec.NewTriggerAt != nil {
			ms := rec.NewTriggerAt.UnixMilli()
			resp.TriggerTimeMs = &ms
		}
		out = append(out, resp)
	}
	httputil.Success(w, http.StatusOK, out)
}
