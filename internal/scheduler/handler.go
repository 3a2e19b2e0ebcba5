package scheduler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/trudido/remindd/internal/domain"
	"github.com/trudido/remindd/internal/pkg/httputil"
)

// Handler handles HTTP requests for reminder scheduling.
type Handler struct {
	sched     *Scheduler
	repo      Repository
	validator *validator.Validate
}

// NewHandler creates a scheduling handler.
func NewHandler(sched *Scheduler, repo Repository) *Handler {
	return &Handler{
		sched:     sched,
		repo:      repo,
		validator: validator.New(),
	}
}

// RegisterRoutes registers scheduling routes. Flat patterns so the action
// routes in the outbox handler can share the /reminders prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reminders", h.ListReminders)
	r.Post("/reminders", h.ScheduleReminder)
	r.Delete("/reminders/{taskID}", h.CancelReminder)
}

// ScheduleRequest is the request body for scheduling a reminder.
type ScheduleRequest struct {
	TaskID        string `json:"task_id" validate:"required"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	TriggerTimeMs int64  `json:"trigger_time_ms" validate:"required,gt=0"`
}

type scheduleResponse struct {
	TaskID        string              `json:"task_id"`
	Tier          domain.DeliveryTier `json:"tier"`
	TriggerTimeMs int64               `json:"trigger_time_ms"`
}

type reminderResponse struct {
	TaskID        string `json:"task_id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	TriggerTimeMs int64  `json:"trigger_time_ms"`
}

// ScheduleReminder handles POST /v1/reminders.
func (h *Handler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	triggerAt := time.UnixMilli(req.TriggerTimeMs)
	tier, err := h.sched.Schedule(r.Context(), req.TaskID, req.Title, req.Body, triggerAt)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusCreated, scheduleResponse{
		TaskID:        req.TaskID,
		Tier:          tier,
		TriggerTimeMs: req.TriggerTimeMs,
	})
}

// CancelReminder handles DELETE /v1/reminders/{taskID}. Cancelling an
// unknown task ID succeeds.
func (h *Handler) CancelReminder(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if err := h.sched.Cancel(r.Context(), taskID); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReminders handles GET /v1/reminders.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.All(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	out := make([]reminderResponse, 0, len(items))
	for _, item := range items {
		out = append(out, reminderResponse{
			TaskID:        item.TaskID,
			Title:         item.Title,
			Body:          item.Body,
			TriggerTimeMs: item.TriggerAt.UnixMilli(),
		})
	}
	httputil.Success(w, http.StatusOK, out)
}
