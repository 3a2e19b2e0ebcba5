package lateness

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trudido/remindd/internal/pkg/httputil"
)

// Handler handles HTTP requests for the lateness prompt.
type Handler struct {
	monitor *Monitor
}

// NewHandler creates a lateness handler.
func NewHandler(monitor *Monitor) *Handler {
	return &Handler{monitor: monitor}
}

// RegisterRoutes registers lateness routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/lateness/consume", h.ConsumePrompt)
}

type promptResponse struct {
	PromptNeeded bool `json:"prompt_needed"`
}

// ConsumePrompt handles POST /v1/lateness/consume. Reading the flag clears
// it and starts the prompt cooldown.
func (h *Handler) ConsumePrompt(w http.ResponseWriter, r *http.Request) {
	needed, err := h.monitor.ConsumePrompt(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, promptResponse{PromptNeeded: needed})
}
