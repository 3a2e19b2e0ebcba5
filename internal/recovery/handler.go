package recovery

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trudido/remindd/internal/pkg/httputil"
)

// Handler exposes reconciliation over HTTP so the host init system can
// signal boot completion, the daemon equivalent of a boot broadcast.
type Handler struct {
	reconciler *Reconciler
}

// NewHandler creates a recovery handler.
func NewHandler(reconciler *Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// RegisterRoutes registers recovery routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reconcile", h.Reconcile)
}

type reconcileRequest struct {
	Mode Mode `json:"mode"`
}

// Reconcile handles POST /v1/reconcile. Mode defaults to startup.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	req := reconcileRequest{Mode: ModeStartup}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if req.Mode != ModeStartup && req.Mode != ModeBoot {
		httputil.Error(w, http.StatusBadRequest, "mode must be startup or boot")
		return
	}

	result, err := h.reconciler.Run(r.Context(), req.Mode)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, result)
}
