package handler

import (
	"net/http"

	"github.com/cfwatch/cfwatch-data/internal/api/respond"
)

// TriggerSync runs a full sync cycle on demand. Returns 409 when a cycle is
// already in flight — cycles never overlap, manual or scheduled.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	result, started := h.scheduler.TryRun(r.Context())
	if !started {
		respond.WriteError(w, http.StatusConflict, "CYCLE_RUNNING", "A sync cycle is already running")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"summary": result.Summary(),
		"cycle":   result,
	})
}
