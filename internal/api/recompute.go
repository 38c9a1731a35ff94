package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type recomputeRequest struct {
	UserID string `json:"user_id"`
	Month  string `json:"month"` // "2006-01", optional; defaults to the current month
}

// handleRecompute runs the full rollup + scoring pipeline for one
// user-month and returns the persisted snapshot. Safe to call
// repeatedly; the underlying writes are idempotent upserts.
func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var month time.Time
	if req.Month != "" {
		var err error
		month, err = time.Parse("2006-01", req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q, want YYYY-MM", req.Month))
			return
		}
	}

	snap, err := h.recompute.Recompute(r.Context(), req.UserID, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recompute failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
