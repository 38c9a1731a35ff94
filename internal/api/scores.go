package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/twealth/twealth/pkg/finance"
)

// handleLatestScore returns the most recent score snapshot for a user.
func (h *Handler) handleLatestScore(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	snap, err := h.store.GetLatestScoreSnapshot(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "no score for user "+userID)
			return
		}
		writeError(w, http.StatusInternalServerError, "get score: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handleScoreHistory returns up to ?months= snapshots, newest first.
func (h *Handler) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	months := 12
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid months parameter")
			return
		}
		months = n
	}

	snaps, err := h.store.ListScoreSnapshots(r.Context(), userID, months)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list scores: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

// handleFinancials returns monthly aggregates for [from, to], newest
// first. Defaults to the trailing six months.
func (h *Handler) handleFinancials(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	to := finance.TruncateMonth(time.Now().UTC())
	from := to.AddDate(0, -5, 0)

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from month, want YYYY-MM")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to month, want YYYY-MM")
			return
		}
		to = t
	}

	months, err := h.store.GetMonthlyFinancials(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list financials: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"months": months})
}
