// Package api implements the hosted Twealth REST API: recompute and
// read endpoints backed by Postgres.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/scoring"
)

// Recomputer triggers a recompute for one user-month.
type Recomputer interface {
	Recompute(ctx context.Context, userID string, month time.Time) (*scoring.ScoreSnapshot, error)
}

// Store is the read surface the API serves from.
type Store interface {
	GetLatestScoreSnapshot(ctx context.Context, userID string) (*scoring.ScoreSnapshot, error)
	ListScoreSnapshots(ctx context.Context, userID string, limit int) ([]scoring.ScoreSnapshot, error)
	GetMonthlyFinancials(ctx context.Context, userID string, fromMonth, toMonth time.Time) ([]finance.MonthlyFinancials, error)
}

// Handler is the top-level API handler.
type Handler struct {
	store     Store
	recompute Recomputer
}

// NewHandler creates a new API handler.
func NewHandler(store Store, recompute Recomputer) *Handler {
	return &Handler{store: store, recompute: recompute}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/recompute", h.handleRecompute)
	mux.HandleFunc("GET /api/v1/users/{userID}/score", h.handleLatestScore)
	mux.HandleFunc("GET /api/v1/users/{userID}/score/history", h.handleScoreHistory)
	mux.HandleFunc("GET /api/v1/users/{userID}/financials", h.handleFinancials)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
