// Package recompute orchestrates the monthly scoring pipeline: rollup,
// pillar scoring, and snapshot persistence. It is the only component
// with I/O side effects; everything it calls into is pure.
package recompute

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/rollup"
	"github.com/twealth/twealth/pkg/scoring"
)

// Recompute job lifecycle.
const (
	StatusQueued    = "QUEUED"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

const (
	// Generous page size for the transaction fetch; the rollup filters
	// to the target month itself.
	defaultTxFetchLimit = 5000
	historyMonths       = 6
)

// Storage is the persistence collaborator the orchestrator depends on.
// *store.Service implements it.
type Storage interface {
	GetTransactionsByUser(ctx context.Context, userID string, limit int) ([]finance.Transaction, error)
	GetUserDebts(ctx context.Context, userID string) ([]finance.Debt, error)
	GetUserFinancialProfile(ctx context.Context, userID string) (*finance.Profile, error)
	GetFinancialGoalsByUser(ctx context.Context, userID string) ([]finance.Goal, error)
	UpsertMonthlyFinancials(ctx context.Context, mf finance.MonthlyFinancials) error
	GetMonthlyFinancials(ctx context.Context, userID string, fromMonth, toMonth time.Time) ([]finance.MonthlyFinancials, error)
	UpsertScoreSnapshot(ctx context.Context, snap *scoring.ScoreSnapshot) error
	ListUserIDs(ctx context.Context) ([]string, error)
	CreateRecomputeJob(ctx context.Context, id, userID string, month time.Time) error
	UpdateRecomputeJob(ctx context.Context, id, status string, errMsg *string) error
}

// Archiver receives a copy of each persisted snapshot. Optional;
// archive failures are logged, never fatal.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, snap *scoring.ScoreSnapshot) error
}

// Service sequences rollup, scoring, and persistence for one user-month.
type Service struct {
	storage      Storage
	engine       *scoring.Engine
	table        rollup.Classification
	archiver     Archiver // nil disables archiving
	txFetchLimit int
}

// NewService creates a recompute Service.
func NewService(storage Storage, engine *scoring.Engine, table rollup.Classification, archiver Archiver) *Service {
	return &Service{
		storage:      storage,
		engine:       engine,
		table:        table,
		archiver:     archiver,
		txFetchLimit: defaultTxFetchLimit,
	}
}

// Recompute rolls up the target month and rescores the user, returning
// the persisted snapshot. A zero month defaults to the current month.
// Safe to call repeatedly: both writes are upserts keyed by (user,
// month), and the computation is deterministic given the same inputs.
// Storage errors propagate to the caller; there is no internal retry.
func (s *Service) Recompute(ctx context.Context, userID string, month time.Time) (snap *scoring.ScoreSnapshot, err error) {
	if month.IsZero() {
		month = time.Now().UTC()
	}
	month = finance.TruncateMonth(month)

	jobID := uuid.New().String()
	if err := s.storage.CreateRecomputeJob(ctx, jobID, userID, month); err != nil {
		return nil, fmt.Errorf("create recompute job: %w", err)
	}
	if err := s.storage.UpdateRecomputeJob(ctx, jobID, StatusRunning, nil); err != nil {
		return nil, fmt.Errorf("update job to running: %w", err)
	}

	defer func() {
		if err != nil {
			errMsg := err.Error()
			if updateErr := s.storage.UpdateRecomputeJob(ctx, jobID, StatusFailed, &errMsg); updateErr != nil {
				log.Printf("failed to mark recompute job %s failed: %v", jobID, updateErr)
			}
		}
	}()

	// 1. Rollup: fetch inputs and aggregate the target month.
	txs, err := s.storage.GetTransactionsByUser(ctx, userID, s.txFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	debts, err := s.storage.GetUserDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch debts: %w", err)
	}
	profile, err := s.storage.GetUserFinancialProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	// Goals are fetched for parity with the profile snapshot; no pillar
	// consumes them yet.
	if _, err = s.storage.GetFinancialGoalsByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("fetch goals: %w", err)
	}

	mf, err := rollup.BuildMonth(userID, month, txs, debts, profile, s.table)
	if err != nil {
		return nil, fmt.Errorf("build month: %w", err)
	}
	if err = s.storage.UpsertMonthlyFinancials(ctx, mf); err != nil {
		return nil, fmt.Errorf("store monthly financials: %w", err)
	}

	// 2. Load the trailing window, most recent first.
	from := month.AddDate(0, -(historyMonths - 1), 0)
	history, err := s.storage.GetMonthlyFinancials(ctx, userID, from, month)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	// 3. Score. Pure computation; cannot fail on sparse data.
	snap = s.engine.Score(history)
	snap.UserID = userID
	snap.Month = month

	// 4. Persist.
	if err = s.storage.UpsertScoreSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("store score snapshot: %w", err)
	}

	if err := s.storage.UpdateRecomputeJob(ctx, jobID, StatusCompleted, nil); err != nil {
		log.Printf("failed to mark recompute job %s completed: %v", jobID, err)
	}

	if s.archiver != nil {
		if archiveErr := s.archiver.ArchiveSnapshot(ctx, snap); archiveErr != nil {
			log.Printf("archive snapshot %s/%s: %v", userID, month.Format("2006-01"), archiveErr)
		}
	}

	return snap, nil
}

// RecomputeAll recomputes the given month for every known user,
// continuing past per-user failures. Returns completed and failed
// counts.
func (s *Service) RecomputeAll(ctx context.Context, month time.Time) (completed, failed int, err error) {
	userIDs, err := s.storage.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}

	for _, userID := range userIDs {
		if _, err := s.Recompute(ctx, userID, month); err != nil {
			log.Printf("recompute %s: %v", userID, err)
			failed++
			continue
		}
		completed++
	}
	return completed, failed, nil
}
