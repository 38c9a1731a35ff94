// Package store is the Postgres storage collaborator for the scoring
// core: raw transactions, debt and profile snapshots, monthly rollups,
// and score snapshots.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/scoring"
)

// Service provides persistence backed by Postgres.
type Service struct {
	db *sql.DB
}

// NewService creates a new store Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// GetTransactionsByUser returns the user's most recent transactions,
// newest first, bounded by limit. Amounts come back as decimal strings;
// conversion to cents happens once, in the rollup.
func (s *Service) GetTransactionsByUser(ctx context.Context, userID string, limit int) ([]finance.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, category, COALESCE(destination, ''), amount::text, occurred_at
		 FROM transactions WHERE user_id = $1
		 ORDER BY occurred_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []finance.Transaction
	for rows.Next() {
		var t finance.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Category, &t.Destination, &t.Amount, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// GetUserDebts returns all debt records for a user.
func (s *Service) GetUserDebts(ctx context.Context, userID string) ([]finance.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, balance::text FROM debts WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []finance.Debt
	for rows.Next() {
		var d finance.Debt
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Balance); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// GetUserFinancialProfile returns the user's profile, or (nil, nil) if
// none exists yet.
func (s *Service) GetUserFinancialProfile(ctx context.Context, userID string) (*finance.Profile, error) {
	p := &finance.Profile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, emergency_fund::text FROM financial_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.EmergencyFund)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile for %s: %w", userID, err)
	}
	return p, nil
}

// GetFinancialGoalsByUser returns all goals for a user.
func (s *Service) GetFinancialGoalsByUser(ctx context.Context, userID string) ([]finance.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount::text, target_date
		 FROM financial_goals WHERE user_id = $1 ORDER BY target_date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []finance.Goal
	for rows.Next() {
		var g finance.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.TargetDate); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpsertMonthlyFinancials writes one month's aggregate, keyed by
// (user_id, month). Re-running a rollup overwrites the existing row.
func (s *Service) UpsertMonthlyFinancials(ctx context.Context, mf finance.MonthlyFinancials) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monthly_financials
		   (user_id, month, income_cents, expense_cents, fixed_expense_cents,
		    emergency_fund_cents, total_debt_cents, investment_contrib_cents,
		    insured_amount_cents, transaction_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id, month) DO UPDATE SET
		   income_cents = EXCLUDED.income_cents,
		   expense_cents = EXCLUDED.expense_cents,
		   fixed_expense_cents = EXCLUDED.fixed_expense_cents,
		   emergency_fund_cents = EXCLUDED.emergency_fund_cents,
		   total_debt_cents = EXCLUDED.total_debt_cents,
		   investment_contrib_cents = EXCLUDED.investment_contrib_cents,
		   insured_amount_cents = EXCLUDED.insured_amount_cents,
		   transaction_count = EXCLUDED.transaction_count,
		   updated_at = now()`,
		mf.UserID, mf.Month, mf.IncomeCents, mf.ExpenseCents, mf.FixedExpenseCents,
		mf.EmergencyFundCents, mf.TotalDebtCents, mf.InvestmentContribCents,
		mf.InsuredAmountCents, mf.TransactionCount,
	)
	if err != nil {
		return fmt.Errorf("upsert monthly financials %s/%s: %w", mf.UserID, mf.Month.Format("2006-01"), err)
	}
	return nil
}

// GetMonthlyFinancials returns aggregates for [fromMonth, toMonth],
// most recent first.
func (s *Service) GetMonthlyFinancials(ctx context.Context, userID string, fromMonth, toMonth time.Time) ([]finance.MonthlyFinancials, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, month, income_cents, expense_cents, fixed_expense_cents,
		        emergency_fund_cents, total_debt_cents, investment_contrib_cents,
		        insured_amount_cents, transaction_count
		 FROM monthly_financials
		 WHERE user_id = $1 AND month >= $2 AND month <= $3
		 ORDER BY month DESC`,
		userID, fromMonth, toMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("list monthly financials: %w", err)
	}
	defer rows.Close()

	var months []finance.MonthlyFinancials
	for rows.Next() {
		var mf finance.MonthlyFinancials
		if err := rows.Scan(&mf.UserID, &mf.Month, &mf.IncomeCents, &mf.ExpenseCents, &mf.FixedExpenseCents,
			&mf.EmergencyFundCents, &mf.TotalDebtCents, &mf.InvestmentContribCents,
			&mf.InsuredAmountCents, &mf.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan monthly financials: %w", err)
		}
		months = append(months, mf)
	}
	return months, rows.Err()
}

// UpsertScoreSnapshot writes one score snapshot, keyed by (user_id,
// month). Pillar results and overall drivers are stored as JSONB.
func (s *Service) UpsertScoreSnapshot(ctx context.Context, snap *scoring.ScoreSnapshot) error {
	pillarsJSON, err := json.Marshal(snap.Pillars)
	if err != nil {
		return fmt.Errorf("marshal pillars: %w", err)
	}
	overallJSON, err := json.Marshal(snap.Overall)
	if err != nil {
		return fmt.Errorf("marshal overall: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO score_snapshots
		   (user_id, month, cashflow, stability, growth, behavior,
		    twealth_index, band, confidence, pillars, overall)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id, month) DO UPDATE SET
		   cashflow = EXCLUDED.cashflow,
		   stability = EXCLUDED.stability,
		   growth = EXCLUDED.growth,
		   behavior = EXCLUDED.behavior,
		   twealth_index = EXCLUDED.twealth_index,
		   band = EXCLUDED.band,
		   confidence = EXCLUDED.confidence,
		   pillars = EXCLUDED.pillars,
		   overall = EXCLUDED.overall,
		   updated_at = now()`,
		snap.UserID, snap.Month, snap.Cashflow, snap.Stability, snap.Growth, snap.Behavior,
		snap.TwealthIndex, snap.Band, snap.Confidence, pillarsJSON, overallJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert score snapshot %s/%s: %w", snap.UserID, snap.Month.Format("2006-01"), err)
	}
	return nil
}

func scanSnapshot(scan func(dest ...any) error) (*scoring.ScoreSnapshot, error) {
	snap := &scoring.ScoreSnapshot{}
	var pillarsJSON, overallJSON []byte
	if err := scan(&snap.UserID, &snap.Month, &snap.Cashflow, &snap.Stability, &snap.Growth,
		&snap.Behavior, &snap.TwealthIndex, &snap.Band, &snap.Confidence,
		&pillarsJSON, &overallJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pillarsJSON, &snap.Pillars); err != nil {
		return nil, fmt.Errorf("unmarshal pillars: %w", err)
	}
	if err := json.Unmarshal(overallJSON, &snap.Overall); err != nil {
		return nil, fmt.Errorf("unmarshal overall: %w", err)
	}
	return snap, nil
}

const snapshotColumns = `user_id, month, cashflow, stability, growth, behavior,
	twealth_index, band, confidence::float8, pillars, overall`

// GetLatestScoreSnapshot returns the most recent snapshot for a user.
func (s *Service) GetLatestScoreSnapshot(ctx context.Context, userID string) (*scoring.ScoreSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+`
		 FROM score_snapshots WHERE user_id = $1
		 ORDER BY month DESC LIMIT 1`,
		userID,
	)
	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get latest snapshot for %s: %w", userID, err)
	}
	return snap, nil
}

// ListScoreSnapshots returns up to limit snapshots for a user, most
// recent first.
func (s *Service) ListScoreSnapshots(ctx context.Context, userID string, limit int) ([]scoring.ScoreSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+`
		 FROM score_snapshots WHERE user_id = $1
		 ORDER BY month DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []scoring.ScoreSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// ListUserIDs returns every user that has logged at least one
// transaction, for the scheduled recompute sweep.
func (s *Service) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM transactions ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateRecomputeJob records a new recompute attempt.
func (s *Service) CreateRecomputeJob(ctx context.Context, id, userID string, month time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recompute_jobs (id, user_id, month) VALUES ($1, $2, $3)`,
		id, userID, month,
	)
	if err != nil {
		return fmt.Errorf("create recompute job: %w", err)
	}
	return nil
}

// UpdateRecomputeJob updates a job's status and optional error message.
func (s *Service) UpdateRecomputeJob(ctx context.Context, id, status string, errMsg *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE recompute_jobs SET status = $1, error_message = $2, updated_at = now() WHERE id = $3`,
		status, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("update recompute job: %w", err)
	}
	return nil
}
