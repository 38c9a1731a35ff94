package recompute_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twealth/twealth/internal/recompute"
	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/rollup"
	"github.com/twealth/twealth/pkg/scoring"
)

type jobRecord struct {
	userID string
	status string
	errMsg *string
}

// fakeStorage is an in-memory Storage for orchestrator tests.
type fakeStorage struct {
	txs      map[string][]finance.Transaction
	debts    map[string][]finance.Debt
	profiles map[string]*finance.Profile

	monthly   map[string]map[time.Time]finance.MonthlyFinancials
	snapshots map[string]map[time.Time]*scoring.ScoreSnapshot
	jobs      map[string]*jobRecord

	failUpsertSnapshot bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		txs:       map[string][]finance.Transaction{},
		debts:     map[string][]finance.Debt{},
		profiles:  map[string]*finance.Profile{},
		monthly:   map[string]map[time.Time]finance.MonthlyFinancials{},
		snapshots: map[string]map[time.Time]*scoring.ScoreSnapshot{},
		jobs:      map[string]*jobRecord{},
	}
}

func (f *fakeStorage) GetTransactionsByUser(_ context.Context, userID string, _ int) ([]finance.Transaction, error) {
	return f.txs[userID], nil
}

func (f *fakeStorage) GetUserDebts(_ context.Context, userID string) ([]finance.Debt, error) {
	return f.debts[userID], nil
}

func (f *fakeStorage) GetUserFinancialProfile(_ context.Context, userID string) (*finance.Profile, error) {
	return f.profiles[userID], nil
}

func (f *fakeStorage) GetFinancialGoalsByUser(_ context.Context, _ string) ([]finance.Goal, error) {
	return nil, nil
}

func (f *fakeStorage) UpsertMonthlyFinancials(_ context.Context, mf finance.MonthlyFinancials) error {
	if f.monthly[mf.UserID] == nil {
		f.monthly[mf.UserID] = map[time.Time]finance.MonthlyFinancials{}
	}
	f.monthly[mf.UserID][mf.Month] = mf
	return nil
}

func (f *fakeStorage) GetMonthlyFinancials(_ context.Context, userID string, fromMonth, toMonth time.Time) ([]finance.MonthlyFinancials, error) {
	var out []finance.MonthlyFinancials
	for m := toMonth; !m.Before(fromMonth); m = m.AddDate(0, -1, 0) {
		if mf, ok := f.monthly[userID][m]; ok {
			out = append(out, mf)
		}
	}
	return out, nil
}

func (f *fakeStorage) UpsertScoreSnapshot(_ context.Context, snap *scoring.ScoreSnapshot) error {
	if f.failUpsertSnapshot {
		return errors.New("disk full")
	}
	if f.snapshots[snap.UserID] == nil {
		f.snapshots[snap.UserID] = map[time.Time]*scoring.ScoreSnapshot{}
	}
	f.snapshots[snap.UserID][snap.Month] = snap
	return nil
}

func (f *fakeStorage) ListUserIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id := range f.txs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStorage) CreateRecomputeJob(_ context.Context, id, userID string, _ time.Time) error {
	f.jobs[id] = &jobRecord{userID: userID, status: recompute.StatusQueued}
	return nil
}

func (f *fakeStorage) UpdateRecomputeJob(_ context.Context, id, status string, errMsg *string) error {
	f.jobs[id].status = status
	f.jobs[id].errMsg = errMsg
	return nil
}

type fakeArchiver struct {
	archived []*scoring.ScoreSnapshot
	fail     bool
}

func (a *fakeArchiver) ArchiveSnapshot(_ context.Context, snap *scoring.ScoreSnapshot) error {
	if a.fail {
		return errors.New("bucket unreachable")
	}
	a.archived = append(a.archived, snap)
	return nil
}

var targetMonth = time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

func seedUser(f *fakeStorage, userID string) {
	f.txs[userID] = []finance.Transaction{
		{ID: "t1", UserID: userID, Type: finance.TypeIncome, Category: "salary",
			Amount: "8000.00", Date: targetMonth.AddDate(0, 0, 1)},
		{ID: "t2", UserID: userID, Type: finance.TypeExpense, Category: "rent",
			Amount: "2400.00", Date: targetMonth.AddDate(0, 0, 2)},
		{ID: "t3", UserID: userID, Type: finance.TypeExpense, Category: "groceries",
			Amount: "2600.00", Date: targetMonth.AddDate(0, 0, 5)},
	}
	f.profiles[userID] = &finance.Profile{UserID: userID, EmergencyFund: "15000.00"}
}

func newTestService(f *fakeStorage, archiver recompute.Archiver) *recompute.Service {
	return recompute.NewService(f, scoring.DefaultEngine(), rollup.DefaultClassification(), archiver)
}

func TestRecomputePersistsRollupAndSnapshot(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	svc := newTestService(f, nil)

	snap, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.NoError(t, err)

	assert.Equal(t, "u1", snap.UserID)
	assert.Equal(t, targetMonth, snap.Month)
	assert.Equal(t, snap.Band, scoring.BandFromIndex(snap.TwealthIndex))
	assert.Len(t, snap.Pillars, 4)

	mf, ok := f.monthly["u1"][targetMonth]
	require.True(t, ok, "monthly financials should be persisted")
	assert.Equal(t, int64(800000), mf.IncomeCents)
	assert.Equal(t, int64(500000), mf.ExpenseCents)
	assert.Equal(t, int64(240000), mf.FixedExpenseCents)
	assert.Equal(t, int64(1500000), mf.EmergencyFundCents)

	stored, ok := f.snapshots["u1"][targetMonth]
	require.True(t, ok, "score snapshot should be persisted")
	assert.Equal(t, snap, stored)

	require.Len(t, f.jobs, 1)
	for _, job := range f.jobs {
		assert.Equal(t, recompute.StatusCompleted, job.status)
		assert.Nil(t, job.errMsg)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	svc := newTestService(f, nil)

	first, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.monthly["u1"], 1, "re-rollup overwrites, never duplicates")
	assert.Len(t, f.snapshots["u1"], 1)
	assert.Len(t, f.jobs, 2, "every run gets its own job record")
}

func TestRecomputeUsesTrailingHistory(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	// Pre-existing aggregates from earlier rollups feed the window.
	for i := 1; i < 6; i++ {
		m := targetMonth.AddDate(0, -i, 0)
		f.monthly["u1"] = mapOrInit(f.monthly["u1"])
		f.monthly["u1"][m] = finance.MonthlyFinancials{
			UserID: "u1", Month: m,
			IncomeCents: 800000, ExpenseCents: 500000,
			InvestmentContribCents: 120000, TransactionCount: 30,
		}
	}
	svc := newTestService(f, nil)

	snap, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.NoError(t, err)

	// Six months of history with investments in five of them: full
	// confidence except the latest month has no contributions recorded,
	// which only matters for growth, not confidence.
	assert.Equal(t, 1.0, snap.Confidence)
}

func TestRecomputeMarksJobFailed(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	f.failUpsertSnapshot = true
	svc := newTestService(f, nil)

	_, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store score snapshot")

	require.Len(t, f.jobs, 1)
	for _, job := range f.jobs {
		assert.Equal(t, recompute.StatusFailed, job.status)
		require.NotNil(t, job.errMsg)
		assert.Contains(t, *job.errMsg, "disk full")
	}
}

func TestRecomputeBadAmountFailsCleanly(t *testing.T) {
	f := newFakeStorage()
	f.txs["u1"] = []finance.Transaction{
		{ID: "t1", UserID: "u1", Type: finance.TypeIncome, Amount: "garbage",
			Date: targetMonth},
	}
	svc := newTestService(f, nil)

	_, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build month")
	assert.Empty(t, f.snapshots["u1"])
}

func TestRecomputeArchivesSnapshot(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	archiver := &fakeArchiver{}
	svc := newTestService(f, archiver)

	snap, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.NoError(t, err)
	require.Len(t, archiver.archived, 1)
	assert.Equal(t, snap, archiver.archived[0])
}

func TestRecomputeArchiveFailureIsNotFatal(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	svc := newTestService(f, &fakeArchiver{fail: true})

	_, err := svc.Recompute(context.Background(), "u1", targetMonth)
	require.NoError(t, err)

	for _, job := range f.jobs {
		assert.Equal(t, recompute.StatusCompleted, job.status)
	}
}

func TestRecomputeAllContinuesPastFailures(t *testing.T) {
	f := newFakeStorage()
	seedUser(f, "u1")
	seedUser(f, "u2")
	f.txs["bad"] = []finance.Transaction{
		{ID: "t1", UserID: "bad", Type: finance.TypeIncome, Amount: "garbage",
			Date: targetMonth},
	}
	svc := newTestService(f, nil)

	completed, failed, err := svc.RecomputeAll(context.Background(), targetMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, completed)
	assert.Equal(t, 1, failed)
	assert.NotEmpty(t, f.snapshots["u1"])
	assert.NotEmpty(t, f.snapshots["u2"])
	assert.Empty(t, f.snapshots["bad"])
}

func mapOrInit(m map[time.Time]finance.MonthlyFinancials) map[time.Time]finance.MonthlyFinancials {
	if m == nil {
		return map[time.Time]finance.MonthlyFinancials{}
	}
	return m
}
