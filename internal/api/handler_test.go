package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/twealth/twealth/internal/api"
	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/scoring"
)

type fakeRecomputer struct {
	lastUserID string
	lastMonth  time.Time
	err        error
}

func (f *fakeRecomputer) Recompute(_ context.Context, userID string, month time.Time) (*scoring.ScoreSnapshot, error) {
	f.lastUserID = userID
	f.lastMonth = month
	if f.err != nil {
		return nil, f.err
	}
	return &scoring.ScoreSnapshot{
		UserID:       userID,
		Month:        finance.TruncateMonth(month),
		TwealthIndex: 86,
		Band:         scoring.BandGreat,
		Confidence:   1.0,
	}, nil
}

type fakeStore struct {
	snapshots  map[string]*scoring.ScoreSnapshot
	financials []finance.MonthlyFinancials
}

func (f *fakeStore) GetLatestScoreSnapshot(_ context.Context, userID string) (*scoring.ScoreSnapshot, error) {
	snap, ok := f.snapshots[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return snap, nil
}

func (f *fakeStore) ListScoreSnapshots(_ context.Context, userID string, limit int) ([]scoring.ScoreSnapshot, error) {
	snap, ok := f.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return []scoring.ScoreSnapshot{*snap}, nil
}

func (f *fakeStore) GetMonthlyFinancials(_ context.Context, userID string, fromMonth, toMonth time.Time) ([]finance.MonthlyFinancials, error) {
	return f.financials, nil
}

func newTestServer(store *fakeStore, rec *fakeRecomputer) *httptest.Server {
	mux := http.NewServeMux()
	api.NewHandler(store, rec).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func TestRecomputeEndpoint(t *testing.T) {
	rec := &fakeRecomputer{}
	srv := newTestServer(&fakeStore{}, rec)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/recompute", "application/json",
		strings.NewReader(`{"user_id": "u1", "month": "2026-07"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if rec.lastUserID != "u1" {
		t.Errorf("recompute called with user %q, want u1", rec.lastUserID)
	}
	if got := rec.lastMonth.Format("2006-01"); got != "2026-07" {
		t.Errorf("recompute called with month %s, want 2026-07", got)
	}

	var snap scoring.ScoreSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.TwealthIndex != 86 {
		t.Errorf("twealth_index = %d, want 86", snap.TwealthIndex)
	}
}

func TestRecomputeEndpointValidation(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeRecomputer{})
	defer srv.Close()

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing user", `{"month": "2026-07"}`},
		{"bad month", `{"user_id": "u1", "month": "July 2026"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/recompute", "application/json",
				strings.NewReader(tc.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRecomputeEndpointFailure(t *testing.T) {
	rec := &fakeRecomputer{err: errors.New("database down")}
	srv := newTestServer(&fakeStore{}, rec)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/recompute", "application/json",
		strings.NewReader(`{"user_id": "u1"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestLatestScoreEndpoint(t *testing.T) {
	store := &fakeStore{snapshots: map[string]*scoring.ScoreSnapshot{
		"u1": {UserID: "u1", TwealthIndex: 72, Band: scoring.BandGood},
	}}
	srv := newTestServer(store, &fakeRecomputer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/u1/score")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var snap scoring.ScoreSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.TwealthIndex != 72 || snap.Band != scoring.BandGood {
		t.Errorf("got index %d band %q", snap.TwealthIndex, snap.Band)
	}
}

func TestLatestScoreNotFound(t *testing.T) {
	srv := newTestServer(&fakeStore{snapshots: map[string]*scoring.ScoreSnapshot{}}, &fakeRecomputer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/nobody/score")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestScoreHistoryEndpoint(t *testing.T) {
	store := &fakeStore{snapshots: map[string]*scoring.ScoreSnapshot{
		"u1": {UserID: "u1", TwealthIndex: 72},
	}}
	srv := newTestServer(store, &fakeRecomputer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/u1/score/history?months=3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Snapshots []scoring.ScoreSnapshot `json:"snapshots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Snapshots) != 1 {
		t.Errorf("got %d snapshots, want 1", len(body.Snapshots))
	}
}

func TestScoreHistoryRejectsBadMonths(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeRecomputer{})
	defer srv.Close()

	for _, q := range []string{"months=0", "months=-2", "months=abc"} {
		resp, err := http.Get(srv.URL + "/api/v1/users/u1/score/history?" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestFinancialsEndpoint(t *testing.T) {
	store := &fakeStore{financials: []finance.MonthlyFinancials{
		{UserID: "u1", IncomeCents: 800000, ExpenseCents: 500000},
	}}
	srv := newTestServer(store, &fakeRecomputer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/u1/financials?from=2026-02&to=2026-07")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Months []finance.MonthlyFinancials `json:"months"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Months) != 1 || body.Months[0].IncomeCents != 800000 {
		t.Errorf("unexpected months payload: %+v", body.Months)
	}
}

func TestFinancialsRejectsBadRange(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeRecomputer{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/u1/financials?from=Feb-2026")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
