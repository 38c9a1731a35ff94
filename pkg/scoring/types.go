// Package scoring implements the Twealth financial health scoring engine.
// It turns a rolling window of monthly aggregates into four explainable
// 0-100 pillar scores, a weighted composite index, a qualitative band, and
// a confidence estimate.
package scoring

import (
	"time"

	"github.com/twealth/twealth/pkg/finance"
)

// PillarResult is the output of a single pillar scorer.
type PillarResult struct {
	Key     string   `json:"key"`   // machine key: "cashflow"
	Name    string   `json:"name"`  // human name: "Cashflow Resilience"
	Score   int      `json:"score"` // 0-100
	Drivers []string `json:"drivers"`
	Action  string   `json:"action,omitempty"` // at most one recommended action
	// Components holds every intermediate ratio for tuning and audit.
	// No consumer logic reads it.
	Components map[string]float64 `json:"components"`
}

// Healthy reports whether the pillar emitted no corrective action.
func (p PillarResult) Healthy() bool { return p.Action == "" }

// OverallDrivers is the synthesized explanation naming the weakest pillar.
type OverallDrivers struct {
	Drivers []string `json:"drivers"`
	Action  string   `json:"action"`
}

// ScoreSnapshot is the complete output of scoring one user-month.
// Immutable once computed; created and overwritten only by the recompute
// orchestrator, read-only everywhere else.
type ScoreSnapshot struct {
	UserID       string         `json:"user_id"`
	Month        time.Time      `json:"month"`
	Cashflow     int            `json:"cashflow"`
	Stability    int            `json:"stability"`
	Growth       int            `json:"growth"`
	Behavior     int            `json:"behavior"`
	TwealthIndex int            `json:"twealth_index"`
	Band         string         `json:"band"`
	Confidence   float64        `json:"confidence"` // 0-1, three decimals
	Pillars      []PillarResult `json:"pillars"`
	Overall      OverallDrivers `json:"overall"`
}

// Qualitative bands for the composite index.
const (
	BandCritical  = "Critical"
	BandNeedsWork = "Needs Work"
	BandGood      = "Good"
	BandGreat     = "Great"
)

// BandFromIndex maps a composite index to its band. Boundary values map
// to the higher band.
func BandFromIndex(index int) string {
	switch {
	case index >= 80:
		return BandGreat
	case index >= 60:
		return BandGood
	case index >= 40:
		return BandNeedsWork
	default:
		return BandCritical
	}
}

// latestMonth returns the most recent record, or a zeroed record when no
// history exists, so scorers never fail on missing data.
func latestMonth(history []finance.MonthlyFinancials) finance.MonthlyFinancials {
	if len(history) == 0 {
		return finance.MonthlyFinancials{}
	}
	return history[0]
}

// window returns the most recent n months of history, or fewer.
func window(history []finance.MonthlyFinancials, n int) []finance.MonthlyFinancials {
	if len(history) <= n {
		return history
	}
	return history[:n]
}

// incomes extracts income values in cents as floats.
func incomes(months []finance.MonthlyFinancials) []float64 {
	vs := make([]float64, len(months))
	for i, m := range months {
		vs[i] = float64(m.IncomeCents)
	}
	return vs
}
