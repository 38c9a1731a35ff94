package scoring

import (
	"fmt"
	"math"

	"github.com/twealth/twealth/pkg/finance"
)

// Pillar keys.
const (
	PillarCashflow  = "cashflow"
	PillarStability = "stability"
	PillarGrowth    = "growth"
	PillarBehavior  = "behavior"
)

// Pillar is the interface all pillar scorers implement.
type Pillar interface {
	// Key returns the machine-readable pillar identifier.
	Key() string
	// Name returns the human-readable pillar name.
	Name() string
	// Evaluate computes the pillar's score over up to six months of
	// history, most recent first. It must tolerate empty or short
	// history without failing.
	Evaluate(history []finance.MonthlyFinancials) PillarResult
}

// Engine runs the configured pillars against a trailing history and
// produces a complete ScoreSnapshot. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	pillars []Pillar
	weights map[string]float64
}

// NewEngine creates a scoring engine. The composite weights must cover
// every pillar and sum to exactly 1.0.
func NewEngine(pillars []Pillar, weights map[string]float64) (*Engine, error) {
	if len(pillars) == 0 {
		return nil, fmt.Errorf("no pillars configured")
	}
	var sum float64
	for _, p := range pillars {
		w, ok := weights[p.Key()]
		if !ok {
			return nil, fmt.Errorf("no composite weight for pillar %q", p.Key())
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("composite weights sum to %.4f, want 1.0", sum)
	}
	return &Engine{pillars: pillars, weights: weights}, nil
}

// DefaultEngine returns an engine with the standard pillars and weights.
func DefaultEngine() *Engine {
	e, err := NewEngine(DefaultPillars(), Defaults().CompositeWeights())
	if err != nil {
		panic(err) // defaults are statically correct
	}
	return e
}

// Score evaluates all pillars over the given history (most recent
// first, at most six months used) and assembles the composite index,
// band, confidence, and overall drivers. It never fails: an empty
// history scores as a zeroed month.
func (e *Engine) Score(history []finance.MonthlyFinancials) *ScoreSnapshot {
	snap := &ScoreSnapshot{}

	var weighted float64
	for _, p := range e.pillars {
		pr := p.Evaluate(history)
		snap.Pillars = append(snap.Pillars, pr)
		weighted += e.weights[p.Key()] * float64(pr.Score)

		switch p.Key() {
		case PillarCashflow:
			snap.Cashflow = pr.Score
		case PillarStability:
			snap.Stability = pr.Score
		case PillarGrowth:
			snap.Growth = pr.Score
		case PillarBehavior:
			snap.Behavior = pr.Score
		}
	}

	snap.TwealthIndex = int(math.Round(weighted))
	snap.Band = BandFromIndex(snap.TwealthIndex)
	snap.Confidence = EstimateConfidence(history)
	snap.Overall = synthesizeOverall(snap.TwealthIndex, snap.Band, snap.Pillars)

	return snap
}

// synthesizeOverall picks the weakest pillar and assembles the overall
// explanation. Ties go to the earlier pillar.
func synthesizeOverall(index int, band string, pillars []PillarResult) OverallDrivers {
	if len(pillars) == 0 {
		return OverallDrivers{}
	}

	weakest := pillars[0]
	for _, p := range pillars[1:] {
		if p.Score < weakest.Score {
			weakest = p
		}
	}

	drivers := []string{
		fmt.Sprintf("Twealth Index %d (%s)", index, band),
		fmt.Sprintf("Weakest pillar: %s (%d)", weakest.Name, weakest.Score),
	}
	if len(weakest.Drivers) > 0 {
		drivers = append(drivers, weakest.Drivers[0])
	}

	action := weakest.Action
	if action == "" {
		action = "All four pillars look healthy. Keep your current habits going."
	}

	return OverallDrivers{Drivers: drivers, Action: action}
}
