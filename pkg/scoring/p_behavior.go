package scoring

import (
	"math"

	"github.com/twealth/twealth/pkg/finance"
)

// BehaviorPillar scores financial habits: whether spending stays within
// income and whether transactions keep getting logged at all, since a
// score over unlogged months reflects nothing.
type BehaviorPillar struct {
	BudgetWeight  float64
	LoggingWeight float64

	RecentMonths  int
	FlagThreshold float64
}

func (p *BehaviorPillar) Key() string  { return PillarBehavior }
func (p *BehaviorPillar) Name() string { return "Behavioral Alpha" }

func (p *BehaviorPillar) Evaluate(history []finance.MonthlyFinancials) PillarResult {
	recent := window(history, p.RecentMonths)

	logged := 0
	for _, m := range recent {
		if m.TransactionCount > 0 {
			logged++
		}
	}
	var loggingConsistency float64
	if len(recent) > 0 {
		loggingConsistency = float64(logged) / float64(len(recent))
	}
	ba := Clamp(loggingConsistency)

	latest := latestMonth(history)
	overspend := Clamp(SafeDiv(float64(latest.ExpenseCents), float64(latest.IncomeCents)) - 1)
	bc := Clamp(1 - overspend)

	score := int(math.Round(100 * (p.BudgetWeight*bc + p.LoggingWeight*ba)))

	result := PillarResult{
		Key:   p.Key(),
		Name:  p.Name(),
		Score: score,
		Components: map[string]float64{
			"logging_consistency": loggingConsistency,
			"budget_adherence":    bc,
			"logging_norm":        ba,
			"budget_norm":         bc,
		},
	}

	if bc < p.FlagThreshold {
		result.Drivers = append(result.Drivers, "Spending exceeded income this month")
		result.Action = "Review this month's expenses and set a hard budget cap."
	}
	if ba < p.FlagThreshold {
		result.Drivers = append(result.Drivers, "Few transactions logged in recent months")
		if result.Action == "" {
			result.Action = "Log transactions weekly so your score reflects reality."
		}
	}
	if len(result.Drivers) == 0 {
		result.Drivers = append(result.Drivers, "Good habits: consistent logging and spending within budget")
	}

	return result
}
