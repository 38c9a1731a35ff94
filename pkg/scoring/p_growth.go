package scoring

import (
	"fmt"
	"math"

	"github.com/twealth/twealth/pkg/finance"
)

// GrowthPillar scores the quality of wealth building: saving rate,
// investment rate, income trajectory, and contribution consistency.
type GrowthPillar struct {
	SavingWeight      float64
	InvestWeight      float64
	IncomeWeight      float64
	ConsistencyWeight float64

	SavingRateTarget float64
	InvestRateTarget float64
	GrowthOffset     float64
	GrowthRange      float64

	HistoryMonths int
	RecentMonths  int
	FlagThreshold float64
}

func (p *GrowthPillar) Key() string  { return PillarGrowth }
func (p *GrowthPillar) Name() string { return "Wealth Growth Quality" }

func (p *GrowthPillar) Evaluate(history []finance.MonthlyFinancials) PillarResult {
	latest := latestMonth(history)
	income := float64(latest.IncomeCents)

	savingRate := SafeDiv(income-float64(latest.ExpenseCents), income)
	s := Clamp(savingRate / p.SavingRateTarget)

	investRate := SafeDiv(float64(latest.InvestmentContribCents), income)
	i := Clamp(investRate / p.InvestRateTarget)

	// Income trajectory: average of the recent window against the window
	// before it. With no prior window the growth rate is zero.
	hist := window(history, p.HistoryMonths)
	var incomeGrowth float64
	if len(hist) > p.RecentMonths {
		recentAvg := Mean(incomes(hist[:p.RecentMonths]))
		priorAvg := Mean(incomes(hist[p.RecentMonths:]))
		incomeGrowth = SafeDiv(recentAvg-priorAvg, priorAvg)
	}
	g := Clamp((incomeGrowth + p.GrowthOffset) / p.GrowthRange)

	contributing := 0
	for _, m := range hist {
		if m.InvestmentContribCents > 0 {
			contributing++
		}
	}
	var consistency float64
	if len(hist) > 0 {
		consistency = float64(contributing) / float64(len(hist))
	}
	co := Clamp(consistency)

	score := int(math.Round(100 * (p.SavingWeight*s + p.InvestWeight*i + p.IncomeWeight*g + p.ConsistencyWeight*co)))

	result := PillarResult{
		Key:   p.Key(),
		Name:  p.Name(),
		Score: score,
		Components: map[string]float64{
			"saving_rate":        savingRate,
			"invest_rate":        investRate,
			"income_growth":      incomeGrowth,
			"invest_consistency": consistency,
			"saving_norm":        s,
			"invest_norm":        i,
			"growth_norm":        g,
			"consistency_norm":   co,
		},
	}

	if s < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Little of your income is being saved (%.0f%%)", savingRate*100))
		result.Action = "Set up an automatic transfer of 5-10% of income on payday."
	}
	if i < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Investment contributions are %.0f%% of income", investRate*100))
		if result.Action == "" {
			result.Action = "Direct part of each month's surplus into an investment or retirement account."
		}
	}
	if co < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Investing is irregular: contributions in %d of the last %d months", contributing, len(hist)))
		if result.Action == "" {
			result.Action = "Automate a fixed monthly contribution, even a small one."
		}
	}
	if len(result.Drivers) == 0 {
		result.Drivers = append(result.Drivers, "Wealth is compounding: steady saving and regular investing")
	}

	return result
}
