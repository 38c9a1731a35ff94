package scoring

import (
	"fmt"
	"math"

	"github.com/twealth/twealth/pkg/finance"
)

// CashflowPillar scores how resilient the month-to-month cash position
// is: net savings rate, fixed-cost load, and income volatility.
type CashflowPillar struct {
	NetWeight        float64
	FixedWeight      float64
	VolatilityWeight float64

	NetOffset         float64 // net ratio of -NetOffset normalizes to 0
	NetRange          float64
	FixedCeiling      float64
	VolatilityCeiling float64

	HistoryMonths int
	FlagThreshold float64
}

func (p *CashflowPillar) Key() string  { return PillarCashflow }
func (p *CashflowPillar) Name() string { return "Cashflow Resilience" }

func (p *CashflowPillar) Evaluate(history []finance.MonthlyFinancials) PillarResult {
	latest := latestMonth(history)
	income := float64(latest.IncomeCents)

	netRatio := SafeDiv(income-float64(latest.ExpenseCents), income)
	fixedRatio := SafeDiv(float64(latest.FixedExpenseCents), income)

	monthly := incomes(window(history, p.HistoryMonths))
	incomeVol := SafeDiv(StdDev(monthly), Mean(monthly))

	a := Clamp((netRatio + p.NetOffset) / p.NetRange)
	b := Clamp(1 - fixedRatio/p.FixedCeiling)
	c := Clamp(1 - incomeVol/p.VolatilityCeiling)

	score := int(math.Round(100 * (p.NetWeight*a + p.FixedWeight*b + p.VolatilityWeight*c)))

	result := PillarResult{
		Key:   p.Key(),
		Name:  p.Name(),
		Score: score,
		Components: map[string]float64{
			"net_ratio":         netRatio,
			"fixed_ratio":       fixedRatio,
			"income_volatility": incomeVol,
			"net_norm":          a,
			"fixed_norm":        b,
			"volatility_norm":   c,
		},
	}

	if a < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Savings rate is low: %.0f%% of income is left after expenses", netRatio*100))
		result.Action = "Trim discretionary spending until at least 10% of income is left over each month."
	}
	if b < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Fixed costs take %.0f%% of income", fixedRatio*100))
		if result.Action == "" {
			result.Action = "Renegotiate or replace one fixed commitment such as rent, a subscription, or a loan."
		}
	}
	if c < p.FlagThreshold {
		result.Drivers = append(result.Drivers, "Income is volatile from month to month")
		if result.Action == "" {
			result.Action = "Build a one-month expense buffer to smooth income swings."
		}
	}
	if len(result.Drivers) == 0 {
		result.Drivers = append(result.Drivers, "Cashflow is healthy: spending sits comfortably below income")
	}

	return result
}
