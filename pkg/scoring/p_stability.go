package scoring

import (
	"fmt"
	"math"

	"github.com/twealth/twealth/pkg/finance"
)

// StabilityPillar scores resilience to shocks: emergency-fund runway on a
// log curve, debt leverage on an exponential decay, and insurance
// protection.
type StabilityPillar struct {
	LiquidityWeight  float64
	LeverageWeight   float64
	ProtectionWeight float64

	SaturationMonths float64 // runway months at which the log curve reaches 1.0
	LeverageDecay    float64

	RecentMonths  int
	FlagThreshold float64
}

func (p *StabilityPillar) Key() string  { return PillarStability }
func (p *StabilityPillar) Name() string { return "Stability & Risk" }

func (p *StabilityPillar) Evaluate(history []finance.MonthlyFinancials) PillarResult {
	latest := latestMonth(history)
	expense := float64(latest.ExpenseCents)

	// Months of runway, log-shaped so the first months of coverage count
	// far more than the sixth.
	coverage := SafeDiv(float64(latest.EmergencyFundCents), expense)
	l := Clamp(math.Log(coverage+1) / math.Log(p.SaturationMonths+1))

	annualIncome := Mean(incomes(window(history, p.RecentMonths))) * 12
	leverage := SafeDiv(float64(latest.TotalDebtCents), annualIncome)
	d := Clamp(math.Exp(-p.LeverageDecay * leverage))

	// Insurance tracking is not implemented yet; insured amount is always
	// zero, so this component contributes its minimum.
	protection := SafeDiv(float64(latest.InsuredAmountCents), expense*12)
	pr := Clamp(protection)

	score := int(math.Round(100 * (p.LiquidityWeight*l + p.LeverageWeight*d + p.ProtectionWeight*pr)))

	result := PillarResult{
		Key:   p.Key(),
		Name:  p.Name(),
		Score: score,
		Components: map[string]float64{
			"liquidity_coverage": coverage,
			"leverage":           leverage,
			"protection_ratio":   protection,
			"liquidity_norm":     l,
			"leverage_norm":      d,
			"protection_norm":    pr,
		},
	}

	if l < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Emergency fund covers %.1f months of expenses", coverage))
		result.Action = "Grow your emergency fund toward six months of expenses."
	}
	if d < p.FlagThreshold {
		result.Drivers = append(result.Drivers,
			fmt.Sprintf("Debt is %.0f%% of annual income", leverage*100))
		if result.Action == "" {
			result.Action = "Pay down high-interest debt before taking on new commitments."
		}
	}
	if len(result.Drivers) == 0 {
		result.Drivers = append(result.Drivers, "Stable footing: emergency fund and debt load are under control")
	}

	return result
}
