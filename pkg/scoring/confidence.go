package scoring

import (
	"math"

	"github.com/twealth/twealth/pkg/finance"
)

// Confidence penalties. These signal "how much data backs this score",
// not a statistical error bound.
const (
	confidenceFullMonths      = 6
	emptyEmergencyFundPenalty = 0.9
	noInvestmentPenalty       = 0.95
)

// EstimateConfidence derives a 0-1 confidence value from data
// completeness: more history means higher confidence, saturating at six
// months, with multiplicative penalties when the emergency fund is zero
// or no month shows an investment contribution. Rounded to three
// decimal places.
func EstimateConfidence(history []finance.MonthlyFinancials) float64 {
	months := len(history)
	if months > confidenceFullMonths {
		months = confidenceFullMonths
	}
	conf := Clamp(float64(months) / confidenceFullMonths)

	if latestMonth(history).EmergencyFundCents == 0 {
		conf *= emptyEmergencyFundPenalty
	}

	invested := false
	for _, m := range window(history, confidenceFullMonths) {
		if m.InvestmentContribCents > 0 {
			invested = true
			break
		}
	}
	if !invested {
		conf *= noInvestmentPenalty
	}

	return math.Round(conf*1000) / 1000
}
