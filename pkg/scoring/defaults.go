package scoring

// DefaultWeights holds the hand-tuned constants for all pillars and the
// composite blend. Every value here is empirically chosen, not derived;
// changing any of them changes every historical score.
type DefaultWeights struct {
	// Composite blend. Must sum to exactly 1.0; adding a pillar requires
	// re-normalizing all four.
	CompositeCashflow  float64
	CompositeStability float64
	CompositeGrowth    float64
	CompositeBehavior  float64

	// Cashflow Resilience
	CashflowNetWeight        float64
	CashflowFixedWeight      float64
	CashflowVolatilityWeight float64
	NetRatioOffset           float64 // shifts net ratio so -20% maps to 0
	NetRatioRange            float64
	FixedRatioCeiling        float64 // fixed-cost share of income that zeroes the component
	VolatilityCeiling        float64

	// Stability & Risk
	StabilityLiquidityWeight  float64
	StabilityLeverageWeight   float64
	StabilityProtectionWeight float64
	LiquiditySaturationMonths float64 // months of runway where the log curve saturates
	LeverageDecay             float64 // exponential decay rate on debt-to-income

	// Wealth Growth Quality
	GrowthSavingWeight      float64
	GrowthInvestWeight      float64
	GrowthIncomeWeight      float64
	GrowthConsistencyWeight float64
	SavingRateTarget        float64 // saving rate that maxes the component
	InvestRateTarget        float64
	IncomeGrowthOffset      float64
	IncomeGrowthRange       float64

	// Behavioral Alpha
	BehaviorBudgetWeight  float64
	BehaviorLoggingWeight float64

	// Drivers
	FlagThreshold float64 // normalized components below this get flagged

	// History windows
	HistoryMonths int
	RecentMonths  int
}

// Defaults returns the standard scoring constants.
func Defaults() DefaultWeights {
	return DefaultWeights{
		CompositeCashflow:  0.25,
		CompositeStability: 0.30,
		CompositeGrowth:    0.25,
		CompositeBehavior:  0.20,

		CashflowNetWeight:        0.55,
		CashflowFixedWeight:      0.30,
		CashflowVolatilityWeight: 0.15,
		NetRatioOffset:           0.20,
		NetRatioRange:            0.40,
		FixedRatioCeiling:        0.70,
		VolatilityCeiling:        0.60,

		StabilityLiquidityWeight:  0.55,
		StabilityLeverageWeight:   0.35,
		StabilityProtectionWeight: 0.10,
		LiquiditySaturationMonths: 6,
		LeverageDecay:             1.2,

		GrowthSavingWeight:      0.35,
		GrowthInvestWeight:      0.30,
		GrowthIncomeWeight:      0.15,
		GrowthConsistencyWeight: 0.20,
		SavingRateTarget:        0.25,
		InvestRateTarget:        0.15,
		IncomeGrowthOffset:      0.10,
		IncomeGrowthRange:       0.30,

		BehaviorBudgetWeight:  0.55,
		BehaviorLoggingWeight: 0.45,

		FlagThreshold: 0.35,

		HistoryMonths: 6,
		RecentMonths:  3,
	}
}

// CompositeWeights returns the composite blend keyed by pillar key.
func (w DefaultWeights) CompositeWeights() map[string]float64 {
	return map[string]float64{
		PillarCashflow:  w.CompositeCashflow,
		PillarStability: w.CompositeStability,
		PillarGrowth:    w.CompositeGrowth,
		PillarBehavior:  w.CompositeBehavior,
	}
}

// DefaultPillars returns the standard set of pillar scorers with default
// constants.
func DefaultPillars() []Pillar {
	w := Defaults()
	return []Pillar{
		&CashflowPillar{
			NetWeight:         w.CashflowNetWeight,
			FixedWeight:       w.CashflowFixedWeight,
			VolatilityWeight:  w.CashflowVolatilityWeight,
			NetOffset:         w.NetRatioOffset,
			NetRange:          w.NetRatioRange,
			FixedCeiling:      w.FixedRatioCeiling,
			VolatilityCeiling: w.VolatilityCeiling,
			HistoryMonths:     w.HistoryMonths,
			FlagThreshold:     w.FlagThreshold,
		},
		&StabilityPillar{
			LiquidityWeight:  w.StabilityLiquidityWeight,
			LeverageWeight:   w.StabilityLeverageWeight,
			ProtectionWeight: w.StabilityProtectionWeight,
			SaturationMonths: w.LiquiditySaturationMonths,
			LeverageDecay:    w.LeverageDecay,
			RecentMonths:     w.RecentMonths,
			FlagThreshold:    w.FlagThreshold,
		},
		&GrowthPillar{
			SavingWeight:      w.GrowthSavingWeight,
			InvestWeight:      w.GrowthInvestWeight,
			IncomeWeight:      w.GrowthIncomeWeight,
			ConsistencyWeight: w.GrowthConsistencyWeight,
			SavingRateTarget:  w.SavingRateTarget,
			InvestRateTarget:  w.InvestRateTarget,
			GrowthOffset:      w.IncomeGrowthOffset,
			GrowthRange:       w.IncomeGrowthRange,
			HistoryMonths:     w.HistoryMonths,
			RecentMonths:      w.RecentMonths,
			FlagThreshold:     w.FlagThreshold,
		},
		&BehaviorPillar{
			BudgetWeight:  w.BehaviorBudgetWeight,
			LoggingWeight: w.BehaviorLoggingWeight,
			RecentMonths:  w.RecentMonths,
			FlagThreshold: w.FlagThreshold,
		},
	}
}
