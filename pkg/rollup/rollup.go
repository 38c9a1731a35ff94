// Package rollup aggregates a user's raw transactions into monthly
// financial records. It is pure: fetching inputs and persisting the
// result belong to the recompute orchestrator.
package rollup

import (
	"fmt"
	"time"

	"github.com/twealth/twealth/pkg/finance"
	"github.com/twealth/twealth/pkg/money"
)

// BuildMonth aggregates one calendar month of transactions plus
// point-in-time debt and profile snapshots into a MonthlyFinancials
// record. The month is truncated to its first day; transactions outside
// [monthStart, nextMonth) are ignored. Decimal-string amounts are
// parsed to integer cents exactly once here.
//
// Debt and emergency-fund totals are snapshots of current state, not
// historical values. Insured amount stays zero: insurance tracking is
// not implemented.
func BuildMonth(userID string, month time.Time, txs []finance.Transaction, debts []finance.Debt, profile *finance.Profile, table Classification) (finance.MonthlyFinancials, error) {
	start := finance.TruncateMonth(month)
	end := start.AddDate(0, 1, 0)

	mf := finance.MonthlyFinancials{UserID: userID, Month: start}

	for _, tx := range txs {
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		cents, err := money.ParseCents(tx.Amount)
		if err != nil {
			return finance.MonthlyFinancials{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if cents < 0 {
			// Amounts are stored non-negative; skip malformed rows.
			continue
		}
		mf.TransactionCount++

		switch tx.Type {
		case finance.TypeIncome:
			mf.IncomeCents += cents
		case finance.TypeExpense:
			mf.ExpenseCents += cents
			if table.Matches(TagFixed, tx.Category) {
				mf.FixedExpenseCents += cents
			}
		case finance.TypeTransfer:
			if table.Matches(TagInvestment, tx.Destination) {
				mf.InvestmentContribCents += cents
			}
		}
	}

	for _, d := range debts {
		cents, err := money.ParseCents(d.Balance)
		if err != nil {
			return finance.MonthlyFinancials{}, fmt.Errorf("debt %s: %w", d.ID, err)
		}
		if cents > 0 {
			mf.TotalDebtCents += cents
		}
	}

	if profile != nil {
		cents, err := money.ParseCents(profile.EmergencyFund)
		if err != nil {
			return finance.MonthlyFinancials{}, fmt.Errorf("profile emergency fund: %w", err)
		}
		if cents > 0 {
			mf.EmergencyFundCents = cents
		}
	}

	return mf, nil
}
