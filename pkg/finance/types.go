// Package finance defines the domain records shared by the rollup
// aggregator, the scoring engine, and the storage layer.
package finance

import "time"

// TransactionType classifies a transaction for aggregation.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Transaction is a raw transaction as stored. The amount is a decimal
// string; it is parsed to cents exactly once, inside the rollup.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Destination string          `json:"destination,omitempty"` // transfer target account/label
	Amount      string          `json:"amount"`
	Date        time.Time       `json:"date"`
}

// Debt is one outstanding debt record.
type Debt struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// Profile holds the user's current financial profile snapshot.
type Profile struct {
	UserID        string `json:"user_id"`
	EmergencyFund string `json:"emergency_fund"`
}

// Goal is a financial goal. Goals are fetched alongside the profile but
// do not yet feed any pillar.
type Goal struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	TargetAmount string    `json:"target_amount"`
	TargetDate   time.Time `json:"target_date"`
}

// MonthlyFinancials is one month's aggregate for one user. Exactly one
// record exists per (user, month); re-rollup overwrites it. All monetary
// fields are non-negative integer cents.
type MonthlyFinancials struct {
	UserID                 string    `json:"user_id"`
	Month                  time.Time `json:"month"` // first of month, UTC
	IncomeCents            int64     `json:"income_cents"`
	ExpenseCents           int64     `json:"expense_cents"`
	FixedExpenseCents      int64     `json:"fixed_expense_cents"`
	EmergencyFundCents     int64     `json:"emergency_fund_cents"`
	TotalDebtCents         int64     `json:"total_debt_cents"`
	InvestmentContribCents int64     `json:"investment_contrib_cents"`
	InsuredAmountCents     int64     `json:"insured_amount_cents"` // insurance tracking not implemented; always zero
	TransactionCount       int       `json:"transaction_count"`
}

// TruncateMonth returns t truncated to the first of its month in UTC.
func TruncateMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
