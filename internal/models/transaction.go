package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger transaction types that take part in income/expense analytics
const (
	TypeDeposit    = "Deposit"
	TypeWithdrawal = "Withdrawal"
)

// TransactionRow is a single ledger row as returned by the historical data query
type TransactionRow struct {
	Type        string          `json:"transaction_type"`
	Currency    string          `json:"currency"`
	Category    *string         `json:"category"` // NULL when the transaction has no category
	AccountName string          `json:"account_name"`
	Month       string          `json:"month"` // Format: YYYY-MM
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// MonthlyTotal is the sum of one transaction type in one currency for one month
type MonthlyTotal struct {
	Type     string          `json:"transaction_type"`
	Currency string          `json:"currency"`
	Month    string          `json:"month"`
	Total    decimal.Decimal `json:"total_amount"`
}

// GroupedTotal is the dashboard breakdown by type, category and account
type GroupedTotal struct {
	Type        string          `json:"transaction_type"`
	Category    string          `json:"category"`
	AccountName string          `json:"account_name"`
	Total       decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// DashboardTransaction is a single transaction shown on the dashboard
type DashboardTransaction struct {
	Type        string          `json:"transaction_type"`
	Category    string          `json:"category"`
	AccountName string          `json:"account_name"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"` // Format: YYYY-MM-DD
	Description string          `json:"description"`
	JournalID   int64           `json:"journal_id"`
}
