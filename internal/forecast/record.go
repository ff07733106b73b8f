package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel replaces an empty or missing category
const UncategorizedLabel = "Uncategorized"

// Flow is the direction of money movement
type Flow int

const (
	Income Flow = iota
	Expense
)

func (f Flow) String() string {
	if f == Income {
		return "income"
	}
	return "expense"
}

// Record is a normalized ledger transaction
type Record struct {
	Date        time.Time
	Amount      decimal.Decimal // always non-negative
	Currency    string
	Category    string
	Flow        Flow
	Description string
}

// Month returns the UTC calendar month key of the record, e.g. "2024-01"
func (r Record) Month() string {
	return monthKey(r.Date)
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Ingest turns raw rows into records, keeping their order
func Ingest(rows []models.TransactionRow) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		var flow Flow
		switch row.Type {
		case models.TypeDeposit:
			flow = Income
		case models.TypeWithdrawal:
			flow = Expense
		default:
			return nil, fmt.Errorf("row %d: unexpected transaction type %q", i, row.Type)
		}

		category := UncategorizedLabel
		if row.Category != nil && strings.TrimSpace(*row.Category) != "" {
			category = *row.Category
		}

		records = append(records, Record{
			Date:        row.Date,
			Amount:      row.Amount.Abs(),
			Currency:    row.Currency,
			Category:    category,
			Flow:        flow,
			Description: row.Description,
		})
	}
	return records, nil
}
