package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/lib/pq"
)

// UncategorizedName is shown on the dashboard for transactions without a category
const UncategorizedName = "Без категории"

var analyticsTypes = pq.Array([]string{models.TypeDeposit, models.TypeWithdrawal})

// Repository provides read access to the ledger database
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ledgerJoins selects income and expense legs: withdrawals towards expense
// accounts and deposits from revenue accounts, excluding soft-deleted rows
const ledgerJoins = `
	FROM transactions t
	JOIN transaction_journals tj ON t.transaction_journal_id = tj.id
	JOIN transaction_types tt ON tj.transaction_type_id = tt.id
	LEFT JOIN category_transaction ct ON ct.transaction_id = t.id
	LEFT JOIN categories c ON c.id = ct.category_id
	JOIN transaction_currencies tc ON t.transaction_currency_id = tc.id
	JOIN accounts a ON t.account_id = a.id
	JOIN account_types at ON a.account_type_id = at.id
	WHERE tt.type = ANY($1)
		AND tj.deleted_at IS NULL
		AND t.deleted_at IS NULL
		AND ((tt.type = 'Withdrawal' AND at.type = 'Expense account')
			OR (tt.type = 'Deposit' AND at.type = 'Revenue account'))`

// HistoricalRows returns up to limit rows dated before the given day, most recent first
func (r *Repository) HistoricalRows(ctx context.Context, before time.Time, limit int) ([]models.TransactionRow, error) {
	query := `
		SELECT
			tt.type,
			tc.code,
			c.name,
			a.name,
			to_char(tj.date, 'YYYY-MM'),
			tj.date,
			ABS(t.amount),
			tj.description` + ledgerJoins + `
			AND tj.date < $2
		ORDER BY tj.date DESC, tj.id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, analyticsTypes, before.Format("2006-01-02"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical transactions: %w", err)
	}
	defer rows.Close()

	var result []models.TransactionRow
	for rows.Next() {
		var row models.TransactionRow
		var category sql.NullString
		if err := rows.Scan(&row.Type, &row.Currency, &category, &row.AccountName,
			&row.Month, &row.Date, &row.Amount, &row.Description); err != nil {
			return nil, fmt.Errorf("failed to scan historical transaction: %w", err)
		}
		if category.Valid {
			row.Category = &category.String
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read historical transactions: %w", err)
	}
	return result, nil
}

// MonthlyTotals sums amounts per type, currency and month within [from, to]
func (r *Repository) MonthlyTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error) {
	query := `
		SELECT
			tt.type,
			tc.code,
			to_char(tj.date, 'YYYY-MM') AS month,
			SUM(ABS(t.amount))` + ledgerJoins + `
			AND tj.date >= $2
			AND tj.date <= $3
		GROUP BY tt.type, tc.code, month
		ORDER BY month ASC`

	rows, err := r.db.QueryContext(ctx, query, analyticsTypes, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	var result []models.MonthlyTotal
	for rows.Next() {
		var total models.MonthlyTotal
		if err := rows.Scan(&total.Type, &total.Currency, &total.Month, &total.Total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		result = append(result, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monthly totals: %w", err)
	}
	return result, nil
}

// dateFilter renders the optional date bounds starting at placeholder $2
func dateFilter(from, to *time.Time) (string, []any) {
	var conditions []string
	args := []any{analyticsTypes}
	if from != nil {
		args = append(args, from.Format("2006-01-02"))
		conditions = append(conditions, fmt.Sprintf("tj.date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, to.Format("2006-01-02"))
		conditions = append(conditions, fmt.Sprintf("tj.date <= $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " AND " + strings.Join(conditions, " AND "), args
}

// GroupedTotals sums amounts per type, category, account and currency
func (r *Repository) GroupedTotals(ctx context.Context, from, to *time.Time) ([]models.GroupedTotal, error) {
	filter, args := dateFilter(from, to)
	query := `
		SELECT
			tt.type,
			COALESCE(c.name, '` + UncategorizedName + `') AS category,
			a.name AS account_name,
			SUM(ABS(t.amount)) AS total_amount,
			tc.code` + ledgerJoins + filter + `
		GROUP BY tt.type, c.name, a.name, tc.code
		ORDER BY tt.type, total_amount DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped totals: %w", err)
	}
	defer rows.Close()

	var result []models.GroupedTotal
	for rows.Next() {
		var g models.GroupedTotal
		if err := rows.Scan(&g.Type, &g.Category, &g.AccountName, &g.Total, &g.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan grouped total: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grouped totals: %w", err)
	}
	return result, nil
}

// Transactions lists the individual transactions, newest first
func (r *Repository) Transactions(ctx context.Context, from, to *time.Time) ([]models.DashboardTransaction, error) {
	filter, args := dateFilter(from, to)
	query := `
		SELECT
			tt.type,
			COALESCE(c.name, '` + UncategorizedName + `'),
			a.name,
			tc.code,
			ABS(t.amount),
			to_char(tj.date, 'YYYY-MM-DD'),
			tj.description,
			tj.id` + ledgerJoins + filter + `
		ORDER BY tj.date DESC, tj.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []models.DashboardTransaction
	for rows.Next() {
		var tx models.DashboardTransaction
		if err := rows.Scan(&tx.Type, &tx.Category, &tx.AccountName, &tx.Currency,
			&tx.Amount, &tx.Date, &tx.Description, &tx.JournalID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return result, nil
}
