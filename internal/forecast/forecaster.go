package forecast

import (
	"context"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/models"
)

// HistoryLimit caps the number of historical rows fed into a forecast
const HistoryLimit = 2000

// Forecaster produces per-currency predictions for the summary's target period
type Forecaster interface {
	Forecast(ctx context.Context, summary *Summary) (*models.PredictionResult, error)
}

// OptionalForecaster is a Forecaster that can be switched off, e.g. without credentials
type OptionalForecaster interface {
	Forecaster
	Available() bool
}

// HistorySource returns at most limit Deposit/Withdrawal rows dated strictly
// before the given day, most recent first
type HistorySource interface {
	HistoricalRows(ctx context.Context, before time.Time, limit int) ([]models.TransactionRow, error)
}

// PeriodTotalsSource returns monthly totals per type and currency for an inclusive date range
type PeriodTotalsSource interface {
	MonthlyTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error)
}

// Completer sends one system + user exchange to a text-generation service
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

func newResult(summary *Summary, method string) *models.PredictionResult {
	return &models.PredictionResult{
		Predictions:    make(map[string]models.Prediction),
		PeriodDays:     summary.Period.Days(),
		PeriodMonths:   summary.PeriodMonths,
		HistoricalFrom: summary.Target.From,
		HistoricalTo:   summary.Target.To,
		Method:         method,
	}
}
