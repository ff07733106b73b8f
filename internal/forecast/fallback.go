package forecast

import (
	"context"
	"fmt"

	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// FallbackCurrencies are always present in a fallback result
var FallbackCurrencies = []string{"EUR", "USD", "RUB"}

const fallbackConfidence = 50

// FallbackForecaster averages the monthly totals recorded inside the target
// period itself and scales them to the period length. It does not look at the
// history the AI path uses; see DESIGN.md.
type FallbackForecaster struct {
	source     PeriodTotalsSource
	currencies []string
}

// NewFallbackForecaster initializes the deterministic forecaster
func NewFallbackForecaster(source PeriodTotalsSource) *FallbackForecaster {
	return &FallbackForecaster{source: source, currencies: FallbackCurrencies}
}

func (f *FallbackForecaster) Forecast(ctx context.Context, summary *Summary) (*models.PredictionResult, error) {
	totals, err := f.source.MonthlyTotals(ctx, summary.Period.From, summary.Period.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load period totals: %w", err)
	}

	months := decimal.NewFromInt(int64(summary.Period.WholeMonths()))
	result := newResult(summary, models.MethodFallback)

	for _, currency := range f.currencies {
		income := MonthlySeries{}
		expense := MonthlySeries{}
		for _, t := range totals {
			if t.Currency != currency {
				continue
			}
			if t.Type == models.TypeDeposit {
				income[t.Month] = t.Total.Abs()
			} else {
				expense[t.Month] = t.Total.Abs()
			}
		}

		predictedIncome := seriesMean(income).Mul(months).Round(2)
		predictedExpense := seriesMean(expense).Mul(months).Round(2)

		result.Predictions[currency] = models.Prediction{
			PredictedIncome:  predictedIncome.InexactFloat64(),
			PredictedExpense: predictedExpense.InexactFloat64(),
			PredictedNet:     predictedIncome.Sub(predictedExpense).InexactFloat64(),
			IncomeTrend:      0,
			ExpenseTrend:     0,
			Confidence:       fallbackConfidence,
		}
	}

	return result, nil
}

func seriesMean(s MonthlySeries) decimal.Decimal {
	if len(s) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range s {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(s))))
}
