package forecast

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

const targetNote = "This is the FUTURE period to predict, NOT historical data"

// Period is the target period of a forecast, both bounds inclusive
type Period struct {
	From time.Time
	To   time.Time
}

// Days counts calendar days in the period including both bounds
func (p Period) Days() int {
	from := truncateDay(p.From)
	to := truncateDay(p.To)
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days + 1
}

// Months is the period length in 30-day months, rounded to one decimal
func (p Period) Months() float64 {
	return round(float64(p.Days())/30, 1)
}

// WholeMonths is the period length in 30-day months, rounded to an integer, at least 1
func (p Period) WholeMonths() int {
	m := int(round(float64(p.Days())/30, 0))
	if m < 1 {
		return 1
	}
	return m
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TargetPeriod describes the forecast target for the forecasting service
type TargetPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
	Note string `json:"note"`
}

// CurrencySummary is the raw series and statistics of one currency
type CurrencySummary struct {
	IncomeByMonth     map[string]float64 `json:"income_by_month"`
	ExpenseByMonth    map[string]float64 `json:"expense_by_month"`
	IncomeByCategory  map[string]float64 `json:"income_by_category"`
	ExpenseByCategory map[string]float64 `json:"expense_by_category"`
	Statistics        CurrencyStatistics `json:"statistics"`
}

// Summary is the statistical digest handed to a forecaster. Read-only once built.
type Summary struct {
	Period       Period                     `json:"-"`
	Target       TargetPeriod               `json:"prediction_target"`
	PeriodMonths float64                    `json:"prediction_period_months"`
	Currencies   map[string]CurrencySummary `json:"currencies"`
}

// BuildSummary computes statistics for every currency with at least one transaction
func BuildSummary(period Period, aggregates map[string]*CurrencyAggregate) *Summary {
	summary := &Summary{
		Period: period,
		Target: TargetPeriod{
			From: period.From.Format(dateLayout),
			To:   period.To.Format(dateLayout),
			Note: targetNote,
		},
		PeriodMonths: period.Months(),
		Currencies:   make(map[string]CurrencySummary, len(aggregates)),
	}

	for currency, agg := range aggregates {
		if agg.Empty() {
			continue
		}
		summary.Currencies[currency] = CurrencySummary{
			IncomeByMonth:     toFloats(agg.IncomeByMonth),
			ExpenseByMonth:    toFloats(agg.ExpenseByMonth),
			IncomeByCategory:  toFloats(agg.IncomeByCategory),
			ExpenseByCategory: toFloats(agg.ExpenseByCategory),
			Statistics:        ComputeStatistics(agg),
		}
	}

	return summary
}

func toFloats(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v.InexactFloat64()
	}
	return out
}
