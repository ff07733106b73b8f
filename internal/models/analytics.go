package models

// Forecast methods reported to callers
const (
	MethodAI       = "ai"
	MethodFallback = "fallback"
)

// Prediction is the forecast for one currency over the whole target period
type Prediction struct {
	PredictedIncome  float64 `json:"predicted_income"`
	PredictedExpense float64 `json:"predicted_expense"`
	PredictedNet     float64 `json:"predicted_net"`
	IncomeTrend      float64 `json:"income_trend"`  // percent per month
	ExpenseTrend     float64 `json:"expense_trend"` // percent per month
	Confidence       int     `json:"confidence"`    // 1..100
}

// PredictionResult is the response of the dashboard prediction endpoint
type PredictionResult struct {
	Predictions    map[string]Prediction `json:"predictions"`
	PeriodDays     int                   `json:"period_days"`
	PeriodMonths   float64               `json:"period_months"`
	HistoricalFrom string                `json:"historical_from"` // Format: YYYY-MM-DD
	HistoricalTo   string                `json:"historical_to"`   // Format: YYYY-MM-DD
	Insights       *string               `json:"ai_insights,omitempty"`
	Method         string                `json:"method"`
}

// DashboardData is the response of the dashboard data endpoint
type DashboardData struct {
	Data         []GroupedTotal         `json:"data"`
	Transactions []DashboardTransaction `json:"transactions"`
	DateFrom     *string                `json:"date_from"`
	DateTo       *string                `json:"date_to"`
}

// ExchangeRates holds cross rates relative to Base
type ExchangeRates struct {
	Rates  map[string]float64 `json:"rates"`
	Base   string             `json:"base"`
	Date   string             `json:"date"` // Format: YYYY-MM-DD
	Source string             `json:"source"`
}
