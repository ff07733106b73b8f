package forecast

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	trendWindow        = 6
	trendThreshold     = 2.0
	recurringTolerance = 0.05
	recurringMinCount  = 3
	topCategoryLimit   = 5
)

// Trend directions
const (
	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// FrequencyMonthly is the only recurrence frequency detected
const FrequencyMonthly = "monthly"

// Trend is a linear regression slope expressed as percent change per month
type Trend struct {
	Direction string  `json:"direction"`
	Percent   float64 `json:"percent"`
}

// RecurringGroup is a cluster of transactions with near-identical amounts
type RecurringGroup struct {
	Amount      float64 `json:"amount"`
	Occurrences int     `json:"occurrences"`
	Frequency   string  `json:"frequency"`
}

// CategoryAmount is one entry of a ranked category list
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// FlowStats describes the monthly history of one flow direction
type FlowStats struct {
	AverageMonthly float64          `json:"average_monthly"`
	TotalMonths    int              `json:"total_months"`
	MinMonth       float64          `json:"min_month"`
	MaxMonth       float64          `json:"max_month"`
	Trend          Trend            `json:"trend"`
	Recent3MoAvg   float64          `json:"recent_3mo_avg"`
	Recent6MoAvg   float64          `json:"recent_6mo_avg"`
	Recurring      []RecurringGroup `json:"recurring_detected,omitempty"`
	TopCategories  []CategoryAmount `json:"top_categories,omitempty"`
}

// CurrencyStatistics holds the statistics of both flows; a flow without data is nil
type CurrencyStatistics struct {
	Income  *FlowStats `json:"income,omitempty"`
	Expense *FlowStats `json:"expense,omitempty"`
}

// ComputeStatistics derives the statistics for one currency
func ComputeStatistics(agg *CurrencyAggregate) CurrencyStatistics {
	var stats CurrencyStatistics

	if len(agg.IncomeByMonth) > 0 {
		income := flowStats(agg.IncomeByMonth.Values())
		income.Recurring = DetectRecurring(agg.IncomeTransactions)
		stats.Income = income
	}
	if len(agg.ExpenseByMonth) > 0 {
		expense := flowStats(agg.ExpenseByMonth.Values())
		expense.TopCategories = TopCategories(agg.ExpenseByCategory, topCategoryLimit)
		stats.Expense = expense
	}

	return stats
}

// flowStats expects values in chronological order and at least one value
func flowStats(values []float64) *FlowStats {
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	return &FlowStats{
		AverageMonthly: round(mean(values), 2),
		TotalMonths:    len(values),
		MinMonth:       round(minV, 2),
		MaxMonth:       round(maxV, 2),
		Trend:          CalculateTrend(values),
		Recent3MoAvg:   RecentAverage(values, 3),
		Recent6MoAvg:   RecentAverage(values, 6),
	}
}

// CalculateTrend fits an ordinary least-squares line over the last six values
// against the index 1..n and reports the slope relative to their mean.
func CalculateTrend(values []float64) Trend {
	if len(values) > trendWindow {
		values = values[len(values)-trendWindow:]
	}
	n := float64(len(values))
	if len(values) < 2 {
		return Trend{Direction: TrendStable, Percent: 0}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	avg := sumY / n

	var percent float64
	if avg > 0 {
		percent = round(slope/avg*100, 1)
	}

	return Trend{Direction: trendDirection(percent), Percent: percent}
}

func trendDirection(percent float64) string {
	switch {
	case percent > trendThreshold:
		return TrendGrowing
	case percent < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// RecentAverage is the mean of the last n values, or 0 for an empty series
func RecentAverage(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return round(mean(values), 2)
}

type amountCluster struct {
	sum   decimal.Decimal
	count int64
}

func (c *amountCluster) mean() decimal.Decimal {
	return c.sum.Div(decimal.NewFromInt(c.count))
}

// accepts reports whether amount lies within the tolerance of the cluster mean
func (c *amountCluster) accepts(amount decimal.Decimal) bool {
	m := c.mean()
	if m.IsZero() {
		return amount.IsZero()
	}
	return amount.Sub(m).Abs().Div(m).LessThan(decimal.NewFromFloat(recurringTolerance))
}

// DetectRecurring clusters transactions greedily: each amount joins the first
// cluster, in creation order, whose mean is within 5% of it, or opens a new one.
// Clusters with at least three members are reported.
func DetectRecurring(transactions []Record) []RecurringGroup {
	var clusters []amountCluster
	for _, tx := range transactions {
		joined := false
		for i := range clusters {
			if clusters[i].accepts(tx.Amount) {
				clusters[i].sum = clusters[i].sum.Add(tx.Amount)
				clusters[i].count++
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, amountCluster{sum: tx.Amount, count: 1})
		}
	}

	var groups []RecurringGroup
	for _, c := range clusters {
		if c.count < recurringMinCount {
			continue
		}
		groups = append(groups, RecurringGroup{
			Amount:      c.mean().Round(2).InexactFloat64(),
			Occurrences: int(c.count),
			Frequency:   FrequencyMonthly,
		})
	}
	return groups
}

// TopCategories ranks categories by exact amount, largest first, and keeps the first limit.
// Equal amounts are ordered by name; amounts are rounded only in the output.
func TopCategories(totals CategoryTotals, limit int) []CategoryAmount {
	type entry struct {
		name   string
		amount decimal.Decimal
	}
	ranked := make([]entry, 0, len(totals))
	for name, amount := range totals {
		ranked = append(ranked, entry{name: name, amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].amount.Cmp(ranked[j].amount); c != 0 {
			return c > 0
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	top := make([]CategoryAmount, len(ranked))
	for i, e := range ranked {
		top[i] = CategoryAmount{Category: e.name, Amount: e.amount.Round(2).InexactFloat64()}
	}
	return top
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// round rounds half away from zero
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
