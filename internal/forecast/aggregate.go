package forecast

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthlySeries maps a "YYYY-MM" key to the amount for that month
type MonthlySeries map[string]decimal.Decimal

// SortedKeys returns the month keys in chronological order
func (s MonthlySeries) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the amounts in chronological order
func (s MonthlySeries) Values() []float64 {
	keys := s.SortedKeys()
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = s[k].InexactFloat64()
	}
	return values
}

// CategoryTotals maps a category name to its summed amount
type CategoryTotals map[string]decimal.Decimal

// CurrencyAggregate holds everything aggregated for a single currency
type CurrencyAggregate struct {
	IncomeByMonth       MonthlySeries
	ExpenseByMonth      MonthlySeries
	IncomeByCategory    CategoryTotals
	ExpenseByCategory   CategoryTotals
	IncomeTransactions  []Record
	ExpenseTransactions []Record
}

func newCurrencyAggregate() *CurrencyAggregate {
	return &CurrencyAggregate{
		IncomeByMonth:     MonthlySeries{},
		ExpenseByMonth:    MonthlySeries{},
		IncomeByCategory:  CategoryTotals{},
		ExpenseByCategory: CategoryTotals{},
	}
}

// Empty reports whether the currency has no transactions in either flow
func (a *CurrencyAggregate) Empty() bool {
	return len(a.IncomeTransactions) == 0 && len(a.ExpenseTransactions) == 0
}

func (a *CurrencyAggregate) add(r Record) {
	month := r.Month()
	if r.Flow == Income {
		a.IncomeByMonth[month] = a.IncomeByMonth[month].Add(r.Amount)
		a.IncomeByCategory[r.Category] = a.IncomeByCategory[r.Category].Add(r.Amount)
		a.IncomeTransactions = append(a.IncomeTransactions, r)
		return
	}
	a.ExpenseByMonth[month] = a.ExpenseByMonth[month].Add(r.Amount)
	a.ExpenseByCategory[r.Category] = a.ExpenseByCategory[r.Category].Add(r.Amount)
	a.ExpenseTransactions = append(a.ExpenseTransactions, r)
}

// Aggregate groups records by currency, then by month and category per flow.
// Transaction lists keep the input order.
func Aggregate(records []Record) map[string]*CurrencyAggregate {
	result := make(map[string]*CurrencyAggregate)
	for _, r := range records {
		agg, ok := result[r.Currency]
		if !ok {
			agg = newCurrencyAggregate()
			result[r.Currency] = agg
		}
		agg.add(r)
	}
	return result
}
