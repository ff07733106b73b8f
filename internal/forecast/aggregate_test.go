package forecast

import (
	"reflect"
	"testing"
)

func TestAggregate(t *testing.T) {
	records := []Record{
		income("RUB", "2024-02-01", "100000"),
		expense("RUB", "2024-02-14", "1500.25", "Food"),
		expense("RUB", "2024-01-31", "499.75", "Food"),
		income("RUB", "2024-01-10", "100000"),
		income("RUB", "2024-01-25", "5000"),
		expense("EUR", "2024-01-03", "20", "Transport"),
		expense("RUB", "2024-02-20", "700", "Rent"),
	}

	aggs := Aggregate(records)
	if len(aggs) != 2 {
		t.Fatalf("got %d currencies, want 2", len(aggs))
	}

	rub := aggs["RUB"]
	wantIncome := map[string]string{"2024-01": "105000", "2024-02": "100000"}
	for month, want := range wantIncome {
		if !rub.IncomeByMonth[month].Equal(dec(want)) {
			t.Errorf("RUB income %s = %s, want %s", month, rub.IncomeByMonth[month], want)
		}
	}
	wantExpense := map[string]string{"2024-01": "499.75", "2024-02": "2200.25"}
	for month, want := range wantExpense {
		if !rub.ExpenseByMonth[month].Equal(dec(want)) {
			t.Errorf("RUB expense %s = %s, want %s", month, rub.ExpenseByMonth[month], want)
		}
	}
	if !rub.ExpenseByCategory["Food"].Equal(dec("2000")) {
		t.Errorf("Food = %s, want 2000", rub.ExpenseByCategory["Food"])
	}
	if !rub.IncomeByCategory[UncategorizedLabel].Equal(dec("205000")) {
		t.Errorf("uncategorized income = %s", rub.IncomeByCategory[UncategorizedLabel])
	}

	if got := rub.IncomeByMonth.SortedKeys(); !reflect.DeepEqual(got, []string{"2024-01", "2024-02"}) {
		t.Errorf("SortedKeys = %v", got)
	}
	if got := rub.IncomeByMonth.Values(); !reflect.DeepEqual(got, []float64{105000, 100000}) {
		t.Errorf("Values = %v", got)
	}

	// input order is kept for the recurring detector
	if len(rub.IncomeTransactions) != 3 || !rub.IncomeTransactions[0].Date.Equal(day("2024-02-01")) {
		t.Errorf("income transactions out of order: %+v", rub.IncomeTransactions)
	}

	eur := aggs["EUR"]
	if len(eur.IncomeByMonth) != 0 || len(eur.ExpenseTransactions) != 1 {
		t.Errorf("EUR aggregate = %+v", eur)
	}
}

func TestAggregateMonthTotalsMatchRecordSums(t *testing.T) {
	records := []Record{
		expense("USD", "2023-12-31", "10.10", "A"),
		expense("USD", "2023-12-01", "0.90", "B"),
		expense("USD", "2024-01-01", "3", "A"),
	}
	aggs := Aggregate(records)

	for month, total := range aggs["USD"].ExpenseByMonth {
		sum := dec("0")
		for _, r := range records {
			if r.Month() == month {
				sum = sum.Add(r.Amount)
			}
		}
		if !total.Equal(sum) {
			t.Errorf("%s: total %s, record sum %s", month, total, sum)
		}
		if total.IsNegative() {
			t.Errorf("%s: negative total %s", month, total)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %v", got)
	}
}
