package forecast

import (
	"context"
	"io"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func row(typ, currency, date, amount string) models.TransactionRow {
	d := day(date)
	return models.TransactionRow{
		Type:     typ,
		Currency: currency,
		Month:    d.Format("2006-01"),
		Date:     d,
		Amount:   dec(amount),
	}
}

func income(currency, date, amount string) Record {
	return Record{Date: day(date), Amount: dec(amount), Currency: currency, Category: UncategorizedLabel, Flow: Income}
}

func expense(currency, date, amount, category string) Record {
	return Record{Date: day(date), Amount: dec(amount), Currency: currency, Category: category, Flow: Expense}
}

type fakeHistory struct {
	rows   []models.TransactionRow
	err    error
	calls  int
	before time.Time
	limit  int
}

func (f *fakeHistory) HistoricalRows(_ context.Context, before time.Time, limit int) ([]models.TransactionRow, error) {
	f.calls++
	f.before = before
	f.limit = limit
	return f.rows, f.err
}

type fakeTotals struct {
	totals   []models.MonthlyTotal
	err      error
	from, to time.Time
}

func (f *fakeTotals) MonthlyTotals(_ context.Context, from, to time.Time) ([]models.MonthlyTotal, error) {
	f.from, f.to = from, to
	return f.totals, f.err
}

type fakeCompleter struct {
	configured bool
	reply      string
	err        error
	calls      int
	system     string
	prompt     string
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.prompt = system, user
	return f.reply, f.err
}

type statusErr struct{ code int }

func (e statusErr) Error() string { return "bad status" }
func (e statusErr) HTTPStatus() int { return e.code }
