package service

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/forecast"
	"github.com/Dan9191/finance-dashboard/internal/integrations/cbr"
	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeStore struct {
	totals   []models.GroupedTotal
	txs      []models.DashboardTransaction
	err      error
	from, to *time.Time
}

func (f *fakeStore) GroupedTotals(_ context.Context, from, to *time.Time) ([]models.GroupedTotal, error) {
	f.from, f.to = from, to
	return f.totals, f.err
}

func (f *fakeStore) Transactions(_ context.Context, _, _ *time.Time) ([]models.DashboardTransaction, error) {
	return f.txs, nil
}

type fakePredictor struct {
	result *models.PredictionResult
	err    error
}

func (f *fakePredictor) Predict(_ context.Context, _, _ time.Time) (*models.PredictionResult, error) {
	return f.result, f.err
}

type fakeRates struct {
	rates *cbr.Rates
	err   error
	calls int
}

func (f *fakeRates) GetRates(_ context.Context, onDate time.Time) (*cbr.Rates, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.rates
	r.Date = onDate
	return &r, nil
}

var fixedNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newCache(provider RatesProvider) *RatesCache {
	c := NewRatesCache(provider, quietLogger())
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestDashboardData(t *testing.T) {
	store := &fakeStore{
		totals: []models.GroupedTotal{{Type: models.TypeWithdrawal, Category: "Food", Total: decimal.NewFromInt(10), Currency: "EUR"}},
		txs:    []models.DashboardTransaction{{Type: models.TypeWithdrawal, Date: "2024-01-02", JournalID: 7}},
	}
	svc := NewService(store, &fakePredictor{}, newCache(&fakeRates{}), quietLogger())

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data, err := svc.DashboardData(context.Background(), &from, nil)
	if err != nil {
		t.Fatalf("DashboardData: %v", err)
	}
	if len(data.Data) != 1 || len(data.Transactions) != 1 {
		t.Errorf("data = %+v", data)
	}
	if data.DateFrom == nil || *data.DateFrom != "2024-01-01" || data.DateTo != nil {
		t.Errorf("echoed range = %v..%v", data.DateFrom, data.DateTo)
	}
	if store.from == nil || !store.from.Equal(from) || store.to != nil {
		t.Errorf("store queried with %v..%v", store.from, store.to)
	}
}

func TestDashboardDataEmptyAndError(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakePredictor{}, newCache(&fakeRates{}), quietLogger())
	data, err := svc.DashboardData(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("DashboardData: %v", err)
	}
	if data.Data == nil || data.Transactions == nil {
		t.Error("empty results must be encoded as empty lists")
	}

	svc = NewService(&fakeStore{err: errors.New("db down")}, &fakePredictor{}, newCache(&fakeRates{}), quietLogger())
	if _, err := svc.DashboardData(context.Background(), nil, nil); err == nil {
		t.Error("expected store error")
	}
}

func TestPredict(t *testing.T) {
	want := &models.PredictionResult{Method: models.MethodFallback, Predictions: map[string]models.Prediction{}}
	svc := NewService(&fakeStore{}, &fakePredictor{result: want}, newCache(&fakeRates{}), quietLogger())

	got, err := svc.Predict(context.Background(), fixedNow, fixedNow.AddDate(0, 1, 0))
	if err != nil || got != want {
		t.Errorf("Predict = %v, %v", got, err)
	}

	svc = NewService(&fakeStore{}, &fakePredictor{err: forecast.ErrPeriodRequired}, newCache(&fakeRates{}), quietLogger())
	if _, err := svc.Predict(context.Background(), time.Time{}, fixedNow); !errors.Is(err, forecast.ErrPeriodRequired) {
		t.Errorf("err = %v, want ErrPeriodRequired", err)
	}
}

func TestCrossRates(t *testing.T) {
	provider := &fakeRates{rates: &cbr.Rates{RUBPerUnit: map[string]float64{"EUR": 100, "USD": 92, "RUB": 1}}}
	cache := newCache(provider)

	got := cache.CrossRates(context.Background(), "")
	want := &models.ExchangeRates{
		Rates:  map[string]float64{"EUR": 1, "USD": 1.087, "RUB": 100},
		Base:   "EUR",
		Date:   "2024-01-15",
		Source: "cbr.ru",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CrossRates = %+v, want %+v", got, want)
	}

	usd := cache.CrossRates(context.Background(), "usd")
	if usd.Base != "USD" || usd.Rates["USD"] != 1 || usd.Rates["EUR"] != 0.92 || usd.Rates["RUB"] != 92 {
		t.Errorf("USD based = %+v", usd)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cached)", provider.calls)
	}
}

func TestCrossRatesFallback(t *testing.T) {
	cache := newCache(&fakeRates{err: errors.New("cbr down")})

	got := cache.CrossRates(context.Background(), "USD")
	if got.Source != "fallback" || got.Base != "EUR" {
		t.Errorf("fallback = %+v", got)
	}
	if !reflect.DeepEqual(got.Rates, map[string]float64{"EUR": 1, "USD": 1.08, "RUB": 105}) {
		t.Errorf("fallback rates = %v", got.Rates)
	}

	cache = newCache(&fakeRates{rates: &cbr.Rates{RUBPerUnit: map[string]float64{"USD": 92, "RUB": 1}}})
	if got := cache.CrossRates(context.Background(), "GBP"); got.Source != "fallback" {
		t.Errorf("unknown base = %+v, want fallback", got)
	}
}

func TestCrossRatesFailureBackoff(t *testing.T) {
	provider := &fakeRates{err: errors.New("cbr down")}
	now := fixedNow
	cache := NewRatesCache(provider, quietLogger())
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if got := cache.CrossRates(context.Background(), "EUR"); got.Source != "fallback" {
			t.Fatalf("request %d: source = %q, want fallback", i, got.Source)
		}
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times during backoff, want 1", provider.calls)
	}

	now = now.Add(failureBackoff + time.Second)
	provider.err = nil
	provider.rates = &cbr.Rates{RUBPerUnit: map[string]float64{"EUR": 100, "USD": 92, "RUB": 1}}
	if got := cache.CrossRates(context.Background(), "EUR"); got.Source != "cbr.ru" {
		t.Errorf("after backoff source = %q, want cbr.ru", got.Source)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestScheduleRefresh(t *testing.T) {
	cache := newCache(&fakeRates{rates: &cbr.Rates{RUBPerUnit: map[string]float64{"RUB": 1}}})
	scheduler := cron.New()

	if err := cache.Schedule(scheduler, "@every 1h"); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(scheduler.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(scheduler.Entries()))
	}
	if err := cache.Schedule(scheduler, "whenever"); err == nil {
		t.Error("expected error for invalid spec")
	}
}
