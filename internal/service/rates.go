package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/integrations/cbr"
	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DashboardCurrencies are the currencies shown on the dashboard
var DashboardCurrencies = []string{"EUR", "USD", "RUB"}

const (
	defaultBase    = "EUR"
	sourceCBR      = "cbr.ru"
	sourceFallback = "fallback"

	// failureBackoff is how long a failed on-demand fetch is not retried
	failureBackoff = time.Minute
)

// fallbackRates are EUR based and used whenever no official rates are available
var fallbackRates = map[string]float64{"EUR": 1, "USD": 1.08, "RUB": 105}

// RatesProvider fetches official rates in RUB per unit
type RatesProvider interface {
	GetRates(ctx context.Context, onDate time.Time) (*cbr.Rates, error)
}

// RatesCache keeps the latest official rates, refreshed on a schedule
type RatesCache struct {
	provider RatesProvider
	log      *logrus.Logger
	now      func() time.Time

	mu          sync.RWMutex
	snapshot    *cbr.Rates
	lastFailure time.Time
}

// NewRatesCache initializes an empty cache
func NewRatesCache(provider RatesProvider, log *logrus.Logger) *RatesCache {
	return &RatesCache{provider: provider, log: log, now: time.Now}
}

// Refresh fetches today's rates and replaces the snapshot
func (c *RatesCache) Refresh(ctx context.Context) error {
	rates, err := c.provider.GetRates(ctx, c.now())
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastFailure = c.now()
		return err
	}
	c.snapshot = rates
	c.lastFailure = time.Time{}
	return nil
}

// Schedule registers the refresh job on the cron scheduler
func (c *RatesCache) Schedule(scheduler *cron.Cron, spec string) error {
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.log.Warnf("Scheduled exchange rate refresh failed: %v", err)
		}
	})
	return err
}

func (c *RatesCache) current(ctx context.Context) *cbr.Rates {
	c.mu.RLock()
	snapshot, lastFailure := c.snapshot, c.lastFailure
	c.mu.RUnlock()
	if snapshot != nil {
		return snapshot
	}
	if !lastFailure.IsZero() && c.now().Sub(lastFailure) < failureBackoff {
		return nil
	}

	if err := c.Refresh(ctx); err != nil {
		c.log.Errorf("Exchange rate fetch error: %v", err)
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// CrossRates expresses one unit of base in each dashboard currency.
// Falls back to static EUR based rates when official rates are unavailable.
func (c *RatesCache) CrossRates(ctx context.Context, base string) *models.ExchangeRates {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = defaultBase
	}

	snapshot := c.current(ctx)
	if snapshot == nil {
		return c.fallback()
	}

	baseInRUB, ok := snapshot.RUBPerUnit[base]
	if !ok || baseInRUB == 0 {
		c.log.Warnf("No official rate for base currency %s", base)
		return c.fallback()
	}

	rates := make(map[string]float64, len(DashboardCurrencies))
	for _, code := range DashboardCurrencies {
		codeInRUB, ok := snapshot.RUBPerUnit[code]
		if !ok || codeInRUB == 0 {
			rates[code] = 1
			continue
		}
		rates[code] = decimal.NewFromFloat(baseInRUB / codeInRUB).Round(4).InexactFloat64()
	}

	return &models.ExchangeRates{
		Rates:  rates,
		Base:   base,
		Date:   snapshot.Date.Format("2006-01-02"),
		Source: sourceCBR,
	}
}

func (c *RatesCache) fallback() *models.ExchangeRates {
	rates := make(map[string]float64, len(fallbackRates))
	for k, v := range fallbackRates {
		rates[k] = v
	}
	return &models.ExchangeRates{
		Rates:  rates,
		Base:   defaultBase,
		Date:   c.now().Format("2006-01-02"),
		Source: sourceFallback,
	}
}
