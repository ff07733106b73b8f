package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/forecast"
	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Predictor produces a forecast for an inclusive period
type Predictor interface {
	Predict(ctx context.Context, from, to time.Time) (*models.PredictionResult, error)
}

// DashboardStore provides the raw dashboard breakdowns
type DashboardStore interface {
	GroupedTotals(ctx context.Context, from, to *time.Time) ([]models.GroupedTotal, error)
	Transactions(ctx context.Context, from, to *time.Time) ([]models.DashboardTransaction, error)
}

// Service handles business logic
type Service struct {
	store     DashboardStore
	predictor Predictor
	rates     *RatesCache
	log       *logrus.Logger
}

// NewService initializes a new service
func NewService(store DashboardStore, predictor Predictor, rates *RatesCache, log *logrus.Logger) *Service {
	return &Service{store: store, predictor: predictor, rates: rates, log: log}
}

// Predict forecasts income and expenses per currency for [from, to]
func (s *Service) Predict(ctx context.Context, from, to time.Time) (*models.PredictionResult, error) {
	started := time.Now()
	result, err := s.predictor.Predict(ctx, from, to)
	if err != nil {
		if !errors.Is(err, forecast.ErrPeriodRequired) {
			s.log.Errorf("Prediction error: %v", err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"method":      result.Method,
		"currencies":  len(result.Predictions),
		"period_days": result.PeriodDays,
		"duration":    time.Since(started).String(),
	}).Info("Prediction computed")
	return result, nil
}

// DashboardData loads the grouped totals and the transaction list for an optional range
func (s *Service) DashboardData(ctx context.Context, from, to *time.Time) (*models.DashboardData, error) {
	data := &models.DashboardData{
		Data:         []models.GroupedTotal{},
		Transactions: []models.DashboardTransaction{},
		DateFrom:     formatDate(from),
		DateTo:       formatDate(to),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.store.GroupedTotals(gctx, from, to)
		if err != nil {
			return err
		}
		if totals != nil {
			data.Data = totals
		}
		return nil
	})
	g.Go(func() error {
		txs, err := s.store.Transactions(gctx, from, to)
		if err != nil {
			return err
		}
		if txs != nil {
			data.Transactions = txs
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Errorf("Dashboard data error: %v", err)
		return nil, err
	}

	return data, nil
}

// ExchangeRates returns EUR/USD/RUB cross rates relative to base
func (s *Service) ExchangeRates(ctx context.Context, base string) *models.ExchangeRates {
	return s.rates.CrossRates(ctx, base)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
