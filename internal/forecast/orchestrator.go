package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

// Orchestrator runs a forecast end to end:
// ingest, aggregate, summarize, try the AI forecaster once, fall back on any failure.
type Orchestrator struct {
	history  HistorySource
	primary  OptionalForecaster
	fallback Forecaster
	log      *logrus.Logger
}

// NewOrchestrator initializes the pipeline. primary may be nil.
func NewOrchestrator(history HistorySource, primary OptionalForecaster, fallback Forecaster, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{history: history, primary: primary, fallback: fallback, log: log}
}

// Predict forecasts income and expenses for the inclusive period [from, to].
// A zero bound yields ErrPeriodRequired before any data is read.
func (o *Orchestrator) Predict(ctx context.Context, from, to time.Time) (*models.PredictionResult, error) {
	if from.IsZero() || to.IsZero() {
		return nil, ErrPeriodRequired
	}
	period := Period{From: from, To: to}

	summary, err := o.Summarize(ctx, period)
	if err != nil {
		return nil, err
	}

	if o.primary != nil && o.primary.Available() {
		result, err := o.primary.Forecast(ctx, summary)
		if err == nil {
			return result, nil
		}
		o.logFailure(err)
	} else {
		o.log.Warn("OpenAI API key not configured, using fallback prediction")
	}

	result, err := o.fallback.Forecast(ctx, summary)
	if err != nil {
		return nil, &InternalError{Stage: "fallback forecast", Err: err}
	}
	return result, nil
}

// Summarize builds the statistical summary from history before the period start
func (o *Orchestrator) Summarize(ctx context.Context, period Period) (*Summary, error) {
	rows, err := o.history.HistoricalRows(ctx, period.From, HistoryLimit)
	if err != nil {
		return nil, &InternalError{Stage: "load history", Err: err}
	}

	records, err := Ingest(rows)
	if err != nil {
		return nil, &InternalError{Stage: "ingest", Err: err}
	}

	summary := BuildSummary(period, Aggregate(records))
	o.log.WithFields(logrus.Fields{
		"rows":       len(rows),
		"currencies": len(summary.Currencies),
		"months":     summary.PeriodMonths,
	}).Debug("Forecast summary built")
	return summary, nil
}

func (o *Orchestrator) logFailure(err error) {
	var upstream *UpstreamError
	var shape *ResponseShapeError
	switch {
	case errors.As(err, &upstream):
		o.log.Errorf("OpenAI API error: %v", err)
	case errors.As(err, &shape):
		o.log.Warnf("Invalid AI response: %v", err)
	default:
		o.log.Errorf("AI forecast failed: %v", err)
	}
}
