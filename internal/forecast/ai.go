package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Dan9191/finance-dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

// AIForecaster delegates the forecast to an external text-generation service
type AIForecaster struct {
	completer Completer
	log       *logrus.Logger
}

// NewAIForecaster initializes a forecaster backed by the given completer
func NewAIForecaster(completer Completer, log *logrus.Logger) *AIForecaster {
	return &AIForecaster{completer: completer, log: log}
}

// Available reports whether the forecasting service can be called at all
func (f *AIForecaster) Available() bool {
	return f != nil && f.completer != nil && f.completer.Configured()
}

// Forecast asks the service for whole-period totals per currency.
// The returned amounts are used as-is.
func (f *AIForecaster) Forecast(ctx context.Context, summary *Summary) (*models.PredictionResult, error) {
	if !f.Available() {
		return nil, ErrAIUnavailable
	}

	prompt, err := BuildPrompt(summary)
	if err != nil {
		return nil, &InternalError{Stage: "build prompt", Err: err}
	}

	content, err := f.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		upstream := &UpstreamError{Err: err}
		var withStatus interface{ HTTPStatus() int }
		if errors.As(err, &withStatus) {
			upstream.StatusCode = withStatus.HTTPStatus()
		}
		return nil, upstream
	}
	f.log.Debugf("AI forecast reply: %s", content)

	reply, err := ParseReply(content)
	if err != nil {
		return nil, err
	}

	result := newResult(summary, models.MethodAI)
	result.Predictions = reply.Predictions
	result.Insights = reply.Insights
	return result, nil
}

// Reply is the decoded forecasting service answer
type Reply struct {
	Predictions map[string]models.Prediction
	Insights    *string
}

type replyPrediction struct {
	PredictedIncome  *float64 `json:"predicted_income"`
	PredictedExpense *float64 `json:"predicted_expense"`
	PredictedNet     *float64 `json:"predicted_net"`
	IncomeTrend      *float64 `json:"income_trend"`
	ExpenseTrend     *float64 `json:"expense_trend"`
	Confidence       *float64 `json:"confidence"`
}

type replyEnvelope struct {
	Predictions map[string]replyPrediction `json:"predictions"`
	Insights    *string                    `json:"insights"`
}

// ParseReply extracts the JSON object from the reply text, which may be
// surrounded by prose or markdown fences, and validates its shape.
func ParseReply(content string) (*Reply, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return nil, &ResponseShapeError{Reason: "no JSON object in reply"}
	}

	var env replyEnvelope
	if err := json.Unmarshal([]byte(content[start:end+1]), &env); err != nil {
		return nil, &ResponseShapeError{Reason: err.Error()}
	}
	if env.Predictions == nil {
		return nil, &ResponseShapeError{Reason: "missing predictions"}
	}

	reply := &Reply{
		Predictions: make(map[string]models.Prediction, len(env.Predictions)),
		Insights:    env.Insights,
	}
	for currency, p := range env.Predictions {
		prediction, err := p.toModel()
		if err != nil {
			return nil, &ResponseShapeError{Reason: fmt.Sprintf("%s: %v", currency, err)}
		}
		reply.Predictions[currency] = prediction
	}
	return reply, nil
}

func (p replyPrediction) toModel() (models.Prediction, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"predicted_income", p.PredictedIncome},
		{"predicted_expense", p.PredictedExpense},
		{"predicted_net", p.PredictedNet},
		{"income_trend", p.IncomeTrend},
		{"expense_trend", p.ExpenseTrend},
		{"confidence", p.Confidence},
	}
	for _, f := range fields {
		if f.value == nil {
			return models.Prediction{}, fmt.Errorf("missing %s", f.name)
		}
	}

	confidence := int(math.Round(*p.Confidence))
	if confidence < 1 || confidence > 100 {
		return models.Prediction{}, fmt.Errorf("confidence %v out of range 1-100", *p.Confidence)
	}

	return models.Prediction{
		PredictedIncome:  *p.PredictedIncome,
		PredictedExpense: *p.PredictedExpense,
		PredictedNet:     *p.PredictedNet,
		IncomeTrend:      *p.IncomeTrend,
		ExpenseTrend:     *p.ExpenseTrend,
		Confidence:       confidence,
	}, nil
}
