package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrPeriodRequired is returned when the target period is missing a bound
	ErrPeriodRequired = errors.New("date range required")
	// ErrAIUnavailable is returned when no forecasting service credential is configured
	ErrAIUnavailable = errors.New("AI forecaster is not configured")
)

// UpstreamError means the forecasting service was unreachable or refused the request
type UpstreamError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("forecasting service returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("forecasting service unavailable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ResponseShapeError means the forecasting service replied with something unusable
type ResponseShapeError struct {
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return "could not parse AI response: " + e.Reason
}

// InternalError wraps failures of the deterministic part of the pipeline
type InternalError struct {
	Stage string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
