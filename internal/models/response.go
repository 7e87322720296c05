// Package models defines the JSON bodies served by the viewer.
package models

import (
	"github.com/soltixdb/trendcast/internal/analytics/forecast"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ModelResponse describes the saved model the viewer predicts with
type ModelResponse struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Store     string  `json:"store"`
	Path      string  `json:"path"`
}

// PredictResponse is a single point prediction
type PredictResponse struct {
	Year       int     `json:"year"`
	Prediction float64 `json:"prediction"`
	Formatted  string  `json:"formatted"` // two decimals, as printed by the predict tool
}

// ForecastResponse is a run of yearly predictions after From
type ForecastResponse struct {
	From        int                      `json:"from"`
	Horizon     int                      `json:"horizon"`
	Predictions []forecast.ForecastPoint `json:"predictions"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
