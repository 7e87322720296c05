package forecast

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/soltixdb/trendcast/internal/analytics"
)

const (
	// DefaultHoldout is the number of trailing observations kept for testing
	DefaultHoldout = 5
	// DefaultHorizon is the number of years projected past the last observation
	DefaultHorizon = 10
	// DefaultConfidence is the prediction interval level
	DefaultConfidence = 0.95
)

// ForecastPoint represents a single yearly forecast
type ForecastPoint struct {
	Year       int     `json:"year"`
	Value      float64 `json:"value"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// TrendModel is anything that can predict a value for a year.
type TrendModel interface {
	Predict(year int) float64
}

// ModelInfo contains metadata about the forecast model
type ModelInfo struct {
	Algorithm  string                 `json:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	MAPE       float64                `json:"mape,omitempty"` // Mean Absolute Percentage Error
	MAE        float64                `json:"mae,omitempty"`  // Mean Absolute Error
	RMSE       float64                `json:"rmse,omitempty"` // Root Mean Squared Error
	R2         float64                `json:"r2,omitempty"`   // Coefficient of determination
	DataPoints int                    `json:"data_points"`
	Degenerate bool                   `json:"degenerate,omitempty"`
	Warning    string                 `json:"warning,omitempty"`
}

// ForecastResult contains the forecast predictions and model information
type ForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	Fitted      []float64       `json:"fitted,omitempty"`    // Fitted values for historical data
	Residuals   []float64       `json:"residuals,omitempty"` // Residuals (actual - fitted)
	ModelInfo   ModelInfo       `json:"model_info"`

	// Trend is the fitted model, usable for scoring held-out years.
	Trend TrendModel `json:"-"`
}

// ForecastConfig holds configuration for the registered forecasters
type ForecastConfig struct {
	Horizon       int     // Number of years to forecast
	Confidence    float64 // Confidence level for prediction intervals (0-1)
	MinDataPoints int     // Minimum data points required
	AnchorYear    int     // Forecast starts after this year; 0 means the last input year

	// Changepoint trend parameters
	NumChangePoints  int
	ChangePointRange float64
	ChangePointScale float64
}

// DefaultForecastConfig returns default forecast configuration
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Horizon:          DefaultHorizon,
		Confidence:       DefaultConfidence,
		MinDataPoints:    2,
		NumChangePoints:  3,
		ChangePointRange: 0.8,
		ChangePointScale: 0.5,
	}
}

// anchor resolves the year the forecast is projected from.
func (c ForecastConfig) anchor(data analytics.Series) int {
	if c.AnchorYear != 0 {
		return c.AnchorYear
	}
	last, _ := data.LastYear()
	return last
}

func (c ForecastConfig) horizon() int {
	if c.Horizon <= 0 {
		return DefaultHorizon
	}
	return c.Horizon
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast fits the series and projects it forward
	Forecast(data analytics.Series, config ForecastConfig) (*ForecastResult, error)
}

var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("unknown forecaster: %s", name)
}

// ListForecasters returns the sorted names of available forecasters
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateMAPE calculates Mean Absolute Percentage Error
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := predicted[i] - actual[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// CalculateR2 calculates the coefficient of determination.
// A constant actual series scores 1 when predicted exactly and 0 otherwise.
func CalculateR2(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	ssRes, ssTot := 0.0, 0.0
	for i := range actual {
		r := actual[i] - predicted[i]
		d := actual[i] - mean
		ssRes += r * r
		ssTot += d * d
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// zScore returns the two-sided standard normal quantile for a confidence
// level. Levels outside (0, 1) use DefaultConfidence.
func zScore(confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 || math.IsNaN(confidence) {
		confidence = DefaultConfidence
	}
	return distuv.UnitNormal.Quantile(0.5 + confidence/2)
}

// calculatePredictionInterval calculates prediction interval bounds
func calculatePredictionInterval(value, stdError, confidence float64) (lower, upper float64) {
	margin := zScore(confidence) * stdError
	return value - margin, value + margin
}
