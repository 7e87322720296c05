package forecast

import (
	"fmt"
	"math"

	"github.com/soltixdb/trendcast/internal/analytics"
)

// Model is a fitted straight line: value = Slope*year + Intercept.
// The JSON field names are read by external consumers and must not change.
type Model struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Predict returns the point prediction for year
func (m Model) Predict(year int) float64 {
	return m.Slope*float64(year) + m.Intercept
}

// FitStatus tags the outcome of a least-squares fit
type FitStatus int

const (
	FitOK FitStatus = iota
	FitDegenerate
)

func (s FitStatus) String() string {
	switch s {
	case FitOK:
		return "ok"
	case FitDegenerate:
		return "degenerate"
	default:
		return fmt.Sprintf("FitStatus(%d)", int(s))
	}
}

// DegenerateReason explains why a fit fell back to the flat zero model
type DegenerateReason string

const (
	ReasonNone             DegenerateReason = ""
	ReasonInsufficientData DegenerateReason = "insufficient_data"
	ReasonZeroYearVariance DegenerateReason = "zero_year_variance"
)

// Uncertainty carries what is needed to widen a forecast into an interval.
// A zero StdError yields bounds equal to the point prediction.
type Uncertainty struct {
	StdError float64 `json:"std_error"`
	N        int     `json:"n"`
	MeanYear float64 `json:"mean_year"`
	SumSqDev float64 `json:"sum_sq_dev"` // Σ(year - MeanYear)²
}

// stdErrorAt is the standard error of a new observation at year
func (u Uncertainty) stdErrorAt(year int) float64 {
	if u.StdError == 0 || u.N == 0 || u.SumSqDev == 0 {
		return 0
	}
	d := float64(year) - u.MeanYear
	return u.StdError * math.Sqrt(1+1/float64(u.N)+d*d/u.SumSqDev)
}

// FitResult is the tagged outcome of FitLeastSquares
type FitResult struct {
	Model       Model            `json:"model"`
	Status      FitStatus        `json:"status"`
	Reason      DegenerateReason `json:"reason,omitempty"`
	N           int              `json:"n"`
	Uncertainty Uncertainty      `json:"uncertainty"`
}

// Degenerate reports whether the fit fell back to slope=0, intercept=0
func (r FitResult) Degenerate() bool {
	return r.Status == FitDegenerate
}

// Warning returns a human readable description of a degenerate fit
func (r FitResult) Warning() string {
	switch r.Reason {
	case ReasonInsufficientData:
		return fmt.Sprintf("not enough data to train the model: %d point(s)", r.N)
	case ReasonZeroYearVariance:
		return "cannot calculate linear regression: all years are identical"
	default:
		return ""
	}
}

func degenerate(n int, reason DegenerateReason) FitResult {
	return FitResult{Status: FitDegenerate, Reason: reason, N: n}
}

// FitLeastSquares fits value against year with the closed-form ordinary
// least-squares solution. Fewer than two points or a single distinct year
// produce a degenerate flat zero model instead of an error.
func FitLeastSquares(train analytics.Series) FitResult {
	n := len(train)
	if n <= 1 {
		return degenerate(n, ReasonInsufficientData)
	}

	nf := float64(n)
	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for _, o := range train {
		x := float64(o.Year)
		sumX += x
		sumY += o.Value
		sumXY += x * o.Value
		sumX2 += x * x
	}

	denominator := nf*sumX2 - sumX*sumX
	if denominator == 0 {
		return degenerate(n, ReasonZeroYearVariance)
	}

	slope := (nf*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / nf
	model := Model{Slope: slope, Intercept: intercept}

	return FitResult{
		Model:       model,
		Status:      FitOK,
		N:           n,
		Uncertainty: residualUncertainty(model, train),
	}
}

func residualUncertainty(model Model, train analytics.Series) Uncertainty {
	n := len(train)
	u := Uncertainty{N: n}
	if n == 0 {
		return u
	}

	for _, o := range train {
		u.MeanYear += float64(o.Year)
	}
	u.MeanYear /= float64(n)

	sse := 0.0
	for _, o := range train {
		r := o.Value - model.Predict(o.Year)
		sse += r * r
		d := float64(o.Year) - u.MeanYear
		u.SumSqDev += d * d
	}
	if n > 2 {
		u.StdError = math.Sqrt(sse / float64(n-2))
	}
	return u
}

// LinearRegressionForecaster exposes the least-squares fit through the
// Forecaster registry.
type LinearRegressionForecaster struct{}

// NewLinearRegressionForecaster creates a new Linear Regression forecaster
func NewLinearRegressionForecaster() *LinearRegressionForecaster {
	return &LinearRegressionForecaster{}
}

func init() {
	RegisterForecaster("linear", NewLinearRegressionForecaster())
}

// Name returns the algorithm name
func (f *LinearRegressionForecaster) Name() string {
	return "linear"
}

// Forecast fits the series and projects it from the anchor year. A
// degenerate fit is reported through ModelInfo rather than as an error.
func (f *LinearRegressionForecaster) Forecast(data analytics.Series, config ForecastConfig) (*ForecastResult, error) {
	if len(data) < config.MinDataPoints {
		return nil, fmt.Errorf("insufficient data points: need %d, have %d", config.MinDataPoints, len(data))
	}

	fit := FitLeastSquares(data)

	fitted := make([]float64, len(data))
	residuals := make([]float64, len(data))
	actual := data.Values()
	for i, o := range data {
		fitted[i] = fit.Model.Predict(o.Year)
		residuals[i] = o.Value - fitted[i]
	}

	return &ForecastResult{
		Predictions: ForecastYears(fit.Model, config.anchor(data), config.horizon(), fit.Uncertainty, config.Confidence),
		Fitted:      fitted,
		Residuals:   residuals,
		Trend:       fit.Model,
		ModelInfo: ModelInfo{
			Algorithm: "linear",
			Parameters: map[string]interface{}{
				"slope":     fit.Model.Slope,
				"intercept": fit.Model.Intercept,
			},
			MAPE:       CalculateMAPE(actual, fitted),
			MAE:        CalculateMAE(actual, fitted),
			RMSE:       CalculateRMSE(actual, fitted),
			R2:         CalculateR2(actual, fitted),
			DataPoints: len(data),
			Degenerate: fit.Degenerate(),
			Warning:    fit.Warning(),
		},
	}, nil
}
