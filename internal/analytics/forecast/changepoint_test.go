package forecast

import (
	"math"
	"testing"

	"github.com/soltixdb/trendcast/internal/analytics"
)

func TestChangepointForecaster_Name(t *testing.T) {
	if name := NewChangepointForecaster().Name(); name != "changepoint" {
		t.Errorf("Expected name 'changepoint', got %s", name)
	}
}

func TestChangepointForecaster_LinearData(t *testing.T) {
	data := generateLinearSeries(40, 2.0, -3900)
	config := DefaultForecastConfig()
	config.Horizon = 5

	result, err := NewChangepointForecaster().Forecast(data, config)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if len(result.Predictions) != 5 {
		t.Fatalf("Expected 5 predictions, got %d", len(result.Predictions))
	}
	if result.Predictions[0].Year != testStartYear+40 {
		t.Errorf("Expected first forecast year %d, got %d", testStartYear+40, result.Predictions[0].Year)
	}
	if result.ModelInfo.Algorithm != "changepoint" {
		t.Errorf("Expected algorithm 'changepoint', got %s", result.ModelInfo.Algorithm)
	}
	// Straight lines have no residual shifts, so no bend is applied.
	if result.ModelInfo.RMSE > 1e-6 {
		t.Errorf("Expected near-zero RMSE on linear data, got %v", result.ModelInfo.RMSE)
	}
	if r2 := result.ModelInfo.R2; math.Abs(r2-1) > 1e-9 {
		t.Errorf("Expected R2 of 1, got %v", r2)
	}
}

func TestChangepointForecaster_BeatsLineOnKink(t *testing.T) {
	data := generateKinkedSeries(40)
	config := DefaultForecastConfig()

	cp, err := NewChangepointForecaster().Forecast(data, config)
	if err != nil {
		t.Fatalf("changepoint forecast failed: %v", err)
	}
	lin, err := NewLinearRegressionForecaster().Forecast(data, config)
	if err != nil {
		t.Fatalf("linear forecast failed: %v", err)
	}

	if cp.ModelInfo.RMSE >= lin.ModelInfo.RMSE {
		t.Errorf("Expected changepoint RMSE %v below linear RMSE %v", cp.ModelInfo.RMSE, lin.ModelInfo.RMSE)
	}

	years, ok := cp.ModelInfo.Parameters["changepoint_years"].([]int)
	if !ok || len(years) == 0 {
		t.Fatalf("Expected detected changepoint years, got %v", cp.ModelInfo.Parameters["changepoint_years"])
	}
}

func TestChangepointForecaster_TrendUsableForScoring(t *testing.T) {
	data := generateKinkedSeries(30)
	split := Split(data, 5)

	result, err := NewChangepointForecaster().Forecast(split.Train, DefaultForecastConfig())
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	eval, ok := Evaluate(result.Trend, split.Test)
	if !ok {
		t.Fatal("Expected evaluation of the held-out years")
	}
	if math.IsNaN(eval.RMSE) || eval.RMSE < 0 {
		t.Errorf("Invalid RMSE %v", eval.RMSE)
	}
}

func TestChangepointForecaster_Errors(t *testing.T) {
	f := NewChangepointForecaster()

	if _, err := f.Forecast(analytics.Series{{Year: 2000, Value: 1}}, DefaultForecastConfig()); err == nil {
		t.Error("Expected error for a single point")
	}

	same := analytics.Series{{Year: 2000, Value: 1}, {Year: 2000, Value: 5}}
	if _, err := f.Forecast(same, DefaultForecastConfig()); err == nil {
		t.Error("Expected error when all years are identical")
	}
}

func TestChangepointForecaster_AnchorYear(t *testing.T) {
	config := DefaultForecastConfig()
	config.AnchorYear = 2030
	config.Horizon = 2

	result, err := NewChangepointForecaster().Forecast(generateLinearSeries(12, 1, 0), config)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if result.Predictions[0].Year != 2031 || result.Predictions[1].Year != 2032 {
		t.Errorf("Unexpected forecast years %d, %d", result.Predictions[0].Year, result.Predictions[1].Year)
	}
}
