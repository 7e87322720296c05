package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/services"
)

func sampleReport() *services.TrainingReport {
	return &services.TrainingReport{
		RunID:       "run-1",
		Indicator:   "Access to electricity (% of population)",
		SeriesSize:  12,
		TrainSize:   7,
		TestSize:    5,
		Model:       forecast.Model{Slope: 2, Intercept: -3990},
		Evaluation:  &forecast.Evaluation{RMSE: 1.5},
		AnchorYear:  2011,
		Forecast:    []forecast.ForecastPoint{{Year: 2012, Value: 34, LowerBound: 33, UpperBound: 35}},
		ModelHandle: "output/linear_regression_model.json",
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Indicator: Access to electricity (% of population)\n")
	assert.Contains(t, out, "Observations: 12 (train 7, test 5)\n")
	assert.Contains(t, out, "Model: slope=2.000000 intercept=-3990.000000\n")
	assert.Contains(t, out, "Test RMSE: 1.5000\n")
	assert.Contains(t, out, "Forecast (after 2011):\n  2012: 34.00 [33.00, 35.00]\n")
	assert.NotContains(t, out, "Plot saved")
}

func TestWriteReport_DegenerateWithoutTest(t *testing.T) {
	r := sampleReport()
	r.Degenerate = true
	r.Warning = "insufficient training data (1 points), using flat zero model"
	r.Evaluation = nil
	r.Alternate = &services.AlternateReport{Algorithm: "changepoint", Error: "insufficient data points"}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "Warning: insufficient training data")
	assert.Contains(t, out, "Test set is empty, evaluation skipped\n")
	assert.Contains(t, out, "Alternate changepoint failed: insufficient data points\n")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, map[string]interface{}{"slope": 2.0, "intercept": -3990.0}, decoded["model"])
	assert.NotContains(t, decoded, "alternate")
}
