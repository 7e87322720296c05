package plot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/trendcast/internal/analytics"
	"github.com/soltixdb/trendcast/internal/analytics/forecast"
)

func sampleChart() *ForecastChart {
	model := forecast.Model{Slope: 2, Intercept: -3990}
	var train, test analytics.Series
	for y := 2000; y < 2010; y++ {
		train = append(train, analytics.Observation{Year: y, Value: model.Predict(y) + float64(y%3)})
	}
	for y := 2010; y < 2013; y++ {
		test = append(test, analytics.Observation{Year: y, Value: model.Predict(y)})
	}

	return &ForecastChart{
		Indicator:       "Electric power consumption (kWh per capita)",
		Train:           train,
		Test:            test,
		TestPredictions: test,
		Model:           model,
		Forecast:        forecast.ForecastYears(model, 2012, 5, forecast.Uncertainty{StdError: 1, N: 10, MeanYear: 2004.5, SumSqDev: 82.5}, 0.95),
	}
}

func TestRenderForecast_WritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "custom_forecast_plot.png")

	require.NoError(t, RenderForecast(sampleChart(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "expected a PNG header")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_TitleAndLegend(t *testing.T) {
	p, err := sampleChart().Build()
	require.NoError(t, err)
	assert.Equal(t, "Forecast for: Electric power consumption (kWh per capita)", p.Title.Text)
}

func TestBuild_EmptyLayersSkipped(t *testing.T) {
	chart := &ForecastChart{
		Indicator: "nothing",
		Train:     analytics.Series{{Year: 2000, Value: 1}},
	}
	_, err := chart.Build()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "p.png")
	assert.NoError(t, RenderForecast(chart, path))
}

func TestBuild_RejectsNaN(t *testing.T) {
	chart := sampleChart()
	chart.Forecast = []forecast.ForecastPoint{{Year: 2020, Value: math.NaN()}}

	_, err := chart.Build()
	assert.Error(t, err)
}

func TestFitXYs(t *testing.T) {
	m := forecast.Model{Slope: 1, Intercept: 0}
	xys := fitXYs(m, analytics.Series{{Year: 2003}, {Year: 2001}, {Year: 2005}})
	require.Len(t, xys, 2)
	assert.Equal(t, 2001.0, xys[0].X)
	assert.Equal(t, 2005.0, xys[1].Y)

	assert.Nil(t, fitXYs(m, nil))
}
