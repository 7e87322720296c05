// Package plot renders training and forecast charts as PNG images.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/soltixdb/trendcast/internal/analytics"
	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/utils"
)

var (
	colorTrain     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorTest      = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorTestPred  = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	colorFit       = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorForecast  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorInterval  = color.RGBA{R: 44, G: 160, B: 44, A: 110}
	dashes         = []vg.Length{vg.Points(6), vg.Points(4)}
	intervalDashes = []vg.Length{vg.Points(2), vg.Points(3)}
)

// ForecastChart holds everything drawn on a forecast plot
type ForecastChart struct {
	Indicator       string
	Train           analytics.Series
	Test            analytics.Series
	TestPredictions analytics.Series
	Model           forecast.Model
	Forecast        []forecast.ForecastPoint
}

// Size of the rendered image
var (
	Width  = 12 * vg.Inch
	Height = 7 * vg.Inch
)

// Build assembles the plot without rendering it
func (c *ForecastChart) Build() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Forecast for: " + c.Indicator
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Value"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	if err := addScatter(p, "Training Data", c.Train, colorTrain); err != nil {
		return nil, err
	}
	if err := addScatter(p, "Test Data", c.Test, colorTest); err != nil {
		return nil, err
	}
	if err := addLine(p, "Test Predictions", seriesXYs(c.TestPredictions), colorTestPred, dashes); err != nil {
		return nil, err
	}
	if err := addLine(p, "Linear Regression Fit", fitXYs(c.Model, c.Train), colorFit, nil); err != nil {
		return nil, err
	}

	values, lower, upper := forecastXYs(c.Forecast)
	if err := addLine(p, "Future Forecast", values, colorForecast, dashes); err != nil {
		return nil, err
	}
	if hasInterval(c.Forecast) {
		if err := addLine(p, "Prediction Interval", lower, colorInterval, intervalDashes); err != nil {
			return nil, err
		}
		if err := addLine(p, "", upper, colorInterval, intervalDashes); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RenderForecast writes the chart as a PNG to path, atomically
func RenderForecast(c *ForecastChart, path string) error {
	p, err := c.Build()
	if err != nil {
		return fmt.Errorf("failed to build plot: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}

	err = utils.WriteFileAtomic(path, os.FileMode(0o644), func(w io.Writer) error {
		_, werr := wt.WriteTo(w)
		return werr
	})
	if err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

func addScatter(p *plot.Plot, name string, s analytics.Series, c color.Color) error {
	if len(s) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(seriesXYs(s))
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(sc)
	p.Legend.Add(name, sc)
	return nil
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, dashes []vg.Length) error {
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(2)
	line.Dashes = dashes

	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

func seriesXYs(s analytics.Series) plotter.XYs {
	xys := make(plotter.XYs, len(s))
	for i, o := range s {
		xys[i].X = float64(o.Year)
		xys[i].Y = o.Value
	}
	return xys
}

// fitXYs spans the fitted line over the training years
func fitXYs(m forecast.Model, train analytics.Series) plotter.XYs {
	if len(train) == 0 {
		return nil
	}
	lo, hi := train[0].Year, train[0].Year
	for _, o := range train {
		if o.Year < lo {
			lo = o.Year
		}
		if o.Year > hi {
			hi = o.Year
		}
	}
	return plotter.XYs{
		{X: float64(lo), Y: m.Predict(lo)},
		{X: float64(hi), Y: m.Predict(hi)},
	}
}

func forecastXYs(points []forecast.ForecastPoint) (values, lower, upper plotter.XYs) {
	for _, fp := range points {
		x := float64(fp.Year)
		values = append(values, plotter.XY{X: x, Y: fp.Value})
		lower = append(lower, plotter.XY{X: x, Y: fp.LowerBound})
		upper = append(upper, plotter.XY{X: x, Y: fp.UpperBound})
	}
	return values, lower, upper
}

func hasInterval(points []forecast.ForecastPoint) bool {
	for _, fp := range points {
		if fp.UpperBound != fp.LowerBound {
			return true
		}
	}
	return false
}
