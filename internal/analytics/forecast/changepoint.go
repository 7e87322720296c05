package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/soltixdb/trendcast/internal/analytics"
	"gonum.org/v1/gonum/mat"
)

// ChangepointForecaster fits a piecewise linear trend. A base least-squares
// line over normalized year and value axes locates the points where the mean
// residual shifts the most; the trend is then refit with a hinge at each.
type ChangepointForecaster struct{}

// changepointModel holds the fitted trend in normalized coordinates
type changepointModel struct {
	k            float64   // base growth rate
	m            float64   // offset
	changePoints []float64 // normalized changepoint positions
	deltas       []float64 // rate adjustments at changepoints

	yMin   float64
	yScale float64
	tMin   float64
	tScale float64

	sigma float64 // residual std for prediction intervals
}

// NewChangepointForecaster creates a new changepoint trend forecaster
func NewChangepointForecaster() *ChangepointForecaster {
	return &ChangepointForecaster{}
}

func init() {
	RegisterForecaster("changepoint", NewChangepointForecaster())
}

// Name returns the algorithm name
func (f *ChangepointForecaster) Name() string {
	return "changepoint"
}

// Predict evaluates the fitted trend at year
func (cm *changepointModel) Predict(year int) float64 {
	t := (float64(year) - cm.tMin) / cm.tScale
	return cm.trend(t)*cm.yScale + cm.yMin
}

func (cm *changepointModel) trend(t float64) float64 {
	value := cm.k*t + cm.m
	for i, cp := range cm.changePoints {
		if t > cp {
			value += cm.deltas[i] * (t - cp)
		}
	}
	return value
}

// Forecast fits the changepoint trend and projects it from the anchor year
func (f *ChangepointForecaster) Forecast(data analytics.Series, config ForecastConfig) (*ForecastResult, error) {
	minPoints := max(config.MinDataPoints, 2)
	if len(data) < minPoints {
		return nil, fmt.Errorf("insufficient data points: need at least %d, got %d", minPoints, len(data))
	}

	sorted := data.Clone()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	model, err := f.fit(sorted, config)
	if err != nil {
		return nil, fmt.Errorf("failed to fit changepoint model: %w", err)
	}

	actual := sorted.Values()
	fitted := make([]float64, len(sorted))
	residuals := make([]float64, len(sorted))
	for i, o := range sorted {
		fitted[i] = model.Predict(o.Year)
		residuals[i] = o.Value - fitted[i]
	}

	anchor := config.anchor(sorted)
	horizon := config.horizon()
	predictions := make([]ForecastPoint, horizon)
	for h := 0; h < horizon; h++ {
		year := anchor + h + 1
		value := model.Predict(year)

		// Prediction interval widens with horizon
		lower, upper := calculatePredictionInterval(value, model.sigma*math.Sqrt(float64(h+1)), config.Confidence)
		predictions[h] = ForecastPoint{
			Year:       year,
			Value:      value,
			LowerBound: lower,
			UpperBound: upper,
		}
	}

	cps := make([]int, len(model.changePoints))
	for i, cp := range model.changePoints {
		cps[i] = int(math.Round(cp*model.tScale + model.tMin))
	}

	return &ForecastResult{
		Predictions: predictions,
		Fitted:      fitted,
		Residuals:   residuals,
		Trend:       model,
		ModelInfo: ModelInfo{
			Algorithm: "changepoint",
			Parameters: map[string]interface{}{
				"num_changepoints":  config.NumChangePoints,
				"changepoint_range": config.ChangePointRange,
				"changepoint_scale": config.ChangePointScale,
				"changepoint_years": cps,
			},
			MAPE:       CalculateMAPE(actual, fitted),
			MAE:        CalculateMAE(actual, fitted),
			RMSE:       CalculateRMSE(actual, fitted),
			R2:         CalculateR2(actual, fitted),
			DataPoints: len(data),
		},
	}, nil
}

func (f *ChangepointForecaster) fit(data analytics.Series, config ForecastConfig) (*changepointModel, error) {
	n := len(data)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 data points")
	}

	model := &changepointModel{}
	model.tMin = float64(data[0].Year)
	model.tScale = float64(data[n-1].Year) - model.tMin
	if model.tScale == 0 {
		return nil, fmt.Errorf("all years are identical")
	}

	t := make([]float64, n)
	y := data.Values()
	model.yMin, model.yScale = y[0], 0
	yMax := y[0]
	for i, o := range data {
		t[i] = (float64(o.Year) - model.tMin) / model.tScale
		model.yMin = math.Min(model.yMin, y[i])
		yMax = math.Max(yMax, y[i])
	}
	model.yScale = yMax - model.yMin
	if model.yScale == 0 {
		model.yScale = 1
	}

	yNorm := make([]float64, n)
	for i := range y {
		yNorm[i] = (y[i] - model.yMin) / model.yScale
	}

	f.fitTrend(model, t, yNorm, config)

	residuals := make([]float64, n)
	for i, o := range data {
		residuals[i] = o.Value - model.Predict(o.Year)
	}
	model.sigma = populationStd(residuals)

	return model, nil
}

// fitTrend fits the base line and the changepoint deltas
func (f *ChangepointForecaster) fitTrend(model *changepointModel, t, y []float64, config ForecastConfig) {
	n := len(t)

	sumT, sumY, sumTY, sumT2 := 0.0, 0.0, 0.0, 0.0
	for i := range t {
		sumT += t[i]
		sumY += y[i]
		sumTY += t[i] * y[i]
		sumT2 += t[i] * t[i]
	}

	nf := float64(n)
	denom := nf*sumT2 - sumT*sumT
	if denom == 0 {
		model.k = 0
		model.m = sumY / nf
	} else {
		model.k = (nf*sumTY - sumT*sumY) / denom
		model.m = (sumY - model.k*sumT) / nf
	}

	if config.NumChangePoints <= 0 || n <= config.NumChangePoints {
		return
	}

	idx := detectChangePoints(t, y, model.k, model.m, config)
	if len(idx) == 0 {
		return
	}
	cps := make([]float64, len(idx))
	for i, j := range idx {
		cps[i] = t[j]
	}

	beta, err := solvePiecewise(t, y, cps, config.ChangePointScale)
	if err != nil {
		// keep the base line
		return
	}
	model.m = beta[0]
	model.k = beta[1]
	model.changePoints = cps
	model.deltas = beta[2:]
}

// solvePiecewise refits intercept, slope and one hinge term per changepoint
// with ridge shrinkage on the hinge coefficients. scale is the prior spread
// of a rate change; smaller values bend the trend less.
func solvePiecewise(t, y, cps []float64, scale float64) ([]float64, error) {
	if scale <= 0 {
		scale = DefaultForecastConfig().ChangePointScale
	}
	n, p := len(t), 2+len(cps)

	x := mat.NewDense(n, p, nil)
	for i := range t {
		x.Set(i, 0, 1)
		x.Set(i, 1, t[i])
		for j, cp := range cps {
			x.Set(i, 2+j, math.Max(t[i]-cp, 0))
		}
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	penalty := 0.01 / (scale * scale)
	for j := 2; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+penalty)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), mat.NewVecDense(n, y))

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve piecewise trend: %w", err)
	}
	return beta.RawVector().Data, nil
}

// detectChangePoints ranks positions by the shift in mean residual between
// the windows before and after them.
func detectChangePoints(t, y []float64, k, m float64, config ForecastConfig) []int {
	n := len(t)
	rangeEnd := int(float64(n) * config.ChangePointRange)
	if rangeEnd < 2 {
		return nil
	}

	residuals := make([]float64, n)
	for i := range t {
		residuals[i] = y[i] - (k*t[i] + m)
	}

	type candidate struct {
		idx   int
		score float64
	}
	var candidates []candidate

	window := max(3, n/20)
	for i := window; i < rangeEnd-window; i++ {
		before, after := 0.0, 0.0
		for j := i - window; j < i; j++ {
			before += residuals[j]
		}
		for j := i; j < i+window; j++ {
			after += residuals[j]
		}
		score := math.Abs(after/float64(window) - before/float64(window))
		candidates = append(candidates, candidate{idx: i, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	count := min(config.NumChangePoints, len(candidates))
	result := make([]int, count)
	for i := 0; i < count; i++ {
		result[i] = candidates[i].idx
	}
	sort.Ints(result)
	return result
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
