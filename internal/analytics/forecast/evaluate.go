package forecast

import (
	"github.com/soltixdb/trendcast/internal/analytics"
)

// Evaluation holds held-out accuracy. It only exists when a test partition
// was scored.
type Evaluation struct {
	RMSE        float64          `json:"rmse"`
	MAE         float64          `json:"mae"`
	R2          float64          `json:"r2"`
	Predictions analytics.Series `json:"predictions"`
}

// Evaluate scores model on test. It returns ok=false, and no Evaluation,
// when test is empty.
func Evaluate(model TrendModel, test analytics.Series) (eval *Evaluation, ok bool) {
	if len(test) == 0 {
		return nil, false
	}

	actual := test.Values()
	predicted := make([]float64, len(test))
	predictions := make(analytics.Series, len(test))
	for i, o := range test {
		predicted[i] = model.Predict(o.Year)
		predictions[i] = analytics.Observation{Year: o.Year, Value: predicted[i]}
	}

	return &Evaluation{
		RMSE:        CalculateRMSE(actual, predicted),
		MAE:         CalculateMAE(actual, predicted),
		R2:          CalculateR2(actual, predicted),
		Predictions: predictions,
	}, true
}

// ForecastYears projects model over lastYear+1 .. lastYear+horizon. Bounds
// widen with distance from the training years; a zero Uncertainty gives
// bounds equal to the prediction. A non-positive horizon uses DefaultHorizon.
func ForecastYears(model Model, lastYear, horizon int, u Uncertainty, confidence float64) []ForecastPoint {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	points := make([]ForecastPoint, horizon)
	for h := 0; h < horizon; h++ {
		year := lastYear + h + 1
		value := model.Predict(year)
		lower, upper := calculatePredictionInterval(value, u.stdErrorAt(year), confidence)
		points[h] = ForecastPoint{
			Year:       year,
			Value:      value,
			LowerBound: lower,
			UpperBound: upper,
		}
	}
	return points
}
