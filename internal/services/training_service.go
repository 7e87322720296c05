package services

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/trendcast/internal/analytics"
	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/dataset"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/modelstore"
	"github.com/soltixdb/trendcast/internal/plot"
	"github.com/soltixdb/trendcast/internal/queue"
	"github.com/soltixdb/trendcast/internal/utils"
)

// TrainingService runs one training pass over the configured indicator
type TrainingService struct {
	logger    *logging.Logger
	cfg       *config.Config
	store     modelstore.Store
	publisher queue.Publisher // optional
	now       func() time.Time
}

// NewTrainingService creates a new TrainingService. publisher may be nil.
func NewTrainingService(
	logger *logging.Logger,
	cfg *config.Config,
	store modelstore.Store,
	publisher queue.Publisher,
) *TrainingService {
	return &TrainingService{
		logger:    logger,
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// TrainingReport summarizes a training run
type TrainingReport struct {
	RunID     string `json:"run_id"`
	Indicator string `json:"indicator"`

	SeriesSize int `json:"series_size"`
	TrainSize  int `json:"train_size"`
	TestSize   int `json:"test_size"`

	Model      forecast.Model           `json:"model"`
	Degenerate bool                     `json:"degenerate"`
	Warning    string                   `json:"warning,omitempty"`
	Evaluation *forecast.Evaluation     `json:"evaluation,omitempty"` // nil when there was no test partition
	Forecast   []forecast.ForecastPoint `json:"forecast"`

	// TrainLastYear is the last year the fit saw. AnchorYear is the last
	// year of the whole series; the forecast starts after it.
	TrainLastYear int `json:"train_last_year,omitempty"`
	AnchorYear    int `json:"anchor_year,omitempty"`

	ModelHandle modelstore.Handle `json:"model_handle"`
	PlotPath    string            `json:"plot_path,omitempty"` // empty when no plot was written
	Published   bool              `json:"published"`

	Alternate *AlternateReport `json:"alternate,omitempty"`

	TrainedAt time.Time     `json:"trained_at"`
	Duration  time.Duration `json:"duration"`

	// Train and Test are kept for rendering
	Train analytics.Series `json:"-"`
	Test  analytics.Series `json:"-"`
}

// AlternateReport scores a registered forecaster on the same split
type AlternateReport struct {
	Algorithm  string               `json:"algorithm"`
	ModelInfo  forecast.ModelInfo   `json:"model_info"`
	Evaluation *forecast.Evaluation `json:"evaluation,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Run executes load, select, split, fit, save, evaluate and forecast, then
// the optional plot, publish and alternate model steps. Only loading and
// saving are fatal.
func (s *TrainingService) Run(ctx context.Context) (*TrainingReport, error) {
	start := s.now()
	runID := uuid.New().String()
	logger := s.logger.With("run_id", runID)
	ctx = logging.WithLogger(logging.WithRunID(ctx, runID), logger)

	indicator := s.cfg.Training.Indicator
	report := &TrainingReport{
		RunID:     runID,
		Indicator: indicator,
		TrainedAt: start.UTC(),
	}

	series, err := s.loadSeries(logger, indicator)
	if err != nil {
		return nil, err
	}
	report.SeriesSize = series.Len()
	if series.Len() == 0 {
		logger.Warn("Indicator matched no rows", "indicator", indicator, "path", s.cfg.Data.LongPath)
	}

	split := forecast.Split(series, s.cfg.Training.Holdout)
	report.Train, report.Test = split.Train, split.Test
	report.TrainSize, report.TestSize = split.Train.Len(), split.Test.Len()
	if last, ok := split.Train.LastYear(); ok {
		report.TrainLastYear = last
	}

	fit := forecast.FitLeastSquares(split.Train)
	report.Model = fit.Model
	report.Degenerate = fit.Degenerate()
	report.Warning = fit.Warning()
	if fit.Degenerate() {
		logger.Warn("Degenerate fit, using flat zero model",
			"reason", string(fit.Reason),
			"train_size", fit.N)
	} else {
		logger.Info("Model trained",
			"slope", fit.Model.Slope,
			"intercept", fit.Model.Intercept,
			"train_size", fit.N)
	}

	saveCtx, cancel := context.WithTimeout(ctx, utils.StoreOperationTimeout)
	handle, err := s.store.Save(saveCtx, fit.Model)
	cancel()
	if err != nil {
		return nil, wrapError(CodeModelSaveFailed, err, "failed to save model")
	}
	report.ModelHandle = handle
	logger.Info("Model saved", "handle", string(handle))

	if eval, ok := forecast.Evaluate(fit.Model, split.Test); ok {
		report.Evaluation = eval
		logger.Info("Model evaluated", "rmse", eval.RMSE, "mae", eval.MAE, "r2", eval.R2, "test_size", split.Test.Len())
	} else {
		logger.Warn("Test set is empty, skipping evaluation", "series_size", series.Len(), "holdout", s.cfg.Training.Holdout)
	}

	if anchor, ok := series.LastYear(); ok {
		report.AnchorYear = anchor
		report.Forecast = forecast.ForecastYears(fit.Model, anchor, s.cfg.Forecast.Horizon, fit.Uncertainty, s.cfg.Forecast.Confidence)
	} else {
		report.Forecast = []forecast.ForecastPoint{}
		logger.Warn("No observed years, skipping forecast")
	}

	s.renderPlot(logger, report)
	s.publish(ctx, logger, report)
	s.compareAlternate(logger, report)

	report.Duration = s.now().Sub(start)
	logging.InfoCtx(ctx, "Training run completed",
		"indicator", indicator,
		"degenerate", report.Degenerate,
		"forecast_years", len(report.Forecast),
		"duration", report.Duration)
	return report, nil
}

func (s *TrainingService) loadSeries(logger *logging.Logger, indicator string) (analytics.Series, error) {
	path := s.cfg.Data.LongPath
	table, err := dataset.ReadLongTable(path)
	if err != nil {
		code := CodeInputInvalid
		if errors.Is(err, os.ErrNotExist) {
			code = CodeInputNotFound
		}
		return nil, wrapError(code, err, "failed to load input table")
	}
	if n := len(table.SkippedLines); n > 0 {
		logger.Warn("Skipped rows with an unparsable year",
			"path", path,
			"rows", n,
			"first_line", table.SkippedLines[0])
	}
	return table.Select(indicator), nil
}

func (s *TrainingService) renderPlot(logger *logging.Logger, report *TrainingReport) {
	if s.cfg.Output.PlotFile == "" {
		return
	}

	chart := &plot.ForecastChart{
		Indicator: report.Indicator,
		Train:     report.Train,
		Test:      report.Test,
		Model:     report.Model,
		Forecast:  report.Forecast,
	}
	if report.Evaluation != nil {
		chart.TestPredictions = report.Evaluation.Predictions
	}

	path := s.cfg.PlotPath()
	if err := plot.RenderForecast(chart, path); err != nil {
		logger.Warn("Failed to render plot", "path", path, "error", err)
		return
	}
	report.PlotPath = path
	logger.Info("Plot saved", "path", path)
}

func (s *TrainingService) publish(ctx context.Context, logger *logging.Logger, report *TrainingReport) {
	if s.publisher == nil {
		return
	}

	ev := queue.ModelTrainedEvent{
		RunID:      report.RunID,
		Indicator:  report.Indicator,
		Handle:     string(report.ModelHandle),
		Slope:      report.Model.Slope,
		Intercept:  report.Model.Intercept,
		Degenerate: report.Degenerate,
		TrainedAt:  report.TrainedAt,
	}
	if report.Evaluation != nil {
		rmse := report.Evaluation.RMSE
		ev.RMSE = &rmse
	}

	pubCtx, cancel := context.WithTimeout(ctx, utils.PublishTimeout)
	defer cancel()
	if err := queue.PublishModelTrained(pubCtx, s.publisher, ev); err != nil {
		logger.Warn("Failed to publish model event", "error", err)
		return
	}
	report.Published = true
}

func (s *TrainingService) compareAlternate(logger *logging.Logger, report *TrainingReport) {
	name := s.cfg.Training.Alternate
	if name == "" {
		return
	}

	alt := &AlternateReport{Algorithm: name}
	report.Alternate = alt

	forecaster, err := forecast.GetForecaster(name)
	if err != nil {
		alt.Error = err.Error()
		logger.Warn("Unknown alternate model", "algorithm", name, "available", forecast.ListForecasters())
		return
	}

	fc := forecast.DefaultForecastConfig()
	fc.Horizon = s.cfg.Forecast.Horizon
	fc.Confidence = s.cfg.Forecast.Confidence
	fc.AnchorYear = report.AnchorYear

	result, err := forecaster.Forecast(report.Train, fc)
	if err != nil {
		alt.Error = err.Error()
		logger.Warn("Alternate model failed", "algorithm", name, "error", err)
		return
	}
	alt.ModelInfo = result.ModelInfo

	if eval, ok := forecast.Evaluate(result.Trend, report.Test); ok {
		alt.Evaluation = eval
		fields := []interface{}{"algorithm", name, "rmse", eval.RMSE}
		if report.Evaluation != nil {
			fields = append(fields, "baseline_rmse", report.Evaluation.RMSE)
		}
		logger.Info("Alternate model evaluated", fields...)
	}
}
