package services

import (
	"context"
	"errors"
	"os"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/dataset"
	"github.com/soltixdb/trendcast/internal/logging"
)

// Error codes returned by the preparation pipeline
const (
	CodeNoResources = "NO_RESOURCES"
	CodeWriteFailed = "WRITE_FAILED"
)

// PrepService turns the raw resource CSVs into the long table the trainer
// reads.
type PrepService struct {
	logger *logging.Logger
	cfg    *config.Config
}

// NewPrepService creates a new PrepService
func NewPrepService(logger *logging.Logger, cfg *config.Config) *PrepService {
	return &PrepService{logger: logger, cfg: cfg}
}

// PrepReport summarizes a preparation run
type PrepReport struct {
	Years           int      `json:"years"`
	Indicators      int      `json:"indicators"`
	Dropped         []string `json:"dropped,omitempty"`
	StillMissing    int      `json:"still_missing"`
	LongRows        int      `json:"long_rows"`
	WidePath        string   `json:"wide_path"`
	FinalPath       string   `json:"final_path"`
	LongPath        string   `json:"long_path"`
	SkippedUnitLine bool     `json:"skipped_unit_line"`
}

// Run combines, cleans, imputes and melts. Each stage writes its table so
// a failed run can be inspected.
func (s *PrepService) Run(ctx context.Context) (*PrepReport, error) {
	data := s.cfg.Data
	report := &PrepReport{
		WidePath:  data.WidePath,
		FinalPath: data.FinalPath,
		LongPath:  data.LongPath,
	}

	wide, err := dataset.CombineResources(data.ResourcesDir)
	if err != nil {
		code := CodeInputInvalid
		switch {
		case errors.Is(err, dataset.ErrNoResources):
			code = CodeNoResources
		case errors.Is(err, os.ErrNotExist):
			code = CodeInputNotFound
		}
		return nil, wrapError(code, err, "failed to combine resources in %s", data.ResourcesDir)
	}
	s.logger.Info("Resources combined",
		"dir", data.ResourcesDir,
		"years", len(wide.Years),
		"indicators", len(wide.Indicators))

	if err := dataset.WriteWideTable(data.WidePath, wide); err != nil {
		return nil, wrapError(CodeWriteFailed, err, "failed to write wide table")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data.SkipSecondLine {
		if err := dataset.DropSecondLine(data.WidePath, data.CleanedPath); err != nil {
			return nil, wrapError(CodeWriteFailed, err, "failed to clean wide table")
		}
		if wide, err = dataset.ReadWideTable(data.CleanedPath); err != nil {
			return nil, wrapError(CodeInputInvalid, err, "failed to read cleaned table")
		}
		report.SkippedUnitLine = true
		s.logger.Info("Second line removed", "path", data.CleanedPath)
	}

	report.Dropped = wide.DropSparseColumns(data.MissingThreshold)
	if len(report.Dropped) > 0 {
		s.logger.Info("Dropped sparse indicators",
			"count", len(report.Dropped),
			"threshold", data.MissingThreshold)
	}

	report.StillMissing = wide.Impute()
	if report.StillMissing > 0 {
		s.logger.Warn("Cells left missing after imputation", "cells", report.StillMissing)
	}
	report.Years = len(wide.Years)
	report.Indicators = len(wide.Indicators)

	if err := dataset.WriteWideTable(data.FinalPath, wide); err != nil {
		return nil, wrapError(CodeWriteFailed, err, "failed to write final table")
	}

	long := wide.Melt()
	report.LongRows = len(long.Rows)
	if err := dataset.WriteLongTable(data.LongPath, long); err != nil {
		return nil, wrapError(CodeWriteFailed, err, "failed to write long table")
	}

	s.logger.Info("Long table written", "path", data.LongPath, "rows", report.LongRows)
	return report, nil
}
