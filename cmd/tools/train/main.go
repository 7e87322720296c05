package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/modelstore"
	"github.com/soltixdb/trendcast/internal/queue"
	"github.com/soltixdb/trendcast/internal/services"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	indicator := flag.String("indicator", "", "Indicator to train on (overrides training.indicator)")
	input := flag.String("input", "", "Long CSV to read (overrides data.long_path)")
	alternate := flag.String("alternate", "", "Also score a registered model, e.g. changepoint")
	publish := flag.Bool("publish", false, "Publish a model event on the configured queue")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *indicator != "" {
		cfg.Training.Indicator = *indicator
	}
	if *input != "" {
		cfg.Data.LongPath = *input
	}
	if *alternate != "" {
		cfg.Training.Alternate = *alternate
	}

	logger, err := logging.ForTool(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to create output directories", "error", err)
	}

	store, err := modelstore.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open model store", "error", err)
	}
	defer func() { _ = store.Close() }()

	var publisher queue.Publisher
	if *publish {
		q, err := queue.NewQueue(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		defer func() { _ = q.Close() }()
		publisher = q
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.NewTrainingService(logger, cfg, store, publisher)
	report, err := svc.Run(ctx)
	if err != nil {
		logger.Error("Training failed", "code", services.ErrorCode(err), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}

	if *asJSON {
		err = writeJSON(os.Stdout, report)
	} else {
		err = writeReport(os.Stdout, report)
	}
	if err != nil {
		logger.Fatal("Failed to print report", "error", err)
	}
}

func writeJSON(w io.Writer, report *services.TrainingReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writeReport prints the human-readable summary of a run
func writeReport(w io.Writer, r *services.TrainingReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Indicator: %s\n", r.Indicator)
	fmt.Fprintf(&b, "Observations: %d (train %d, test %d)\n", r.SeriesSize, r.TrainSize, r.TestSize)
	fmt.Fprintf(&b, "Model: slope=%.6f intercept=%.6f\n", r.Model.Slope, r.Model.Intercept)
	if r.Degenerate {
		fmt.Fprintf(&b, "Warning: %s\n", r.Warning)
	}
	fmt.Fprintf(&b, "Model saved to %s\n", r.ModelHandle)

	if r.Evaluation != nil {
		fmt.Fprintf(&b, "Test RMSE: %.4f\n", r.Evaluation.RMSE)
	} else {
		fmt.Fprintf(&b, "Test set is empty, evaluation skipped\n")
	}

	if len(r.Forecast) > 0 {
		fmt.Fprintf(&b, "\nForecast (after %d):\n", r.AnchorYear)
		for _, p := range r.Forecast {
			fmt.Fprintf(&b, "  %d: %.2f [%.2f, %.2f]\n", p.Year, p.Value, p.LowerBound, p.UpperBound)
		}
	}

	if r.Alternate != nil {
		switch {
		case r.Alternate.Error != "":
			fmt.Fprintf(&b, "\nAlternate %s failed: %s\n", r.Alternate.Algorithm, r.Alternate.Error)
		case r.Alternate.Evaluation != nil:
			fmt.Fprintf(&b, "\nAlternate %s test RMSE: %.4f\n", r.Alternate.Algorithm, r.Alternate.Evaluation.RMSE)
		default:
			fmt.Fprintf(&b, "\nAlternate %s trained, no test set to score\n", r.Alternate.Algorithm)
		}
	}

	if r.PlotPath != "" {
		fmt.Fprintf(&b, "\nPlot saved to %s\n", r.PlotPath)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
