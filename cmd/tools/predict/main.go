package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/modelstore"
	"github.com/soltixdb/trendcast/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run prints a prediction for the year in args. It returns the process
// exit code: 1 when the model cannot be loaded, 0 otherwise.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file")
	modelPath := fs.String("model", "", "Model file (overrides model_store.path)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *modelPath != "" {
		cfg.ModelStore.Type = string(utils.StoreTypeFile)
		cfg.ModelStore.Path = *modelPath
	}

	logger, err := logging.ForTool(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	store, err := modelstore.NewStore(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), utils.StoreOperationTimeout)
	defer cancel()

	logger.Debug("Loading model", "type", cfg.ModelStore.Type, "path", cfg.ModelStore.Path)
	model, err := store.Load(ctx, "")
	if err != nil {
		if errors.Is(err, modelstore.ErrModelNotFound) {
			fmt.Fprintf(stderr, "Error: Model file not found at %s. Please run the training tool first.\n", cfg.ModelStore.Path)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, "Usage: predict <year>")
		fmt.Fprintf(stdout, "Example prediction for year %d: %.2f\n", utils.ExampleYear, model.Predict(utils.ExampleYear))
		return 0
	}

	year, err := strconv.Atoi(strings.TrimSpace(fs.Arg(0)))
	if err != nil {
		fmt.Fprintln(stdout, "Error: Please provide a valid year as a command-line argument.")
		return 0
	}

	fmt.Fprintf(stdout, "Prediction for year %d: %.2f\n", year, model.Predict(year))
	return 0
}
