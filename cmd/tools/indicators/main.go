package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/dataset"
	"github.com/soltixdb/trendcast/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	input := flag.String("input", "", "Long CSV to read (overrides data.long_path)")
	output := flag.String("output", "", "Markdown file to write (default: <output.dir>/<output.indicators_file>)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Data.LongPath = *input
	}
	path := cfg.IndicatorsPath()
	if *output != "" {
		path = *output
	}

	logger, err := logging.ForTool(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	table, err := dataset.ReadLongTable(cfg.Data.LongPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error: The file %s was not found.\n", cfg.Data.LongPath)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	names := table.Indicators()
	logger.Debug("Indicators found", "count", len(names))
	if err := dataset.WriteIndicatorsFile(path, names); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully saved the list of %d indicators to %s\n", len(names), path)
}
