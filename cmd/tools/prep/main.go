package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	resources := flag.String("resources", "", "Directory of raw indicator CSVs (overrides data.resources_dir)")
	output := flag.String("output", "", "Long CSV to write (overrides data.long_path)")
	threshold := flag.Float64("threshold", -1, "Drop indicators missing more than this share (overrides data.missing_threshold)")
	skipSecond := flag.Bool("skip-second-line", false, "Remove the line under the wide table header")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *resources != "" {
		cfg.Data.ResourcesDir = *resources
	}
	if *output != "" {
		cfg.Data.LongPath = *output
	}
	if *threshold >= 0 {
		cfg.Data.MissingThreshold = *threshold
	}
	if *skipSecond {
		cfg.Data.SkipSecondLine = true
	}

	logger, err := logging.ForTool(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	report, err := services.NewPrepService(logger, cfg).Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Combined %d years of %d indicators\n", report.Years, report.Indicators)
	if len(report.Dropped) > 0 {
		fmt.Printf("Dropped %d indicators missing more than %.0f%% of years\n", len(report.Dropped), cfg.Data.MissingThreshold*100)
	}
	if report.StillMissing > 0 {
		fmt.Printf("%d cells could not be imputed\n", report.StillMissing)
	}
	fmt.Printf("Final table saved to: %s\n", report.FinalPath)
	fmt.Printf("Long table saved to: %s (%d rows)\n", report.LongPath, report.LongRows)
}
