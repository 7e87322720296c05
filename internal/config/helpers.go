package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Output.Dir,
		filepath.Dir(c.Data.LongPath),
	}
	if c.ModelStore.Type == "file" {
		dirs = append(dirs, filepath.Dir(c.ModelStore.Path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// GetOutputPath returns the full path for an output artifact
func (c *Config) GetOutputPath(filename string) string {
	return filepath.Join(c.Output.Dir, filename)
}

// PlotPath returns where the forecast plot is written
func (c *Config) PlotPath() string {
	return c.GetOutputPath(c.Output.PlotFile)
}

// IndicatorsPath returns where the indicator listing is written
func (c *Config) IndicatorsPath() string {
	return c.GetOutputPath(c.Output.IndicatorsFile)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetViewerAddress returns the HTTP listen address of the viewer
func (c *Config) GetViewerAddress() string {
	return fmt.Sprintf("%s:%d", c.Viewer.Host, c.Viewer.HTTPPort)
}

// ValidYear reports whether year is accepted by the viewer
func (c *ViewerConfig) ValidYear(year int) bool {
	return year >= c.MinYear && year <= c.MaxYear
}
