// Package dataset reads, reshapes and writes the indicator tables the trend
// models are trained on.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/soltixdb/trendcast/internal/compression"
	"github.com/soltixdb/trendcast/internal/utils"
)

// Column names of the long and resource tables
const (
	ColumnIndicator     = "Indicator"
	ColumnIndicatorName = "Indicator Name"
	ColumnYear          = "Year"
	ColumnValue         = "Value"
)

var (
	// ErrMissingColumn is returned when a required header column is absent
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoResources is returned when a resources directory has no CSV files
	ErrNoResources = errors.New("no CSV files found")
)

// openTable opens path for reading, decoding compressed files by suffix.
// A missing file yields an error that wraps os.ErrNotExist.
func openTable(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("input table %s not found: %w", path, err)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r, err := compression.NewReader(f, compression.ForPath(path))
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	closeAll := func() error {
		rerr := r.Close()
		if err := f.Close(); err != nil {
			return err
		}
		return rerr
	}
	return r, closeAll, nil
}

// writeTable writes path atomically, encoding compressed output by suffix.
func writeTable(path string, fill func(w io.Writer) error) error {
	return utils.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		enc, err := compression.NewWriter(w, compression.ForPath(path))
		if err != nil {
			return err
		}
		if err := fill(enc); err != nil {
			return err
		}
		return enc.Close()
	})
}

// header maps column names to their positions
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	names, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	h := make(header, len(names))
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		h[strings.TrimSpace(name)] = i
	}
	return h, nil
}

func (h header) require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// parseYear accepts integral years, including the "2000.0" form written by
// tools that store years as floats.
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if year, err := strconv.Atoi(s); err == nil {
		return year, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// parseValue coerces a cell to a number; anything non-numeric is missing (NaN)
func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// formatValue renders a number for CSV output; missing values are empty
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
