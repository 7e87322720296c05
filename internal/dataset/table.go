package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/soltixdb/trendcast/internal/analytics"
)

// LongRow is one (indicator, year, value) record. A NaN value is missing.
type LongRow struct {
	Indicator string
	Year      int
	Value     float64
}

// Table is a long-format indicator table. SkippedLines holds the CSV line
// numbers of rows dropped because their year did not parse.
type Table struct {
	Rows         []LongRow
	SkippedLines []int
}

// ReadLongTable reads a long table with Indicator, Year and Value columns.
// Columns are located by name. A missing file returns an error wrapping
// os.ErrNotExist.
func ReadLongTable(path string) (*Table, error) {
	r, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	t, err := ParseLongTable(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// ParseLongTable parses long-format CSV from r. A row whose year does not
// parse is skipped and recorded in SkippedLines.
func ParseLongTable(r io.Reader) (*Table, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require(ColumnIndicator, ColumnYear, ColumnValue); err != nil {
		return nil, err
	}
	iInd, iYear, iVal := h[ColumnIndicator], h[ColumnYear], h[ColumnValue]

	t := &Table{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		year, err := parseYear(field(record, iYear))
		if err != nil {
			line, _ := cr.FieldPos(0)
			t.SkippedLines = append(t.SkippedLines, line)
			continue
		}
		t.Rows = append(t.Rows, LongRow{
			Indicator: field(record, iInd),
			Year:      year,
			Value:     parseValue(field(record, iVal)),
		})
	}
	return t, nil
}

// Select returns the observations of one indicator, matched exactly and
// sorted by year. Rows with a missing value are skipped. No match yields an
// empty series.
func (t *Table) Select(indicator string) analytics.Series {
	series := analytics.Series{}
	for _, row := range t.Rows {
		if row.Indicator != indicator || math.IsNaN(row.Value) {
			continue
		}
		series = append(series, analytics.Observation{Year: row.Year, Value: row.Value})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})
	return series
}

// Indicators returns the sorted unique indicator names
func (t *Table) Indicators() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range t.Rows {
		if _, ok := seen[row.Indicator]; ok {
			continue
		}
		seen[row.Indicator] = struct{}{}
		names = append(names, row.Indicator)
	}
	sort.Strings(names)
	return names
}

// WriteCSV writes the table as Year,Indicator,Value rows
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnYear, ColumnIndicator, ColumnValue}); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := []string{strconv.Itoa(row.Year), row.Indicator, formatValue(row.Value)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLongTable writes t to path atomically
func WriteLongTable(path string, t *Table) error {
	if err := writeTable(path, t.WriteCSV); err != nil {
		return fmt.Errorf("failed to write long table %s: %w", path, err)
	}
	return nil
}
