package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultMissingThreshold drops indicator columns more than half empty
const DefaultMissingThreshold = 0.5

// WideTable holds one row per year and one column per indicator.
// Values[row][col] is NaN when the cell is missing.
type WideTable struct {
	Indicators []string
	Years      []int
	Values     [][]float64
}

// CombineResources reads every *.csv in dir, each with Year, Indicator Name
// and Value columns, and pivots them into a wide table. Duplicate
// (year, indicator) cells are summed; non-numeric values count as missing.
// HXL hashtag rows are skipped.
func CombineResources(dir string) (*WideTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read resources directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoResources, dir)
	}
	sort.Strings(files)

	p := newPivot()
	for _, file := range files {
		if err := p.addResource(file); err != nil {
			return nil, err
		}
	}
	return p.table(), nil
}

type cellKey struct {
	year      int
	indicator string
}

type pivot struct {
	cells      map[cellKey]float64
	years      map[int]struct{}
	indicators map[string]struct{}
}

func newPivot() *pivot {
	return &pivot{
		cells:      make(map[cellKey]float64),
		years:      make(map[int]struct{}),
		indicators: make(map[string]struct{}),
	}
}

func (p *pivot) addResource(path string) error {
	r, closeFn, err := openTable(path)
	if err != nil {
		return err
	}
	defer closeFn()

	cr := newCSVReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := h.require(ColumnYear, ColumnIndicatorName, ColumnValue); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	iYear, iInd, iVal := h[ColumnYear], h[ColumnIndicatorName], h[ColumnValue]

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: failed to read row: %w", filepath.Base(path), err)
		}

		if isTagRow(record) {
			continue
		}
		year, err := parseYear(field(record, iYear))
		if err != nil {
			line, _ := cr.FieldPos(0)
			return fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		key := cellKey{year: year, indicator: field(record, iInd)}
		p.years[year] = struct{}{}
		p.indicators[key.indicator] = struct{}{}

		v := parseValue(field(record, iVal))
		if math.IsNaN(v) {
			continue
		}
		p.cells[key] += v
	}
}

// isTagRow reports whether record is an HXL hashtag row such as
// "#date+year,#indicator+name,#indicator+value": every non-empty cell
// starts with '#', and at least one cell is non-empty.
func isTagRow(record []string) bool {
	tagged := false
	for _, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if !strings.HasPrefix(cell, "#") {
			return false
		}
		tagged = true
	}
	return tagged
}

func (p *pivot) table() *WideTable {
	t := &WideTable{}
	for y := range p.years {
		t.Years = append(t.Years, y)
	}
	sort.Ints(t.Years)
	for ind := range p.indicators {
		t.Indicators = append(t.Indicators, ind)
	}
	sort.Strings(t.Indicators)

	t.Values = make([][]float64, len(t.Years))
	for i, y := range t.Years {
		row := make([]float64, len(t.Indicators))
		for j, ind := range t.Indicators {
			if v, ok := p.cells[cellKey{year: y, indicator: ind}]; ok {
				row[j] = v
			} else {
				row[j] = math.NaN()
			}
		}
		t.Values[i] = row
	}
	return t
}

// ReadWideTable reads a wide table whose Year column sits anywhere in the
// header and every other column is an indicator.
func ReadWideTable(path string) (*WideTable, error) {
	r, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	cr := newCSVReader(r)
	names, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	yearCol := -1
	t := &WideTable{}
	var cols []int
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == ColumnYear {
			yearCol = i
			continue
		}
		t.Indicators = append(t.Indicators, name)
		cols = append(cols, i)
	}
	if yearCol < 0 {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingColumn, ColumnYear)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read row: %w", path, err)
		}
		year, err := parseYear(field(record, yearCol))
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = parseValue(field(record, c))
		}
		t.Years = append(t.Years, year)
		t.Values = append(t.Values, row)
	}
	return t, nil
}

// WriteCSV writes the table with Year as the first column
func (t *WideTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{ColumnYear}, t.Indicators...)); err != nil {
		return err
	}

	record := make([]string, len(t.Indicators)+1)
	for i, year := range t.Years {
		record[0] = strconv.Itoa(year)
		for j, v := range t.Values[i] {
			record[j+1] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWideTable writes t to path atomically
func WriteWideTable(path string, t *WideTable) error {
	if err := writeTable(path, t.WriteCSV); err != nil {
		return fmt.Errorf("failed to write wide table %s: %w", path, err)
	}
	return nil
}

// DropSparseColumns removes indicators whose share of missing cells is
// strictly greater than threshold and returns their names.
func (t *WideTable) DropSparseColumns(threshold float64) []string {
	if len(t.Years) == 0 {
		return nil
	}

	var keep []int
	var dropped []string
	for j, ind := range t.Indicators {
		missing := 0
		for i := range t.Values {
			if math.IsNaN(t.Values[i][j]) {
				missing++
			}
		}
		if float64(missing)/float64(len(t.Years)) > threshold {
			dropped = append(dropped, ind)
			continue
		}
		keep = append(keep, j)
	}
	if len(dropped) == 0 {
		return nil
	}

	indicators := make([]string, len(keep))
	for k, j := range keep {
		indicators[k] = t.Indicators[j]
	}
	for i, row := range t.Values {
		kept := make([]float64, len(keep))
		for k, j := range keep {
			kept[k] = row[j]
		}
		t.Values[i] = kept
	}
	t.Indicators = indicators
	return dropped
}

type byYear struct{ t *WideTable }

func (b byYear) Len() int           { return len(b.t.Years) }
func (b byYear) Less(i, j int) bool { return b.t.Years[i] < b.t.Years[j] }
func (b byYear) Swap(i, j int) {
	b.t.Years[i], b.t.Years[j] = b.t.Years[j], b.t.Years[i]
	b.t.Values[i], b.t.Values[j] = b.t.Values[j], b.t.Values[i]
}

// Impute sorts rows by year, forward fills each column and back fills the
// leading gaps. It returns the number of cells still missing, which are the
// cells of all-empty columns.
func (t *WideTable) Impute() int {
	sort.Stable(byYear{t})

	for j := range t.Indicators {
		last := math.NaN()
		for i := range t.Values {
			if math.IsNaN(t.Values[i][j]) {
				t.Values[i][j] = last
			} else {
				last = t.Values[i][j]
			}
		}

		next := math.NaN()
		for i := len(t.Values) - 1; i >= 0; i-- {
			if math.IsNaN(t.Values[i][j]) {
				t.Values[i][j] = next
			} else {
				next = t.Values[i][j]
			}
		}
	}

	return t.MissingCells()
}

// MissingCells counts NaN cells
func (t *WideTable) MissingCells() int {
	missing := 0
	for _, row := range t.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				missing++
			}
		}
	}
	return missing
}

// Melt converts the table to long form, indicator by indicator in column
// order and year by year in row order. Missing cells are kept as NaN.
func (t *WideTable) Melt() *Table {
	long := &Table{Rows: make([]LongRow, 0, len(t.Indicators)*len(t.Years))}
	for j, ind := range t.Indicators {
		for i, year := range t.Years {
			long.Rows = append(long.Rows, LongRow{
				Indicator: ind,
				Year:      year,
				Value:     t.Values[i][j],
			})
		}
	}
	return long
}

// DropSecondLine copies src to dst without the line directly under the
// header.
func DropSecondLine(src, dst string) error {
	r, closeFn, err := openTable(src)
	if err != nil {
		return err
	}
	defer closeFn()

	err = writeTable(dst, func(w io.Writer) error {
		br := bufio.NewReader(r)
		for i := 0; ; i++ {
			line, err := br.ReadString('\n')
			if i != 1 && line != "" {
				if _, werr := io.WriteString(w, line); werr != nil {
					return werr
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to clean %s: %w", src, err)
	}
	return nil
}
