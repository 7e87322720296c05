// Package analytics provides the common yearly series types shared by the
// dataset reader, the forecasting models and the viewers.
package analytics

import (
	"math"
)

// Observation is a single yearly data point of one indicator.
type Observation struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of observations for one indicator,
// non-decreasing by year.
type Series []Observation

// Values extracts just the values from the series
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, o := range s {
		values[i] = o.Value
	}
	return values
}

// Years extracts the years as float64, the regressor of every trend model
func (s Series) Years() []float64 {
	years := make([]float64, len(s))
	for i, o := range s {
		years[i] = float64(o.Year)
	}
	return years
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s)
}

// Clone returns a copy that does not share backing storage with s.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// LastYear returns the largest year in the series. ok is false for an
// empty series.
func (s Series) LastYear() (year int, ok bool) {
	if len(s) == 0 {
		return 0, false
	}
	year = s[0].Year
	for _, o := range s[1:] {
		if o.Year > year {
			year = o.Year
		}
	}
	return year, true
}

// Mean calculates the mean of all values
func (s Series) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range s {
		sum += o.Value
	}
	return sum / float64(len(s))
}

// StdDev calculates the sample standard deviation of all values
func (s Series) StdDev() float64 {
	if len(s) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, o := range s {
		diff := o.Value - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(s)-1))
}
