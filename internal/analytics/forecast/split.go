package forecast

import (
	"github.com/soltixdb/trendcast/internal/analytics"
)

// SplitResult is a time-ordered partition of a series. Train is a prefix,
// Test the remaining suffix.
type SplitResult struct {
	Train analytics.Series `json:"train"`
	Test  analytics.Series `json:"test"`
}

// HasTest reports whether a holdout partition exists
func (s SplitResult) HasTest() bool {
	return len(s.Test) > 0
}

// Split holds out the last holdout observations for testing when the series
// has at least twice that many; otherwise everything is used for training and
// Test is empty. A non-positive holdout uses DefaultHoldout.
func Split(series analytics.Series, holdout int) SplitResult {
	if holdout <= 0 {
		holdout = DefaultHoldout
	}

	if len(series) < 2*holdout {
		return SplitResult{
			Train: series.Clone(),
			Test:  analytics.Series{},
		}
	}

	cut := len(series) - holdout
	return SplitResult{
		Train: series[:cut].Clone(),
		Test:  series[cut:].Clone(),
	}
}
