package forecast

import (
	"testing"

	"github.com/soltixdb/trendcast/internal/analytics"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		holdout   int
		wantTrain int
		wantTest  int
	}{
		{"exactly twice the holdout", 10, 5, 5, 5},
		{"below twice the holdout", 6, 5, 6, 0},
		{"long series", 30, 5, 25, 5},
		{"one short of threshold", 9, 5, 9, 0},
		{"empty series", 0, 5, 0, 0},
		{"custom holdout", 8, 3, 5, 3},
		{"default holdout", 12, 0, 7, 5},
		{"negative holdout uses default", 10, -2, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := generateLinearSeries(tt.length, 1, 0)
			got := Split(series, tt.holdout)

			if len(got.Train) != tt.wantTrain {
				t.Errorf("Train length = %d, want %d", len(got.Train), tt.wantTrain)
			}
			if len(got.Test) != tt.wantTest {
				t.Errorf("Test length = %d, want %d", len(got.Test), tt.wantTest)
			}
			if len(got.Train)+len(got.Test) != tt.length {
				t.Errorf("Split lost observations: %d + %d != %d", len(got.Train), len(got.Test), tt.length)
			}
			if got.Test == nil {
				t.Error("Test should be empty, not nil")
			}
			if got.HasTest() != (tt.wantTest > 0) {
				t.Errorf("HasTest() = %v", got.HasTest())
			}
		})
	}
}

func TestSplit_PreservesOrder(t *testing.T) {
	series := generateLinearSeries(10, 1, 0)
	got := Split(series, 5)

	for i := 0; i < 5; i++ {
		if got.Train[i] != series[i] {
			t.Errorf("Train[%d] = %+v, want %+v", i, got.Train[i], series[i])
		}
		if got.Test[i] != series[5+i] {
			t.Errorf("Test[%d] = %+v, want %+v", i, got.Test[i], series[5+i])
		}
	}
}

func TestSplit_DoesNotAliasInput(t *testing.T) {
	series := generateLinearSeries(10, 1, 0)
	got := Split(series, 5)

	got.Train[0].Value = -1
	got.Test[0].Value = -1
	if series[0].Value == -1 || series[5].Value == -1 {
		t.Error("Split result shares storage with its input")
	}

	small := analytics.Series{{Year: 2000, Value: 1}}
	fallback := Split(small, 5)
	fallback.Train[0].Value = 99
	if small[0].Value != 1 {
		t.Error("fallback Train shares storage with its input")
	}
}
