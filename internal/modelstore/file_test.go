package modelstore

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
)

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "output", "linear_regression_model.json")
	store := NewFileStore(path)

	models := []forecast.Model{
		{Slope: 2, Intercept: -3990},
		{Slope: 0.1 + 0.2, Intercept: 1e-300},
		{Slope: -123.456789012345678, Intercept: 98765.4321},
		{Slope: 0, Intercept: 0},
		{Slope: math.Copysign(0, -1), Intercept: math.Copysign(0, -1)},
		{Slope: math.SmallestNonzeroFloat64, Intercept: -math.MaxFloat64},
	}

	for _, m := range models {
		h, err := store.Save(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, Handle(path), h)

		got, err := store.Load(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(m.Slope), math.Float64bits(got.Slope))
		assert.Equal(t, math.Float64bits(m.Intercept), math.Float64bits(got.Intercept))
	}

	_, err := os.Stat(path + ".tmp")
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file should not remain")
}

func TestFileStore_RecordFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	_, err := NewFileStore(path).Save(context.Background(), forecast.Model{Slope: 1.5, Intercept: -2})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slope": 1.5, "intercept": -2}`, string(data))
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := store.Load(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileStore_RejectsNonFinite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")
	store := NewFileStore(path)

	_, err := store.Save(ctx, forecast.Model{Slope: 3, Intercept: 4})
	require.NoError(t, err)

	for _, m := range []forecast.Model{
		{Slope: math.NaN()},
		{Slope: 1, Intercept: math.Inf(1)},
		{Slope: math.Inf(-1)},
	} {
		_, err := store.Save(ctx, m)
		assert.ErrorIs(t, err, ErrInvalidModel)
	}

	got, err := store.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, forecast.Model{Slope: 3, Intercept: 4}, got)
}

func TestFileStore_FailedSaveKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")
	store := NewFileStore(path)

	_, err := store.Save(ctx, forecast.Model{Slope: 1, Intercept: 2})
	require.NoError(t, err)

	// a directory in the temp file's place makes the write fail
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	_, err = store.Save(ctx, forecast.Model{Slope: 9, Intercept: 9})
	require.Error(t, err)

	got, err := store.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, forecast.Model{Slope: 1, Intercept: 2}, got)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewFileStore(filepath.Join(t.TempDir(), "model.json"))
	_, err := store.Save(ctx, forecast.Model{Slope: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    forecast.Model
		wantErr bool
	}{
		{name: "valid", data: `{"slope": 2, "intercept": -1}`, want: forecast.Model{Slope: 2, Intercept: -1}},
		{name: "extra fields ignored", data: `{"slope": 2, "intercept": -1, "n": 7}`, want: forecast.Model{Slope: 2, Intercept: -1}},
		{name: "missing intercept", data: `{"slope": 2}`, wantErr: true},
		{name: "missing slope", data: `{"intercept": 2}`, wantErr: true},
		{name: "not json", data: `slope=2`, wantErr: true},
		{name: "wrong type", data: `{"slope": "2", "intercept": 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
