// Package modelstore persists fitted trend models as small JSON records.
package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
)

var (
	// ErrModelNotFound is returned by Load when nothing was saved under the
	// handle. It wraps os.ErrNotExist.
	ErrModelNotFound = fmt.Errorf("model not found: %w", os.ErrNotExist)
	// ErrInvalidModel is returned for records that cannot be saved or decoded
	ErrInvalidModel = errors.New("invalid model")
)

// Handle identifies a saved model: a file path or an etcd key
type Handle string

// Store saves and loads fitted models
type Store interface {
	Save(ctx context.Context, m forecast.Model) (Handle, error)
	Load(ctx context.Context, h Handle) (forecast.Model, error)
	Close() error
}

// Versioner is implemented by stores that can tell whether a saved record
// changed without decoding it.
type Versioner interface {
	Version(ctx context.Context, h Handle) (string, error)
}

// record mirrors forecast.Model with presence checks on decode
type record struct {
	Slope     *float64 `json:"slope"`
	Intercept *float64 `json:"intercept"`
}

func validate(m forecast.Model) error {
	if math.IsNaN(m.Slope) || math.IsInf(m.Slope, 0) {
		return fmt.Errorf("%w: slope is not finite", ErrInvalidModel)
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidModel)
	}
	return nil
}

// Encode renders m as the persisted JSON record
func Encode(m forecast.Model) ([]byte, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted record. Both fields are required.
func Decode(data []byte) (forecast.Model, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return forecast.Model{}, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if rec.Slope == nil || rec.Intercept == nil {
		return forecast.Model{}, fmt.Errorf("%w: slope and intercept are required", ErrInvalidModel)
	}

	m := forecast.Model{Slope: *rec.Slope, Intercept: *rec.Intercept}
	if err := validate(m); err != nil {
		return forecast.Model{}, err
	}
	return m, nil
}
