package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
	"github.com/soltixdb/trendcast/internal/utils"
)

// FileStore keeps one model in a JSON file. Saves go through a temporary
// file and a rename, so a failed save leaves the previous model intact.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the destination file
func (s *FileStore) Path() string {
	return s.path
}

// Save writes m to the configured path
func (s *FileStore) Save(ctx context.Context, m forecast.Model) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Encode(m)
	if err != nil {
		return "", err
	}

	err = utils.WriteFileAtomic(s.path, 0o644, func(w io.Writer) error {
		_, werr := w.Write(data)
		return werr
	})
	if err != nil {
		return "", fmt.Errorf("failed to save model to %s: %w", s.path, err)
	}
	return Handle(s.path), nil
}

// Load reads the model at h. An empty handle means the configured path.
func (s *FileStore) Load(ctx context.Context, h Handle) (forecast.Model, error) {
	if err := ctx.Err(); err != nil {
		return forecast.Model{}, err
	}

	path := s.resolve(h)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return forecast.Model{}, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return forecast.Model{}, fmt.Errorf("failed to read model %s: %w", path, err)
	}

	m, err := Decode(data)
	if err != nil {
		return forecast.Model{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Version returns the modification time and size of the model file
func (s *FileStore) Version(_ context.Context, h Handle) (string, error) {
	path := s.resolve(h)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return "", err
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 10) + "/" + strconv.FormatInt(info.Size(), 10), nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) resolve(h Handle) string {
	if h == "" {
		return s.path
	}
	return string(h)
}
