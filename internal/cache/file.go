package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kjstillabower/forecast-cli/internal/forecast"
	"github.com/kjstillabower/forecast-cli/internal/models"
)

// DefaultFileName is the cache file name inside the working directory.
const DefaultFileName = "data.json"

// FileStore implements Store as one pretty-printed JSON file.
// There is no locking: concurrent writers race and the last rename wins.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and validates the cache file. A missing file is a miss, not an error.
// A file that exists but cannot be decoded returns an error wrapping models.ErrDataIntegrity.
func (s *FileStore) Load(ctx context.Context) (models.ForecastDocument, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.ForecastDocument{}, false, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ForecastDocument{}, false, nil
		}
		return models.ForecastDocument{}, false, fmt.Errorf("read cache file: %w", err)
	}
	doc, err := forecast.Decode(data)
	if err != nil {
		return models.ForecastDocument{}, false, fmt.Errorf("cache file %s: %w", s.path, err)
	}
	return doc, true, nil
}

// Save writes the document to a temporary file in the same directory and renames it
// over the cache file, so readers see either the old or the new document.
func (s *FileStore) Save(ctx context.Context, doc models.ForecastDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := forecast.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
