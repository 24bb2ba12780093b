package cache

import (
	"context"
	"sync"

	"github.com/kjstillabower/forecast-cli/internal/models"
)

// Store holds the single cached forecast document.
// Load returns (doc, true, nil) when a document exists, (zero, false, nil) when none
// has been stored yet. Save replaces any previous document wholesale.
type Store interface {
	Load(ctx context.Context) (models.ForecastDocument, bool, error)
	Save(ctx context.Context, doc models.ForecastDocument) error
}

// InMemoryStore implements Store in process memory. Used by tests and by callers
// that do not want a cache file.
type InMemoryStore struct {
	mu  sync.Mutex
	doc *models.ForecastDocument
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Load implements Store.Load.
func (s *InMemoryStore) Load(ctx context.Context) (models.ForecastDocument, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.ForecastDocument{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return models.ForecastDocument{}, false, nil
	}
	return cloneDocument(*s.doc), true, nil
}

// Save implements Store.Save.
func (s *InMemoryStore) Save(ctx context.Context, doc models.ForecastDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneDocument(doc)
	s.doc = &c
	return nil
}

func cloneDocument(doc models.ForecastDocument) models.ForecastDocument {
	out := doc
	out.Records = append([]models.ForecastPoint(nil), doc.Records...)
	out.Raw = append([]byte(nil), doc.Raw...)
	return out
}
