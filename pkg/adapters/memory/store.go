package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Document
	mu   sync.RWMutex
}

var _ ports.DocumentStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Document),
	}
}

// Save keeps a deep copy of the document. The returned location is "memory://<name>".
func (s *Store) Save(ctx context.Context, name string, doc domain.Document) (string, error) {
	if name == "" {
		return "", fmt.Errorf("document name cannot be empty")
	}
	copied := domain.Document{Schema: domain.CopyMap(doc.Schema), State: domain.CopyMap(doc.State)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return "memory://" + name, nil
}

// Load returns a copy so callers can't mutate the stored document.
func (s *Store) Load(ctx context.Context, name string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[name]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}
	return domain.Document{Schema: domain.CopyMap(doc.Schema), State: domain.CopyMap(doc.State)}, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
