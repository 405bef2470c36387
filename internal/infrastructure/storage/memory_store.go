package storage

import (
	"context"
	"sync"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

// MemoryStore is a PublishedStore that forgets everything on restart. It
// backs runs where persistence is switched off.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.PublishedRecord
}

var _ ports.PublishedStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.PublishedRecord)}
}

// Load returns a snapshot of the recorded PMIDs.
func (s *MemoryStore) Load(_ context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]bool, len(s.records))
	for pmid := range s.records {
		result[pmid] = true
	}
	return result, nil
}

// Record remembers a published article for the lifetime of the process.
func (s *MemoryStore) Record(_ context.Context, rec domain.PublishedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.PMID]; !exists {
		s.records[rec.PMID] = rec
	}
	return nil
}
