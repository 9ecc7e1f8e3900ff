package versioning

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for tests and the CLI's local mode.
// The mutex makes Insert's check-and-put atomic, which is what gives the
// uniqueness guarantee here.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]map[int]Version
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[int]Version)}
}

// Insert stores a record if its key is absent.
func (s *MemoryStore) Insert(ctx context.Context, v *Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVersion, ok := s.records[v.AcrID]
	if !ok {
		byVersion = make(map[int]Version)
		s.records[v.AcrID] = byVersion
	}
	if _, exists := byVersion[v.Version]; exists {
		return ErrVersionConflict
	}
	byVersion[v.Version] = *v
	return nil
}

// Get returns the record for (acrID, version).
func (s *MemoryStore) Get(ctx context.Context, acrID string, version int) (*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[acrID][version]
	if !ok {
		return nil, ErrVersionNotFound
	}
	out := rec
	return &out, nil
}

// List returns every record for acrID in ascending version order.
func (s *MemoryStore) List(ctx context.Context, acrID string) ([]*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVersion := s.records[acrID]
	out := make([]*Version, 0, len(byVersion))
	for _, rec := range byVersion {
		cp := rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Latest returns the highest-numbered record for acrID.
func (s *MemoryStore) Latest(ctx context.Context, acrID string) (*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVersion := s.records[acrID]
	if len(byVersion) == 0 {
		return nil, ErrVersionNotFound
	}
	max := 0
	for n := range byVersion {
		if n > max {
			max = n
		}
	}
	rec := byVersion[max]
	return &rec, nil
}

// Purge removes every record for acrID.
func (s *MemoryStore) Purge(ctx context.Context, acrID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records[acrID])
	delete(s.records, acrID)
	return n, nil
}
