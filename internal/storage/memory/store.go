// Package memory is an in-process storage backend for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

// Store is an in-memory implementation of the storage interface.
type Store struct {
	mu sync.RWMutex

	apiKeys     map[string]*domain.APIKey
	saveRecords map[string]*domain.SaveRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		apiKeys:     make(map[string]*domain.APIKey),
		saveRecords: make(map[string]*domain.SaveRecord),
	}
}

func (s *Store) Close() error { return nil }

// ============================================
// API Keys
// ============================================

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[key.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, existing := range s.apiKeys {
		if existing.KeyHash == key.KeyHash {
			return domain.ErrAlreadyExists
		}
	}
	stored := *key
	s.apiKeys[key.ID] = &stored
	return nil
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.apiKeys {
		if key.KeyHash == keyHash {
			out := *key
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*domain.APIKey, 0, len(s.apiKeys))
	for _, key := range s.apiKeys {
		out := *key
		keys = append(keys, &out)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.apiKeys, id)
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, exists := s.apiKeys[id]
	if !exists {
		return domain.ErrNotFound
	}
	now := time.Now()
	key.LastUsedAt = &now
	return nil
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apiKeys), nil
}

// ============================================
// Save Records
// ============================================

func (s *Store) CreateSaveRecord(ctx context.Context, record *domain.SaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.saveRecords[record.ID]; exists {
		return domain.ErrAlreadyExists
	}
	stored := *record
	s.saveRecords[record.ID] = &stored
	return nil
}

func (s *Store) GetSaveRecord(ctx context.Context, id string) (*domain.SaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.saveRecords[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	out := *record
	return &out, nil
}

func (s *Store) ListSaveRecords(ctx context.Context, limit, offset int) ([]*domain.SaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*domain.SaveRecord, 0, len(s.saveRecords))
	for _, r := range s.saveRecords {
		out := *r
		records = append(records, &out)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if offset >= len(records) {
		return []*domain.SaveRecord{}, nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end], nil
}

func (s *Store) CountSaveRecords(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.saveRecords), nil
}
