// Package storage defines the local persistence used alongside the remote
// entity index: operator API keys and the audit trail of window saves.
package storage

import (
	"context"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// Storage defines the interface for local data persistence.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// API Keys
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
	CountAPIKeys(ctx context.Context) (int, error)

	// Save records, newest first.
	CreateSaveRecord(ctx context.Context, record *domain.SaveRecord) error
	GetSaveRecord(ctx context.Context, id string) (*domain.SaveRecord, error)
	ListSaveRecords(ctx context.Context, limit, offset int) ([]*domain.SaveRecord, error)
	CountSaveRecords(ctx context.Context) (int, error)
}
