package entityindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// Fixture is the on-disk content of a FileShim. Entities are keyed by the
// exact selector string a query will send; settings objects by schema ID.
type Fixture struct {
	Entities    map[string][]EntityRecord   `json:"entities"`
	EntityTypes []EntityTypeRecord          `json:"entityTypes"`
	Settings    map[string][]SettingsObject `json:"settings"`
}

// FileShim is an Index backed by a JSON fixture file, for local runs and tests.
// Created and deleted settings objects are written back to the file.
type FileShim struct {
	filePath string
	mu       sync.RWMutex
	loaded   bool
	fixture  Fixture
}

// Ensure FileShim implements Index.
var _ Index = (*FileShim)(nil)

// NewFileShim creates a shim over the fixture at filePath. A missing file
// behaves as an empty index and is created on the first write.
func NewFileShim(filePath string) *FileShim {
	return &FileShim{filePath: filePath}
}

// NewMemoryShim creates a shim over an in-memory fixture that is never persisted.
func NewMemoryShim(fixture Fixture) *FileShim {
	s := &FileShim{loaded: true, fixture: fixture}
	s.ensureMaps()
	return s
}

// QueryEntities returns the page of entities stored under q.Selector.
func (f *FileShim) QueryEntities(ctx context.Context, q EntityQuery) (*EntityPage, error) {
	if err := f.load(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	records := f.fixture.Entities[q.Selector]
	items, next, err := pageOf(records, q.PageSize, q.NextPageKey)
	if err != nil {
		return nil, err
	}

	return &EntityPage{Entities: items, NextPageKey: next, TotalCount: len(records)}, nil
}

// QueryEntityTypes returns every fixture entity type.
func (f *FileShim) QueryEntityTypes(ctx context.Context, pageSize int) ([]EntityTypeRecord, error) {
	if err := f.load(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]EntityTypeRecord(nil), f.fixture.EntityTypes...), nil
}

// ListSettingsObjects returns one page of settings objects for q.SchemaID.
func (f *FileShim) ListSettingsObjects(ctx context.Context, q SettingsQuery) (*SettingsPage, error) {
	if err := f.load(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	objects := f.fixture.Settings[q.SchemaID]
	items, next, err := pageOf(objects, q.PageSize, q.NextPageKey)
	if err != nil {
		return nil, err
	}

	return &SettingsPage{Items: items, NextPageKey: next, TotalCount: len(objects)}, nil
}

// CreateSettingsObject stores a new object under a generated ID.
func (f *FileShim) CreateSettingsObject(ctx context.Context, obj SettingsObjectCreate) (string, error) {
	if err := f.load(); err != nil {
		return "", err
	}

	value, err := json.Marshal(obj.Value)
	if err != nil {
		return "", fmt.Errorf("marshaling settings value: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New().String()
	f.fixture.Settings[obj.SchemaID] = append(f.fixture.Settings[obj.SchemaID], SettingsObject{
		ObjectID: id,
		SchemaID: obj.SchemaID,
		Scope:    obj.Scope,
		Value:    value,
	})

	if err := f.persist(); err != nil {
		return "", err
	}

	log.Debug().Str("schema", obj.SchemaID).Str("object_id", id).Msg("file shim created settings object")
	return id, nil
}

// DeleteSettingsObject removes an object from whichever schema holds it.
func (f *FileShim) DeleteSettingsObject(ctx context.Context, objectID string) error {
	if err := f.load(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for schema, objects := range f.fixture.Settings {
		for i, o := range objects {
			if o.ObjectID != objectID {
				continue
			}
			f.fixture.Settings[schema] = append(objects[:i:i], objects[i+1:]...)
			if err := f.persist(); err != nil {
				return err
			}
			log.Debug().Str("schema", schema).Str("object_id", objectID).Msg("file shim deleted settings object")
			return nil
		}
	}

	return fmt.Errorf("settings object %s: %w", objectID, domain.ErrNotFound)
}

func (f *FileShim) load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return nil
	}

	data, err := os.ReadFile(f.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading fixture file: %w", err)
	default:
		if err := json.Unmarshal(data, &f.fixture); err != nil {
			return fmt.Errorf("parsing fixture file: %w", err)
		}
	}

	f.ensureMaps()
	f.loaded = true
	return nil
}

func (f *FileShim) ensureMaps() {
	if f.fixture.Entities == nil {
		f.fixture.Entities = map[string][]EntityRecord{}
	}
	if f.fixture.Settings == nil {
		f.fixture.Settings = map[string][]SettingsObject{}
	}
}

// persist must be called with the write lock held.
func (f *FileShim) persist() error {
	if f.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(f.fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling fixture: %w", err)
	}
	if err := os.WriteFile(f.filePath, data, 0644); err != nil {
		return fmt.Errorf("writing fixture file: %w", err)
	}
	return nil
}

// pageOf slices items into pages. Page keys are decimal offsets.
func pageOf[T any](items []T, pageSize int, key string) ([]T, string, error) {
	offset := 0
	if key != "" {
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 || n > len(items) {
			return nil, "", &APIError{StatusCode: 400, Message: "invalid nextPageKey " + strconv.Quote(key)}
		}
		offset = n
	}

	end := len(items)
	if pageSize > 0 && offset+pageSize < end {
		end = offset + pageSize
	}

	page := append([]T{}, items[offset:end]...)
	next := ""
	if end < len(items) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}
