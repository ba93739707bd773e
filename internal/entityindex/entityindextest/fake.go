// Package entityindextest provides an in-memory Index with failure injection
// and call recording for tests.
package entityindextest

import (
	"context"
	"sync"

	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
)

// Fake wraps a memory shim. Errors set on the fake take precedence over the
// shim's data; every call is recorded.
type Fake struct {
	*entityindex.FileShim

	mu sync.Mutex

	// SelectorErrors fails QueryEntities for the given selector.
	SelectorErrors map[string]error
	TypesErr       error
	ListErr        error
	CreateErr      error
	// CreateEmptyID makes CreateSettingsObject succeed without an ID.
	CreateEmptyID bool
	DeleteErrors  map[string]error

	queries []entityindex.EntityQuery
	created []entityindex.SettingsObjectCreate
	deleted []string
	lists   int
}

// Ensure Fake implements Index.
var _ entityindex.Index = (*Fake)(nil)

// New creates a fake seeded with fixture.
func New(fixture entityindex.Fixture) *Fake {
	return &Fake{
		FileShim:       entityindex.NewMemoryShim(fixture),
		SelectorErrors: map[string]error{},
		DeleteErrors:   map[string]error{},
	}
}

// WithEntities is shorthand for a fake holding only entities keyed by selector.
func WithEntities(entities map[string][]entityindex.EntityRecord) *Fake {
	return New(entityindex.Fixture{Entities: entities})
}

func (f *Fake) QueryEntities(ctx context.Context, q entityindex.EntityQuery) (*entityindex.EntityPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	err := f.SelectorErrors[q.Selector]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return f.FileShim.QueryEntities(ctx, q)
}

func (f *Fake) QueryEntityTypes(ctx context.Context, pageSize int) ([]entityindex.EntityTypeRecord, error) {
	if f.TypesErr != nil {
		return nil, f.TypesErr
	}
	return f.FileShim.QueryEntityTypes(ctx, pageSize)
}

func (f *Fake) ListSettingsObjects(ctx context.Context, q entityindex.SettingsQuery) (*entityindex.SettingsPage, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.FileShim.ListSettingsObjects(ctx, q)
}

func (f *Fake) CreateSettingsObject(ctx context.Context, obj entityindex.SettingsObjectCreate) (string, error) {
	f.mu.Lock()
	f.created = append(f.created, obj)
	f.mu.Unlock()

	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	if f.CreateEmptyID {
		return "", nil
	}
	return f.FileShim.CreateSettingsObject(ctx, obj)
}

func (f *Fake) DeleteSettingsObject(ctx context.Context, objectID string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, objectID)
	err := f.DeleteErrors[objectID]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return f.FileShim.DeleteSettingsObject(ctx, objectID)
}

// Queries returns every entity query received, in call order.
func (f *Fake) Queries() []entityindex.EntityQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entityindex.EntityQuery(nil), f.queries...)
}

// Selectors returns the selectors of first-page queries, in call order.
func (f *Fake) Selectors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, q := range f.queries {
		if q.NextPageKey == "" {
			out = append(out, q.Selector)
		}
	}
	return out
}

// Created returns every create payload received.
func (f *Fake) Created() []entityindex.SettingsObjectCreate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entityindex.SettingsObjectCreate(nil), f.created...)
}

// Deleted returns every object ID a delete was attempted for.
func (f *Fake) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// ListCalls returns how many settings listings were requested.
func (f *Fake) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
