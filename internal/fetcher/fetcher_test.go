package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex/entityindextest"
)

func records(ids ...string) []entityindex.EntityRecord {
	out := make([]entityindex.EntityRecord, len(ids))
	for i, id := range ids {
		out[i] = entityindex.EntityRecord{EntityID: id, DisplayName: "name " + id, Type: domain.EntityTypeHost}
	}
	return out
}

func entityIDs(entities []domain.PreviewEntity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.EntityID
	}
	return out
}

func TestFetch_FollowsPagesUntilExhausted(t *testing.T) {
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		"type(HOST)": records("HOST-1", "HOST-2", "HOST-3", "HOST-4", "HOST-5"),
	})
	f := New(fake, Options{PageSize: 2})

	got := f.Fetch(context.Background(), "type(HOST)")

	assert.Equal(t, []string{"HOST-1", "HOST-2", "HOST-3", "HOST-4", "HOST-5"}, entityIDs(got))

	queries := fake.Queries()
	require.Len(t, queries, 3)
	assert.Empty(t, queries[0].NextPageKey)
	assert.Equal(t, DefaultFrom, queries[0].From)
	assert.Equal(t, 2, queries[0].PageSize)
	assert.Equal(t, "2", queries[1].NextPageKey)
	assert.Equal(t, "4", queries[2].NextPageKey)
}

func TestFetch_ErrorYieldsEmpty(t *testing.T) {
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		"type(HOST)": records("HOST-1"),
	})
	fake.SelectorErrors["type(HOST)"] = errors.New("boom")

	got := New(fake, Options{}).Fetch(context.Background(), "type(HOST)")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetch_DefaultsMissingFields(t *testing.T) {
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		"sel": {{EntityID: "SERVICE-9"}, {EntityID: "noprefix"}},
	})

	got := New(fake, Options{}).Fetch(context.Background(), "sel")

	assert.Equal(t, []domain.PreviewEntity{
		{EntityID: "SERVICE-9", DisplayName: "SERVICE-9", EntityType: "SERVICE"},
		{EntityID: "noprefix", DisplayName: "noprefix", EntityType: domain.EntityTypeUnknown},
	}, got)
}

func TestFetchMany_OrderFollowsInputNotCompletion(t *testing.T) {
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		"a": records("HOST-1", "HOST-2"),
		"b": records("HOST-2", "HOST-3"),
		"c": records("HOST-4"),
	})
	fake.SelectorErrors["broken"] = errors.New("boom")

	got := New(fake, Options{Concurrency: 4}).FetchMany(context.Background(), []string{"c", "broken", "a", "b"})

	// Raw concatenation; duplicates are kept.
	assert.Equal(t, []string{"HOST-4", "HOST-1", "HOST-2", "HOST-2", "HOST-3"}, entityIDs(got))
}

func TestFetchForFilter_EmptyFilterSkipsIndex(t *testing.T) {
	fake := entityindextest.WithEntities(nil)

	got := New(fake, Options{}).FetchForFilter(context.Background(), domain.EntityFilter{})

	assert.Empty(t, got)
	assert.Empty(t, fake.Queries())
}

func TestFetchForFilter_HostWithProcesses(t *testing.T) {
	anchor := `type(HOST),entityId("HOST-1")`
	processes := `type(PROCESS_GROUP_INSTANCE),fromRelationships.isProcessOf(entityId("HOST-1"))`
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		anchor: {{EntityID: "HOST-1", DisplayName: "web-01", Type: "HOST"}},
		processes: {
			{EntityID: "PROCESS_GROUP_INSTANCE-1", DisplayName: "nginx", Type: "PROCESS_GROUP_INSTANCE"},
			{EntityID: "PROCESS_GROUP_INSTANCE-2", DisplayName: "java", Type: "PROCESS_GROUP_INSTANCE"},
		},
	})

	got := New(fake, Options{}).FetchForFilter(context.Background(), domain.EntityFilter{
		Entities:          []domain.EntityReference{{EntityID: "HOST-1", EntityType: "HOST"}},
		UnderlyingOptions: domain.UnderlyingOptions{IncludeProcesses: true},
	})

	assert.ElementsMatch(t, []string{anchor, processes}, fake.Selectors())
	assert.Equal(t, []string{"HOST-1", "PROCESS_GROUP_INSTANCE-1", "PROCESS_GROUP_INSTANCE-2"}, entityIDs(got))
}

func TestFetchForFilter_RepeatedEntityFetchedOnce(t *testing.T) {
	sel := `type(HOST),entityId("HOST-1")`
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		sel: {{EntityID: "HOST-1", Type: "HOST"}},
	})
	host := domain.EntityReference{EntityID: "HOST-1", EntityType: "HOST"}

	got := New(fake, Options{}).FetchForFilter(context.Background(), domain.EntityFilter{
		Entities: []domain.EntityReference{host, host},
	})

	assert.Equal(t, []string{sel}, fake.Selectors())
	assert.Equal(t, []string{"HOST-1"}, entityIDs(got))
}

func TestFetchForFilters_UnionFirstWins(t *testing.T) {
	one := `type(HOST),entityId("HOST-1")`
	two := `type(HOST),entityId("HOST-2")`
	fake := entityindextest.WithEntities(map[string][]entityindex.EntityRecord{
		one: {{EntityID: "HOST-1", DisplayName: "first", Type: "HOST"}},
		two: {{EntityID: "HOST-2", Type: "HOST"}, {EntityID: "HOST-1", DisplayName: "second", Type: "HOST"}},
	})

	got := New(fake, Options{}).FetchForFilters(context.Background(), []domain.EntityFilter{
		{Entities: []domain.EntityReference{{EntityID: "HOST-1", EntityType: "HOST"}}},
		{},
		{Entities: []domain.EntityReference{{EntityID: "HOST-2", EntityType: "HOST"}}},
	})

	require.Equal(t, []string{"HOST-1", "HOST-2"}, entityIDs(got))
	assert.Equal(t, "first", got[0].DisplayName)
	assert.Len(t, fake.Selectors(), 2)
}

func TestTypeFromID(t *testing.T) {
	tests := map[string]string{
		"HOST-ABC":                   "HOST",
		"PROCESS_GROUP_INSTANCE-1-2": "PROCESS_GROUP_INSTANCE",
		"-1":                         domain.EntityTypeUnknown,
		"plain":                      domain.EntityTypeUnknown,
	}
	for id, want := range tests {
		assert.Equal(t, want, TypeFromID(id), id)
	}
}

// stuckIndex always hands back the same page key.
type stuckIndex struct {
	*entityindextest.Fake
	calls int
}

func (s *stuckIndex) QueryEntities(ctx context.Context, q entityindex.EntityQuery) (*entityindex.EntityPage, error) {
	s.calls++
	return &entityindex.EntityPage{Entities: records("HOST-1"), NextPageKey: "same"}, nil
}

func TestFetch_StopsOnRepeatedPageKey(t *testing.T) {
	idx := &stuckIndex{Fake: entityindextest.New(entityindex.Fixture{})}

	got := New(idx, Options{}).Fetch(context.Background(), "type(HOST)")

	// First page, then one follow-up that repeats the key.
	assert.Equal(t, 2, idx.calls)
	assert.Equal(t, []string{"HOST-1", "HOST-1"}, entityIDs(got))
}
