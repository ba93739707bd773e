// Package fetcher retrieves the entities matched by compiled selectors.
package fetcher

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/merger"
	"github.com/bcnelson/maintenance-window-manager/internal/metrics"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
)

const (
	DefaultPageSize    = 500
	DefaultFrom        = "now-30d"
	DefaultConcurrency = 8
)

// Options configures a Fetcher. Zero values take the defaults.
type Options struct {
	PageSize    int
	From        string
	Concurrency int
}

// Fetcher pages entities out of the index for selectors and filters.
type Fetcher struct {
	index       entityindex.Index
	pageSize    int
	from        string
	concurrency int
}

// New creates a Fetcher.
func New(index entityindex.Index, opts Options) *Fetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.From == "" {
		opts.From = DefaultFrom
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Fetcher{
		index:       index,
		pageSize:    opts.PageSize,
		from:        opts.From,
		concurrency: opts.Concurrency,
	}
}

// Fetch returns every entity matching sel, following page keys until the
// index stops returning one or repeats the key it was just given. A failure on any page is logged and the selector
// is treated as matching nothing.
func (f *Fetcher) Fetch(ctx context.Context, sel string) []domain.PreviewEntity {
	entities := []domain.PreviewEntity{}
	q := entityindex.EntityQuery{Selector: sel, From: f.from, PageSize: f.pageSize}

	for {
		page, err := f.index.QueryEntities(ctx, q)
		if err != nil {
			metrics.FetchFailuresTotal.Inc()
			log.Warn().Err(err).Str("selector", sel).Msg("entity fetch failed, treating selector as empty")
			return []domain.PreviewEntity{}
		}
		metrics.EntityPagesTotal.Inc()

		for _, r := range page.Entities {
			entities = append(entities, ToPreviewEntity(r))
		}

		if page.NextPageKey == "" {
			return entities
		}
		if page.NextPageKey == q.NextPageKey {
			log.Warn().Str("selector", sel).Str("page_key", page.NextPageKey).Msg("index repeated a page key, stopping")
			return entities
		}
		q.NextPageKey = page.NextPageKey
	}
}

// FetchMany fetches all selectors concurrently. Results are concatenated in
// selector order and are not deduplicated.
func (f *Fetcher) FetchMany(ctx context.Context, selectors []string) []domain.PreviewEntity {
	results := make([][]domain.PreviewEntity, len(selectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, sel := range selectors {
		g.Go(func() error {
			results[i] = f.Fetch(gctx, sel)
			return nil
		})
	}
	_ = g.Wait()

	return merger.Concat(results)
}

// FetchForFilter resolves a filter to its unique entities. An empty filter
// matches nothing and never reaches the index.
func (f *Fetcher) FetchForFilter(ctx context.Context, filter domain.EntityFilter) []domain.PreviewEntity {
	if !filter.IsNonEmpty() {
		return []domain.PreviewEntity{}
	}
	// A selector repeated by the filter is fetched once.
	selectors := merger.DedupeSelectors(selector.Compile(filter))
	return merger.Dedupe(f.FetchMany(ctx, selector.Strings(selectors)))
}

// FetchForFilters resolves each non-empty filter concurrently and returns the
// union, first occurrence winning in filter order.
func (f *Fetcher) FetchForFilters(ctx context.Context, filters []domain.EntityFilter) []domain.PreviewEntity {
	results := make([][]domain.PreviewEntity, len(filters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, filter := range filters {
		if !filter.IsNonEmpty() {
			continue
		}
		g.Go(func() error {
			results[i] = f.FetchForFilter(gctx, filter)
			return nil
		})
	}
	_ = g.Wait()

	return merger.Dedupe(merger.Concat(results))
}

// ToPreviewEntity maps an index record, filling absent fields. The display
// name falls back to the ID and the type to the ID's prefix.
func ToPreviewEntity(r entityindex.EntityRecord) domain.PreviewEntity {
	name := r.DisplayName
	if name == "" {
		name = r.EntityID
	}
	entityType := r.Type
	if entityType == "" {
		entityType = TypeFromID(r.EntityID)
	}
	return domain.PreviewEntity{EntityID: r.EntityID, DisplayName: name, EntityType: entityType}
}

// TypeFromID returns the part of an entity ID before the first '-', or
// UNKNOWN when there is none.
func TypeFromID(id string) string {
	prefix, _, found := strings.Cut(id, "-")
	if !found || prefix == "" {
		return domain.EntityTypeUnknown
	}
	return prefix
}
