package resolver

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
)

const (
	searchPageSize  = 20
	nameConcurrency = 8
)

// SearchEntities returns up to 20 entities of entityType whose name contains
// term. Blank input and lookup errors yield an empty list.
func (r *Resolver) SearchEntities(ctx context.Context, entityType, term string) []domain.EntityReference {
	refs := []domain.EntityReference{}
	if entityType == "" || term == "" {
		return refs
	}

	page, err := r.index.QueryEntities(ctx, entityindex.EntityQuery{
		Selector: selector.Join(selector.TypeClause(entityType), selector.EntityNameContains(term)),
		From:     r.from,
		PageSize: searchPageSize,
	})
	if err != nil {
		log.Warn().Err(err).Str("entity_type", entityType).Str("term", term).Msg("entity search failed")
		return refs
	}

	for _, e := range page.Entities {
		name := e.DisplayName
		if name == "" {
			name = e.EntityID
		}
		refs = append(refs, domain.EntityReference{EntityID: e.EntityID, EntityType: entityType, DisplayName: name})
	}
	return refs
}

// ResolveEntityNames looks up display names for entity IDs concurrently. IDs
// that cannot be resolved map to themselves.
func (r *Resolver) ResolveEntityNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nameConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			name := id
			page, err := r.index.QueryEntities(gctx, entityindex.EntityQuery{
				Selector: selector.EntityIDClause(id),
				From:     r.from,
				PageSize: 1,
			})
			if err == nil && len(page.Entities) > 0 && page.Entities[0].DisplayName != "" {
				name = page.Entities[0].DisplayName
			}

			mu.Lock()
			names[id] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return names
}
