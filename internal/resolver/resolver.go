// Package resolver maps operator-entered host names and entity IDs onto
// entities in the index.
package resolver

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/metrics"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
)

// DefaultFrom is the observation window for every resolver query.
const DefaultFrom = "now-30d"

// tier is one lookup strategy. A tier resolves only when its result count
// satisfies accept.
type tier struct {
	name     string
	clause   func(hostName string) string
	pageSize int
	accept   func(n int) bool
}

var tiers = []tier{
	{name: "exact", clause: selector.EntityNameEquals, pageSize: 1, accept: atLeastOne},
	{name: "detected", clause: selector.DetectedNameEquals, pageSize: 1, accept: atLeastOne},
	// Substring matches are only trusted when unambiguous.
	{name: "contains", clause: selector.EntityNameContains, pageSize: 5, accept: exactlyOne},
}

func atLeastOne(n int) bool { return n >= 1 }
func exactlyOne(n int) bool { return n == 1 }

// Resolver looks up hosts and entities in the index.
type Resolver struct {
	index entityindex.Index
	from  string
}

// New creates a Resolver.
func New(index entityindex.Index) *Resolver {
	return &Resolver{index: index, from: DefaultFrom}
}

// Resolve finds the host entity for an operator-entered name: exact entity
// name, then detected name, then a unique substring match. Each tier only runs
// when the previous one matched nothing. Lookup errors leave the name
// unresolved and are never returned.
func (r *Resolver) Resolve(ctx context.Context, hostName string) domain.HostResolution {
	result := domain.HostResolution{HostName: hostName}

	for _, t := range tiers {
		page, err := r.index.QueryEntities(ctx, entityindex.EntityQuery{
			Selector: selector.Join(selector.TypeClause(domain.EntityTypeHost), t.clause(hostName)),
			From:     r.from,
			PageSize: t.pageSize,
		})
		if err != nil {
			metrics.HostResolutionsTotal.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str("host", hostName).Str("tier", t.name).Msg("host lookup failed")
			return result
		}

		if t.accept(len(page.Entities)) {
			ref := hostReference(page.Entities[0])
			result.Entity = &ref
			metrics.HostResolutionsTotal.WithLabelValues(t.name).Inc()
			return result
		}
		if len(page.Entities) > 0 {
			// Only the last tier can match without accepting; it is ambiguous.
			log.Debug().Str("host", hostName).Int("matches", len(page.Entities)).Msg("ambiguous host name")
			break
		}
	}

	metrics.HostResolutionsTotal.WithLabelValues("unresolved").Inc()
	return result
}

func hostReference(r entityindex.EntityRecord) domain.EntityReference {
	id := r.EntityID
	if id == "" {
		id = domain.EntityTypeHost
	}
	name := r.DisplayName
	if name == "" {
		name = id
	}
	return domain.EntityReference{EntityID: id, EntityType: domain.EntityTypeHost, DisplayName: name}
}
