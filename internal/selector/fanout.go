package selector

import "github.com/bcnelson/maintenance-window-manager/internal/domain"

// Relationship names used by the fan-out edges.
const (
	relIsProcessOf  = "isProcessOf"
	relRunsOnHost   = "runsOnHost"
	relIsInstanceOf = "isInstanceOf"
	relRunsOn       = "runsOn"
)

// edge is one row of the relationship fan-out table.
type edge struct {
	enabled    func(domain.UnderlyingOptions) bool
	entityType string
	build      func(id string) string
}

func includeProcesses(o domain.UnderlyingOptions) bool     { return o.IncludeProcesses }
func includeServices(o domain.UnderlyingOptions) bool      { return o.IncludeServices }
func includeHosts(o domain.UnderlyingOptions) bool         { return o.IncludeHosts }
func includeProcessGroups(o domain.UnderlyingOptions) bool { return o.IncludeProcessGroups }

// hostsOfGroup selects the hosts that are instances of a host group.
func hostsOfGroup(id string) string {
	return Join(TypeClause(domain.EntityTypeHost), FromRelationship(relIsInstanceOf, EntityIDClause(id)))
}

// fanOut maps each underlying-capable source type to its edges, in table order.
var fanOut = map[string][]edge{
	domain.EntityTypeHost: {
		{includeProcesses, domain.EntityTypeProcessGroupInstance, func(id string) string {
			return Join(TypeClause(domain.EntityTypeProcessGroupInstance), FromRelationship(relIsProcessOf, EntityIDClause(id)))
		}},
		{includeServices, domain.EntityTypeServiceInstance, func(id string) string {
			return Join(TypeClause(domain.EntityTypeService), FromRelationship(relRunsOnHost, EntityIDClause(id)))
		}},
	},
	domain.EntityTypeHostGroup: {
		{includeHosts, domain.EntityTypeHost, hostsOfGroup},
		{includeProcesses, domain.EntityTypeProcessGroupInstance, func(id string) string {
			return Join(TypeClause(domain.EntityTypeProcessGroupInstance), FromRelationship(relIsProcessOf, hostsOfGroup(id)))
		}},
		{includeServices, domain.EntityTypeServiceInstance, func(id string) string {
			return Join(TypeClause(domain.EntityTypeService), FromRelationship(relRunsOnHost, hostsOfGroup(id)))
		}},
	},
	domain.EntityTypeProcessGroup: {
		{includeHosts, domain.EntityTypeHost, func(id string) string {
			return Join(TypeClause(domain.EntityTypeHost), ToRelationship(relRunsOn, EntityIDClause(id)))
		}},
		{includeServices, domain.EntityTypeService, func(id string) string {
			return Join(TypeClause(domain.EntityTypeService), FromRelationship(relRunsOn, EntityIDClause(id)))
		}},
	},
	domain.EntityTypeService: {
		{includeHosts, domain.EntityTypeHost, func(id string) string {
			return Join(TypeClause(domain.EntityTypeHost), ToRelationship(relRunsOnHost, EntityIDClause(id)))
		}},
		{includeProcessGroups, domain.EntityTypeProcessGroup, func(id string) string {
			return Join(TypeClause(domain.EntityTypeProcessGroup), ToRelationship(relRunsOn, EntityIDClause(id)))
		}},
	},
}

// Underlying expands an entity into its anchor selector followed by one
// selector per enabled relationship edge. The anchor is always first, so
// fan-out only ever adds to the entity itself.
func Underlying(entity domain.EntityReference, opts domain.UnderlyingOptions) []domain.CompiledSelector {
	selectors := []domain.CompiledSelector{{
		EntityType: entity.EntityType,
		Selector:   Anchor(entity.EntityType, entity.EntityID),
	}}

	for _, e := range fanOut[entity.EntityType] {
		if !e.enabled(opts) {
			continue
		}
		selectors = append(selectors, domain.CompiledSelector{
			EntityType: e.entityType,
			Selector:   e.build(entity.EntityID),
		})
	}

	return selectors
}
