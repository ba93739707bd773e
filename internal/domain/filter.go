package domain

// UnderlyingOptions selects related resources to include alongside an entity.
// Only meaningful for the underlying-capable types.
type UnderlyingOptions struct {
	IncludeProcesses     bool `json:"includeProcesses"`
	IncludeServices      bool `json:"includeServices"`
	IncludeHosts         bool `json:"includeHosts"`
	IncludeProcessGroups bool `json:"includeProcessGroups"`
}

// Any returns true if at least one option is set.
func (o UnderlyingOptions) Any() bool {
	return o.IncludeProcesses || o.IncludeServices || o.IncludeHosts || o.IncludeProcessGroups
}

// EntityFilter is one logical selection rule of a maintenance window.
// Entities must meet all conditions of a filter to be included.
type EntityFilter struct {
	ID                string            `json:"id,omitempty"`
	ManagementZones   []ManagementZone  `json:"managementZones"`
	Tags              []Tag             `json:"tags"`
	Entities          []EntityReference `json:"entities"`
	UnderlyingOptions UnderlyingOptions `json:"underlyingOptions"`
}

// IsNonEmpty returns true if the filter pins at least one entity, zone or tag.
// An empty filter would match the whole environment and must never be compiled.
func (f EntityFilter) IsNonEmpty() bool {
	return len(f.Entities) > 0 || len(f.ManagementZones) > 0 || len(f.Tags) > 0
}

// CompiledSelector is a query string for the entity index plus the type it targets.
type CompiledSelector struct {
	EntityType string `json:"entityType"`
	Selector   string `json:"selector"`
}

// underlyingEdges holds, for each underlying-capable type, the options that
// select one of its relationship edges.
var underlyingEdges = map[string]func(UnderlyingOptions) bool{
	EntityTypeHost: func(o UnderlyingOptions) bool {
		return o.IncludeProcesses || o.IncludeServices
	},
	EntityTypeHostGroup: func(o UnderlyingOptions) bool {
		return o.IncludeHosts || o.IncludeProcesses || o.IncludeServices
	},
	EntityTypeProcessGroup: func(o UnderlyingOptions) bool {
		return o.IncludeHosts || o.IncludeServices
	},
	EntityTypeService: func(o UnderlyingOptions) bool {
		return o.IncludeHosts || o.IncludeProcessGroups
	},
}

// SupportsUnderlying returns true if the entity type can fan out to related resources.
func SupportsUnderlying(entityType string) bool {
	_, ok := underlyingEdges[entityType]
	return ok
}

// FansOut returns true if the options select at least one relationship edge
// of the entity's type. Flags without an edge for the type are ignored.
func (o UnderlyingOptions) FansOut(entity EntityReference) bool {
	edges, ok := underlyingEdges[entity.EntityType]
	return ok && edges(o)
}
