package domain

// Entity types the compiler and resolver know about.
const (
	EntityTypeHost                 = "HOST"
	EntityTypeHostGroup            = "HOST_GROUP"
	EntityTypeProcessGroup         = "PROCESS_GROUP"
	EntityTypeProcessGroupInstance = "PROCESS_GROUP_INSTANCE"
	EntityTypeService              = "SERVICE"
	EntityTypeServiceInstance      = "SERVICE_INSTANCE"
	EntityTypeApplication          = "APPLICATION"
	EntityTypeSyntheticTest        = "SYNTHETIC_TEST"
	EntityTypeHTTPCheck            = "HTTP_CHECK"
	EntityTypeUnknown              = "UNKNOWN"
)

// EntityReference points at a single monitored entity.
// Identity is EntityID alone; type and display name are descriptive.
type EntityReference struct {
	EntityID    string `json:"entityId"`
	EntityType  string `json:"entityType"`
	DisplayName string `json:"displayName"`
}

// PreviewEntity is a fetched, display-ready entity.
type PreviewEntity struct {
	EntityID    string `json:"entityId"`
	DisplayName string `json:"displayName"`
	EntityType  string `json:"entityType"`
}

// ManagementZone is stored by ID but addressed by name in selectors.
type ManagementZone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a key with an optional value.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// String renders the tag the way the settings API stores it.
func (t Tag) String() string {
	if t.Value == "" {
		return t.Key
	}
	return t.Key + ":" + t.Value
}

// EntityTypeOption is an entity type with a human readable label.
type EntityTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// HostResolution is the outcome of resolving one free-text host name.
type HostResolution struct {
	HostName string           `json:"hostName"`
	Entity   *EntityReference `json:"entity,omitempty"`
}

// Resolved reports whether the host name matched exactly one host.
func (r HostResolution) Resolved() bool {
	return r.Entity != nil
}

// BulkHostsRequest turns a free-text host list into per-host filters.
type BulkHostsRequest struct {
	Hosts            string           `json:"hosts"`
	ManagementZones  []ManagementZone `json:"managementZones"`
	Tags             []Tag            `json:"tags"`
	IncludeProcesses bool             `json:"includeProcesses"`
	IncludeServices  bool             `json:"includeServices"`
}
