package selector

import "github.com/bcnelson/maintenance-window-manager/internal/domain"

// rawFallbackTypes are queried for stored filters that carry neither a type nor an ID.
var rawFallbackTypes = []string{
	domain.EntityTypeHost,
	domain.EntityTypeService,
	domain.EntityTypeProcessGroup,
	domain.EntityTypeApplication,
}

// FromRawFilters compiles filters read back from a stored maintenance window.
// Zones are stored by ID and resolved through zoneNames; unknown IDs are
// dropped. Filters that produce no clause at all are skipped.
func FromRawFilters(filters []domain.APIFilter, zoneNames map[string]string) []string {
	var selectors []string

	for _, f := range filters {
		var parts []string
		if f.EntityType != "" {
			parts = append(parts, TypeClause(f.EntityType))
		}
		if f.EntityID != "" {
			parts = append(parts, EntityIDClause(f.EntityID))
		}
		for _, tag := range f.EntityTags {
			parts = append(parts, RawTagClause(tag))
		}
		for _, id := range f.ManagementZones {
			if name, ok := zoneNames[id]; ok && name != "" {
				parts = append(parts, ZoneClause(name))
			}
		}

		if len(parts) == 0 {
			continue
		}

		if f.EntityType == "" && f.EntityID == "" {
			for _, t := range rawFallbackTypes {
				selectors = append(selectors, withCriteria(TypeClause(t), parts))
			}
			continue
		}
		selectors = append(selectors, Join(parts...))
	}

	return selectors
}
