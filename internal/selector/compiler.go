package selector

import "github.com/bcnelson/maintenance-window-manager/internal/domain"

// FallbackTypes are queried for criteria-only filters. The entity index
// requires a type predicate, so a filter with tags or zones but no entity
// matches any of these types.
var FallbackTypes = []string{
	domain.EntityTypeHost,
	domain.EntityTypeService,
	domain.EntityTypeProcessGroup,
	domain.EntityTypeApplication,
	domain.EntityTypeSyntheticTest,
	domain.EntityTypeHTTPCheck,
}

// Compile turns a filter into the selectors that together match its entities.
// An empty filter compiles to nothing; callers must reject it rather than
// treat it as "match everything".
func Compile(filter domain.EntityFilter) []domain.CompiledSelector {
	if !filter.IsNonEmpty() {
		return nil
	}

	criteria := criteriaClauses(filter)

	if len(filter.Entities) == 0 {
		selectors := make([]domain.CompiledSelector, 0, len(FallbackTypes))
		for _, t := range FallbackTypes {
			selectors = append(selectors, domain.CompiledSelector{
				EntityType: t,
				Selector:   withCriteria(TypeClause(t), criteria),
			})
		}
		return selectors
	}

	var selectors []domain.CompiledSelector
	for _, entity := range filter.Entities {
		if filter.UnderlyingOptions.FansOut(entity) {
			for _, s := range Underlying(entity, filter.UnderlyingOptions) {
				s.Selector = withCriteria(s.Selector, criteria)
				selectors = append(selectors, s)
			}
			continue
		}
		selectors = append(selectors, domain.CompiledSelector{
			EntityType: entity.EntityType,
			Selector:   withCriteria(Anchor(entity.EntityType, entity.EntityID), criteria),
		})
	}
	return selectors
}

// Strings returns only the selector strings, in order.
func Strings(selectors []domain.CompiledSelector) []string {
	out := make([]string, len(selectors))
	for i, s := range selectors {
		out[i] = s.Selector
	}
	return out
}

// criteriaClauses renders all tag clauses followed by all zone clauses.
func criteriaClauses(filter domain.EntityFilter) []string {
	clauses := make([]string, 0, len(filter.Tags)+len(filter.ManagementZones))
	for _, t := range filter.Tags {
		clauses = append(clauses, TagClause(t.Key, t.Value))
	}
	for _, mz := range filter.ManagementZones {
		clauses = append(clauses, ZoneClause(mz.Name))
	}
	return clauses
}

func withCriteria(base string, criteria []string) string {
	return Join(append([]string{base}, criteria...)...)
}
