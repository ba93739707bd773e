// Package merger combines entity result sets from multiple selectors and filters.
package merger

import "github.com/bcnelson/maintenance-window-manager/internal/domain"

// FirstWriterWins keeps the first item seen for each key and drops later
// duplicates. Relative order of the kept items follows the input, so callers
// that need a stable merge must concatenate inputs in their own order before
// calling this, never in completion order.
func FirstWriterWins[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return []T{}
	}

	seen := make(map[string]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, item)
	}
	return result
}

// Dedupe keeps the first occurrence of each entity ID.
// Display name and type never take part in identity.
func Dedupe(entities []domain.PreviewEntity) []domain.PreviewEntity {
	return FirstWriterWins(entities, func(e domain.PreviewEntity) string { return e.EntityID })
}

// DedupeSelectors drops repeated selector strings, keeping the first.
func DedupeSelectors(selectors []domain.CompiledSelector) []domain.CompiledSelector {
	return FirstWriterWins(selectors, func(s domain.CompiledSelector) string { return s.Selector })
}

// EntityTypes returns the distinct target types of the selectors in first-seen order.
func EntityTypes(selectors []domain.CompiledSelector) []string {
	unique := FirstWriterWins(selectors, func(s domain.CompiledSelector) string { return s.EntityType })
	types := make([]string, len(unique))
	for i, s := range unique {
		types[i] = s.EntityType
	}
	return types
}

// Concat flattens per-input result lists in input order.
func Concat[T any](lists [][]T) []T {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]T, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
