// Package selector compiles entity filters into entity selector strings.
//
// Selectors are comma-joined predicates; a comma is a logical AND. The
// compiler only ever emits the fixed grammar below and never validates
// selectors it did not build:
//
//	type(<TYPE>)
//	entityId("<id>")
//	tag("<key>") | tag("<key>:<value>")
//	mzName("<zone name>")
//	fromRelationships.<rel>(...) | toRelationships.<rel>(...)
//	entityName.equals("...") | entityName.contains("...") | detectedName.equals("...")
package selector

import "strings"

// quoteReplacer escapes the characters the selector grammar reserves inside quoted values.
var quoteReplacer = strings.NewReplacer(`~`, `~~`, `"`, `~"`)

func quote(value string) string {
	return `"` + quoteReplacer.Replace(value) + `"`
}

// TypeClause returns type(<entityType>).
func TypeClause(entityType string) string {
	return "type(" + entityType + ")"
}

// EntityIDClause returns entityId("<id>").
func EntityIDClause(id string) string {
	return "entityId(" + quote(id) + ")"
}

// TagClause returns tag("<key>") or tag("<key>:<value>").
func TagClause(key, value string) string {
	if value == "" {
		return "tag(" + quote(key) + ")"
	}
	return "tag(" + quote(key+":"+value) + ")"
}

// RawTagClause returns tag("<tag>") for a tag already rendered as key or key:value.
func RawTagClause(tag string) string {
	return "tag(" + quote(tag) + ")"
}

// ZoneClause returns mzName("<name>").
func ZoneClause(name string) string {
	return "mzName(" + quote(name) + ")"
}

// EntityNameEquals returns entityName.equals("<name>").
func EntityNameEquals(name string) string {
	return "entityName.equals(" + quote(name) + ")"
}

// EntityNameContains returns entityName.contains("<term>").
func EntityNameContains(term string) string {
	return "entityName.contains(" + quote(term) + ")"
}

// DetectedNameEquals returns detectedName.equals("<name>").
func DetectedNameEquals(name string) string {
	return "detectedName.equals(" + quote(name) + ")"
}

// FromRelationship returns fromRelationships.<rel>(<inner>).
func FromRelationship(rel, inner string) string {
	return "fromRelationships." + rel + "(" + inner + ")"
}

// ToRelationship returns toRelationships.<rel>(<inner>).
func ToRelationship(rel, inner string) string {
	return "toRelationships." + rel + "(" + inner + ")"
}

// Join combines clauses with the AND operator, skipping empty ones.
func Join(clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ",")
}

// Anchor returns the direct selector for a single entity.
func Anchor(entityType, id string) string {
	return Join(TypeClause(entityType), EntityIDClause(id))
}
