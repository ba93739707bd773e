package resolver

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/merger"
	"github.com/bcnelson/maintenance-window-manager/internal/validation"
)

// Outcome classifies a batch resolution.
type Outcome string

const (
	AllResolved  Outcome = "all_resolved"
	NoneResolved Outcome = "none_resolved"
	// Mixed results need the caller to confirm before continuing with the valid subset.
	Mixed Outcome = "mixed"
)

// BatchResult is the outcome of resolving a host list.
type BatchResult struct {
	Valid   []domain.EntityReference `json:"valid"`
	Invalid []string                 `json:"invalid"`
	Outcome Outcome                  `json:"outcome"`
}

// ParseHostList splits input on commas and whitespace and drops empty and
// repeated names, keeping first-seen order.
func ParseHostList(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return merger.FirstWriterWins(fields, func(s string) string { return s })
}

// ResolveBatch parses and resolves a host list one name at a time. Empty and
// oversized lists fail validation before any lookup. When nothing resolves
// the result is returned together with domain.ErrNoHostsFound.
func (r *Resolver) ResolveBatch(ctx context.Context, input string) (*BatchResult, error) {
	names := ParseHostList(input)
	if err := validation.ValidateHostBatch(names); err != nil {
		return nil, err
	}

	result := &BatchResult{Valid: []domain.EntityReference{}, Invalid: []string{}}
	for _, name := range names {
		res := r.Resolve(ctx, name)
		if res.Resolved() {
			result.Valid = append(result.Valid, *res.Entity)
		} else {
			result.Invalid = append(result.Invalid, name)
		}
	}

	switch {
	case len(result.Valid) == 0:
		result.Outcome = NoneResolved
		return result, fmt.Errorf("could not find any of the hosts entered: %w", domain.ErrNoHostsFound)
	case len(result.Invalid) == 0:
		result.Outcome = AllResolved
	default:
		result.Outcome = Mixed
	}
	return result, nil
}

// BuildHostFilters creates one filter per host, each sharing the given zones
// and tags and including processes and services as requested.
func BuildHostFilters(hosts []domain.EntityReference, zones []domain.ManagementZone, tags []domain.Tag, includeProcesses, includeServices bool) []domain.EntityFilter {
	filters := make([]domain.EntityFilter, 0, len(hosts))
	for i, host := range hosts {
		filters = append(filters, domain.EntityFilter{
			ID:              fmt.Sprintf("host-%d-%s", i, host.EntityID),
			ManagementZones: append([]domain.ManagementZone(nil), zones...),
			Tags:            append([]domain.Tag(nil), tags...),
			Entities:        []domain.EntityReference{host},
			UnderlyingOptions: domain.UnderlyingOptions{
				IncludeProcesses: includeProcesses,
				IncludeServices:  includeServices,
			},
		})
	}
	return filters
}
