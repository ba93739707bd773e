// Package autotag creates and expires the auto-tagging rules that stamp the
// underlying resources of a maintenance window with a time-bounded tag.
package autotag

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/metrics"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
)

const listPageSize = 500

var (
	// unsafeTagRunes matches everything a tag key may not contain.
	unsafeTagRunes = regexp.MustCompile(`[^\w\s\-—]`)
	// expiryPattern extracts the timestamp at the start of a rule's value format.
	expiryPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})`)
)

// Manager owns the auto-tag lifecycle.
type Manager struct {
	index entityindex.Index
	now   func() time.Time
}

// New creates a Manager using the wall clock.
func New(index entityindex.Index) *Manager {
	return &Manager{index: index, now: time.Now}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	return &Manager{index: m.index, now: now}
}

// TagKey returns the tag name for a window.
func TagKey(windowName string) string {
	return domain.AutoTagNamePrefix + strings.TrimSpace(unsafeTagRunes.ReplaceAllString(windowName, ""))
}

// TagValue renders the window end as the tag value, always in UTC.
func TagValue(end time.Time) string {
	return end.UTC().Format(domain.AutoTagValueTimestampLayout) + " UTC"
}

// NeedsAutoTagging reports whether any filter fans out to underlying resources.
func NeedsAutoTagging(filters []domain.EntityFilter) bool {
	for _, f := range filters {
		for _, e := range f.Entities {
			if f.UnderlyingOptions.FansOut(e) {
				return true
			}
		}
	}
	return false
}

// BuildRules returns one selector rule per fan-out selector, anchors included,
// in filter, entity and relationship order.
func BuildRules(filters []domain.EntityFilter, tagValue string) []domain.AutoTagRule {
	var rules []domain.AutoTagRule
	for _, f := range filters {
		for _, e := range f.Entities {
			if !f.UnderlyingOptions.FansOut(e) {
				continue
			}
			for _, s := range selector.Underlying(e, f.UnderlyingOptions) {
				rules = append(rules, domain.AutoTagRule{
					Type:               domain.AutoTagRuleTypeSelector,
					Enabled:            true,
					EntitySelector:     s.Selector,
					ValueFormat:        tagValue,
					ValueNormalization: domain.AutoTagValueNormalization,
				})
			}
		}
	}
	return rules
}

// Description is the description stored on every generated auto-tag.
func Description(tagValue string) string {
	return fmt.Sprintf("Auto-generated tag for maintenance window. Value: %s. This tag can be safely deleted after the maintenance window expires.", tagValue)
}

// Create stores an auto-tagging object and returns its ID. Any failure,
// including an empty ID, wraps domain.ErrAutoTagFailed.
func (m *Manager) Create(ctx context.Context, tagName, tagValue string, rules []domain.AutoTagRule) (string, error) {
	id, err := m.index.CreateSettingsObject(ctx, entityindex.SettingsObjectCreate{
		SchemaID: domain.SchemaAutoTagging,
		Scope:    domain.ScopeEnvironment,
		Value: domain.AutoTagValue{
			Name:        tagName,
			Description: Description(tagValue),
			Rules:       rules,
		},
	})
	if err != nil {
		metrics.AutoTagCreationsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrAutoTagFailed, err)
	}
	if id == "" {
		metrics.AutoTagCreationsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: index returned no object id", domain.ErrAutoTagFailed)
	}

	metrics.AutoTagCreationsTotal.WithLabelValues("created").Inc()
	log.Info().Str("tag", tagName).Str("object_id", id).Int("rules", len(rules)).Msg("created auto-tag")
	return id, nil
}

// CleanupExpired deletes generated auto-tags with at least one rule whose
// value timestamp is in the past. Tags without the generated name prefix are
// never inspected. Deletions run one at a time and a failed deletion does not
// stop the rest; a failed listing ends the pass.
func (m *Manager) CleanupExpired(ctx context.Context) domain.CleanupReport {
	report := domain.CleanupReport{Expired: []string{}, Deleted: []string{}}

	objects, err := entityindex.ListAllSettings(ctx, m.index, entityindex.SettingsQuery{
		SchemaID: domain.SchemaAutoTagging,
		PageSize: listPageSize,
		Fields:   "objectId,value",
	})
	if err != nil {
		report.ScanFailed = true
		metrics.CleanupRunsTotal.WithLabelValues("scan_failed").Inc()
		log.Warn().Err(err).Msg("listing auto-tags for cleanup failed")
		return report
	}

	now := m.now().UTC()
	for _, obj := range objects {
		var value domain.AutoTagValue
		if err := obj.DecodeValue(&value); err != nil {
			log.Debug().Err(err).Str("object_id", obj.ObjectID).Msg("skipping undecodable auto-tag")
			continue
		}
		if !strings.HasPrefix(value.Name, domain.AutoTagNamePrefix) {
			continue
		}

		report.Scanned++
		if expired(value.Rules, now) {
			report.Expired = append(report.Expired, obj.ObjectID)
		}
	}

	for _, id := range report.Expired {
		err := m.index.DeleteSettingsObject(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			// Removed by a concurrent pass.
			report.Deleted = append(report.Deleted, id)
			metrics.AutoTagDeletionsTotal.WithLabelValues("already_deleted").Inc()
			log.Debug().Str("object_id", id).Msg("expired auto-tag already deleted")
			continue
		}
		if err != nil {
			report.Failed = append(report.Failed, id)
			metrics.AutoTagDeletionsTotal.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("object_id", id).Msg("deleting expired auto-tag failed")
			continue
		}
		report.Deleted = append(report.Deleted, id)
		metrics.AutoTagDeletionsTotal.WithLabelValues("deleted").Inc()
	}

	metrics.CleanupRunsTotal.WithLabelValues("completed").Inc()
	if len(report.Expired) > 0 {
		log.Info().
			Int("scanned", report.Scanned).
			Int("deleted", len(report.Deleted)).
			Int("failed", len(report.Failed)).
			Msg("expired auto-tag cleanup finished")
	}
	return report
}

// expired reports whether any rule's value timestamp is before now.
func expired(rules []domain.AutoTagRule, now time.Time) bool {
	for _, r := range rules {
		end, ok := ParseExpiry(r.ValueFormat)
		if ok && end.Before(now) {
			return true
		}
	}
	return false
}

// ParseExpiry extracts the UTC timestamp a rule's value format starts with.
func ParseExpiry(valueFormat string) (time.Time, bool) {
	m := expiryPattern.FindStringSubmatch(valueFormat)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", m[1]+" "+m[2], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
