package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/bcnelson/maintenance-window-manager/internal/catalog"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
)

const (
	apiDateTimeLayout = "2006-01-02T15:04:05"
	unknownAuthor     = "Unknown"
	unnamedWindow     = "Unnamed"
	disabledPrefix    = "[Disabled] "
	notAvailable      = "N/A"
)

var (
	authorSuffix    = regexp.MustCompile(`\s*\[([^\]]+@[^\]]+)\]\s*$`)
	displayDateTime = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})T?(\d{2}:\d{2})`)
)

// splitDescription separates the trailing "[author@domain]" signature from a
// window description.
func splitDescription(description string) (text, author string) {
	if description == "" {
		return "", unknownAuthor
	}
	m := authorSuffix.FindStringSubmatchIndex(description)
	if m == nil {
		return description, unknownAuthor
	}
	return strings.TrimSpace(description[:m[0]]), description[m[2]:m[3]]
}

// signDescription appends the author signature to a description.
func signDescription(description, author string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return "[" + author + "]"
	}
	return description + " [" + author + "]"
}

// formatDateTime shortens a stored timestamp to "YYYY-MM-DD HH:MM".
func formatDateTime(value string) string {
	if value == "" {
		return notAvailable
	}
	m := displayDateTime.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	return m[1] + " " + m[2]
}

// toAPIDateTime renders t as a zone-less wall clock time in loc.
func toAPIDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(apiDateTimeLayout)
}

// toMaintenanceWindow converts a stored settings object to its display model.
func toMaintenanceWindow(obj entityindex.SettingsObject, value *domain.MaintenanceWindowValue) domain.MaintenanceWindow {
	props := value.GeneralProperties
	text, author := splitDescription(props.Description)

	name := props.Name
	if name == "" {
		name = unnamedWindow
	}
	if !value.Enabled {
		name = disabledPrefix + name
	}

	w := domain.MaintenanceWindow{
		ObjectID:     obj.ObjectID,
		Name:         name,
		Description:  text,
		Author:       author,
		Enabled:      value.Enabled,
		Suppression:  props.Suppression,
		ScheduleType: value.Schedule.ScheduleType,
		StartTime:    notAvailable,
		EndTime:      notAvailable,
		UTCOffset:    catalog.TimeZoneOffset(""),
		City:         catalog.TimeZoneCity(""),
		Labels: domain.WindowLabels{
			Suppression:            catalog.SuppressionLabel(props.Suppression),
			SuppressionDescription: catalog.SuppressionDescription(props.Suppression),
			ScheduleType:           catalog.ScheduleTypeLabel(value.Schedule.ScheduleType),
			MaintenanceType:        catalog.MaintenanceTypeLabel(props.MaintenanceType),
		},
		EntityTypes: filterEntityTypes(value.Filters),
		Value:       value,
	}
	if r := value.Schedule.Recurrence(); r != nil {
		w.StartTime = formatDateTime(r.StartTime)
		w.EndTime = formatDateTime(r.EndTime)
		w.UTCOffset = catalog.TimeZoneOffset(r.TimeZone)
		w.City = catalog.TimeZoneCity(r.TimeZone)
	}
	if weekly := value.Schedule.WeeklyRecurrence; weekly != nil {
		w.Labels.WeekDays = catalog.FormatWeekDays(weekly.SelectedWeekDays)
	}
	return w
}

// filterEntityTypes lists the entity types a stored window targets with
// their labels, in first-seen order.
func filterEntityTypes(filters []domain.APIFilter) []domain.EntityTypeOption {
	types := []domain.EntityTypeOption{}
	seen := map[string]bool{}
	for _, f := range filters {
		if f.EntityType == "" || seen[f.EntityType] {
			continue
		}
		seen[f.EntityType] = true
		types = append(types, domain.EntityTypeOption{
			Value: f.EntityType,
			Label: catalog.EntityTypeLabel(f.EntityType, nil),
		})
	}
	return types
}

// windowFilters converts editor filters to the stored filter list. Entities
// that fan out are replaced by one tag-matched filter per resulting type.
func windowFilters(filters []domain.EntityFilter, tagKey, tagValue string) []domain.APIFilter {
	out := []domain.APIFilter{}
	for _, f := range filters {
		baseTags := make([]string, 0, len(f.Tags))
		for _, t := range f.Tags {
			baseTags = append(baseTags, t.String())
		}
		baseZones := make([]string, 0, len(f.ManagementZones))
		for _, z := range f.ManagementZones {
			baseZones = append(baseZones, z.ID)
		}

		if len(f.Entities) == 0 {
			out = append(out, domain.APIFilter{EntityTags: baseTags, ManagementZones: baseZones})
			continue
		}

		for _, e := range f.Entities {
			if tagKey != "" && f.UnderlyingOptions.FansOut(e) {
				seen := make(map[string]bool)
				for _, s := range selector.Underlying(e, f.UnderlyingOptions) {
					if seen[s.EntityType] {
						continue
					}
					seen[s.EntityType] = true
					tags := append(append([]string{}, baseTags...), tagKey+":"+tagValue)
					out = append(out, domain.APIFilter{EntityType: s.EntityType, EntityTags: tags, ManagementZones: baseZones})
				}
				continue
			}
			out = append(out, domain.APIFilter{
				EntityType:      e.EntityType,
				EntityID:        e.EntityID,
				EntityTags:      baseTags,
				ManagementZones: baseZones,
			})
		}
	}
	return out
}

// windowValue builds the settings value for a once-off planned window.
func windowValue(req domain.SaveWindowRequest, start, end time.Time, loc *time.Location, author, tagKey, tagValue string) domain.MaintenanceWindowValue {
	suppression := req.Suppression
	if suppression == "" {
		suppression = domain.SuppressionDetectProblemsAndAlert
	}

	return domain.MaintenanceWindowValue{
		Enabled: true,
		GeneralProperties: domain.GeneralProperties{
			Name:                             strings.TrimSpace(req.Name),
			Description:                      signDescription(req.Description, author),
			Suppression:                      suppression,
			MaintenanceType:                  "PLANNED",
			DisableSyntheticMonitorExecution: req.DisableSynthetics,
		},
		Schedule: domain.Schedule{
			ScheduleType: "ONCE",
			OnceRecurrence: &domain.RecurrenceDetails{
				StartTime: toAPIDateTime(start, loc),
				EndTime:   toAPIDateTime(end, loc),
				TimeZone:  loc.String(),
			},
		},
		Filters: windowFilters(req.Filters, tagKey, tagValue),
	}
}
