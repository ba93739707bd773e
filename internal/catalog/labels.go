package catalog

import (
	"sort"
	"strings"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// Option is a value with its display label.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// SuppressionOptions lists the suppression modes in display order.
var SuppressionOptions = []Option{
	{Value: domain.SuppressionDetectProblemsAndAlert, Label: "None", Description: "Detect problems and alert"},
	{Value: domain.SuppressionDetectProblemsDontAlert, Label: "Alerts only", Description: "Detect problems but don't alert"},
	{Value: domain.SuppressionDontDetectProblems, Label: "Problem detection", Description: "Don't detect problems"},
}

var (
	scheduleTypeLabels = map[string]string{
		"ONCE":    "Once",
		"DAILY":   "Daily",
		"WEEKLY":  "Weekly",
		"MONTHLY": "Monthly",
	}
	maintenanceTypeLabels = map[string]string{
		"PLANNED":   "Planned",
		"UNPLANNED": "Unplanned",
	}
	weekDayOrder = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}
)

// DefaultEntityTypes is offered when the index cannot list its types.
var DefaultEntityTypes = []domain.EntityTypeOption{
	{Value: domain.EntityTypeApplication, Label: "Application"},
	{Value: domain.EntityTypeHTTPCheck, Label: "HTTP monitor"},
	{Value: domain.EntityTypeHost, Label: "Host"},
	{Value: domain.EntityTypeHostGroup, Label: "Host group"},
	{Value: domain.EntityTypeProcessGroupInstance, Label: "Process"},
	{Value: domain.EntityTypeProcessGroup, Label: "Process group"},
	{Value: domain.EntityTypeService, Label: "Service"},
	{Value: domain.EntityTypeSyntheticTest, Label: "Synthetic monitor"},
}

// SuppressionLabel returns the short label of a suppression mode.
func SuppressionLabel(value string) string {
	for _, o := range SuppressionOptions {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// SuppressionDescription returns the long description of a suppression mode.
func SuppressionDescription(value string) string {
	for _, o := range SuppressionOptions {
		if o.Value == value {
			return o.Description
		}
	}
	return value
}

// ScheduleTypeLabel returns the display label of a schedule type.
func ScheduleTypeLabel(value string) string {
	if l, ok := scheduleTypeLabels[value]; ok {
		return l
	}
	return value
}

// MaintenanceTypeLabel returns the display label of a maintenance type.
func MaintenanceTypeLabel(value string) string {
	if l, ok := maintenanceTypeLabels[value]; ok {
		return l
	}
	return value
}

// EntityTypeLabel looks value up in types, falling back to the value itself.
// A nil list uses DefaultEntityTypes.
func EntityTypeLabel(value string, types []domain.EntityTypeOption) string {
	if types == nil {
		types = DefaultEntityTypes
	}
	for _, t := range types {
		if t.Value == value {
			return t.Label
		}
	}
	return value
}

// LabelFromType derives a label from a raw type name by turning underscores
// into spaces and capitalizing the first letter of each word.
func LabelFromType(entityType string) string {
	words := strings.Fields(strings.ReplaceAll(entityType, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatWeekDays renders week days Monday first as three-letter abbreviations.
func FormatWeekDays(days []string) string {
	if len(days) == 0 {
		return "None"
	}

	rank := make(map[string]int, len(weekDayOrder))
	for i, d := range weekDayOrder {
		rank[d] = i
	}
	sorted := append([]string(nil), days...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iok := rank[sorted[i]]
		rj, jok := rank[sorted[j]]
		if !iok {
			ri = -1
		}
		if !jok {
			rj = -1
		}
		return ri < rj
	})

	out := make([]string, len(sorted))
	for i, d := range sorted {
		if _, ok := rank[d]; ok {
			out[i] = d[:1] + strings.ToLower(d[1:3])
		} else {
			out[i] = d
		}
	}
	return strings.Join(out, ", ")
}
