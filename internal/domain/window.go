package domain

// Settings schemas used by the window manager.
const (
	SchemaMaintenanceWindow = "builtin:alerting.maintenance-window"
	SchemaManagementZones   = "builtin:management-zones"
	SchemaAutoTagging       = "builtin:tags.auto-tagging"

	ScopeEnvironment = "environment"
)

// Suppression modes.
const (
	SuppressionDontDetectProblems      = "DONT_DETECT_PROBLEMS"
	SuppressionDetectProblemsDontAlert = "DETECT_PROBLEMS_DONT_ALERT"
	SuppressionDetectProblemsAndAlert  = "DETECT_PROBLEMS_AND_ALERT"
)

// RecurrenceDetails is the time range of one schedule.
type RecurrenceDetails struct {
	StartTime        string           `json:"startTime"`
	EndTime          string           `json:"endTime"`
	TimeZone         string           `json:"timeZone"`
	RecurrenceRange  *RecurrenceRange `json:"recurrenceRange,omitempty"`
	SelectedWeekDays []string         `json:"selectedWeekDays,omitempty"`
	DayOfMonth       int              `json:"dayOfMonth,omitempty"`
}

// RecurrenceRange bounds a recurring schedule.
type RecurrenceRange struct {
	ScheduleStartDate string `json:"scheduleStartDate"`
	ScheduleEndDate   string `json:"scheduleEndDate,omitempty"`
}

// Schedule is the schedule block of a maintenance window.
type Schedule struct {
	ScheduleType      string             `json:"scheduleType"`
	OnceRecurrence    *RecurrenceDetails `json:"onceRecurrence,omitempty"`
	DailyRecurrence   *RecurrenceDetails `json:"dailyRecurrence,omitempty"`
	WeeklyRecurrence  *RecurrenceDetails `json:"weeklyRecurrence,omitempty"`
	MonthlyRecurrence *RecurrenceDetails `json:"monthlyRecurrence,omitempty"`
}

// Recurrence returns the first recurrence present, or nil.
func (s *Schedule) Recurrence() *RecurrenceDetails {
	if s == nil {
		return nil
	}
	for _, r := range []*RecurrenceDetails{s.OnceRecurrence, s.DailyRecurrence, s.WeeklyRecurrence, s.MonthlyRecurrence} {
		if r != nil {
			return r
		}
	}
	return nil
}

// GeneralProperties is the general block of a maintenance window.
type GeneralProperties struct {
	Name                             string `json:"name"`
	Description                      string `json:"description,omitempty"`
	Suppression                      string `json:"suppression"`
	MaintenanceType                  string `json:"maintenanceType"`
	DisableSyntheticMonitorExecution bool   `json:"disableSyntheticMonitorExecution"`
}

// APIFilter is a filter as persisted in the maintenance window settings object.
// Management zones are stored by ID.
type APIFilter struct {
	EntityType      string   `json:"entityType,omitempty"`
	EntityID        string   `json:"entityId,omitempty"`
	EntityTags      []string `json:"entityTags,omitempty"`
	ManagementZones []string `json:"managementZones,omitempty"`
}

// MaintenanceWindowValue is the settings value of a maintenance window.
type MaintenanceWindowValue struct {
	Enabled           bool              `json:"enabled"`
	GeneralProperties GeneralProperties `json:"generalProperties"`
	Schedule          Schedule          `json:"schedule"`
	Filters           []APIFilter       `json:"filters,omitempty"`
}

// MaintenanceWindow is the display model of a stored maintenance window.
type MaintenanceWindow struct {
	ObjectID     string                  `json:"objectId"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Author       string                  `json:"author"`
	Enabled      bool                    `json:"enabled"`
	Suppression  string                  `json:"suppression"`
	ScheduleType string                  `json:"scheduleType"`
	StartTime    string                  `json:"startTime"`
	EndTime      string                  `json:"endTime"`
	UTCOffset    string                  `json:"utcOffset"`
	City         string                  `json:"city"`
	Labels       WindowLabels            `json:"labels"`
	EntityTypes  []EntityTypeOption      `json:"entityTypes"`
	Value        *MaintenanceWindowValue `json:"value,omitempty"`
}

// WindowLabels are the display labels of a window's coded fields.
type WindowLabels struct {
	Suppression            string `json:"suppression"`
	SuppressionDescription string `json:"suppressionDescription"`
	ScheduleType           string `json:"scheduleType"`
	MaintenanceType        string `json:"maintenanceType"`
	WeekDays               string `json:"weekDays,omitempty"`
}

// SaveWindowRequest is the request body for creating a maintenance window.
// Start and End are wall-clock times in TimeZone; an explicit offset wins.
type SaveWindowRequest struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	Start             string         `json:"start"`
	End               string         `json:"end"`
	TimeZone          string         `json:"timeZone,omitempty"`
	Suppression       string         `json:"suppression,omitempty"`
	DisableSynthetics bool           `json:"disableSynthetics,omitempty"`
	Filters           []EntityFilter `json:"filters"`
}

// SaveWindowResponse is returned after a successful save.
type SaveWindowResponse struct {
	ObjectID  string `json:"objectId"`
	AutoTagID string `json:"autoTagId,omitempty"`
	TagKey    string `json:"tagKey,omitempty"`
	TagValue  string `json:"tagValue,omitempty"`
	RecordID  string `json:"recordId"`
}
