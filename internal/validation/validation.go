// Package validation checks maintenance window requests and host batches
// before anything is sent to the entity index.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// MaxHostBatch is the largest host list accepted by bulk resolution.
const MaxHostBatch = 1000

// Messages shown to operators.
const (
	MsgNameRequired       = "Name is required."
	MsgStartRequired      = "Start time is required."
	MsgEndRequired        = "End time is required."
	MsgEndBeforeStart     = "End time must be after start time."
	MsgFiltersRequired    = "You must add at least one entity filter. Without an entity filter, the maintenance window would apply to the entire environment."
	MsgFilterEmpty        = "Each entity filter must contain at least one management zone, tag, or entity."
	MsgNoHosts            = "Please enter at least one host name."
	MsgUnknownTimeZone    = "Unknown time zone."
	MsgInvalidDateTime    = "Must be a date and time such as 2024-05-01T22:00:00."
	MsgUnknownSuppression = "Suppression must be one of DETECT_PROBLEMS_AND_ALERT, DETECT_PROBLEMS_DONT_ALERT, DONT_DETECT_PROBLEMS."
)

// wallClockLayouts are accepted when a time carries no offset.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// isUpper returns true if the byte is an ASCII upper-case letter.
func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// ValidateEntityType checks an entity type name such as HOST or PROCESS_GROUP_INSTANCE.
func ValidateEntityType(entityType string) error {
	if entityType == "" {
		return fmt.Errorf("entity type must not be empty")
	}
	if !isUpper(entityType[0]) {
		return fmt.Errorf("entity type must start with an upper-case letter")
	}
	for _, b := range []byte(entityType) {
		if !isUpper(b) && !isNum(b) && b != '_' {
			return fmt.Errorf("entity type can only contain upper-case letters, numbers, or underscores")
		}
	}
	return nil
}

// ValidateEntityID checks an entity ID of the form TYPE-IDENTIFIER.
func ValidateEntityID(id string) error {
	prefix, rest, ok := strings.Cut(id, "-")
	if !ok || rest == "" {
		return fmt.Errorf("entity ID must look like TYPE-IDENTIFIER")
	}
	if err := ValidateEntityType(prefix); err != nil {
		return fmt.Errorf("entity ID prefix: %w", err)
	}
	if strings.ContainsAny(rest, "\"(), \t\n") {
		return fmt.Errorf("entity ID contains reserved characters")
	}
	return nil
}

// ValidateTag checks a tag key and optional value.
func ValidateTag(tag domain.Tag) error {
	if strings.TrimSpace(tag.Key) == "" {
		return fmt.Errorf("tag key must not be empty")
	}
	return nil
}

// ValidateFilter checks one entity filter. Field names are prefixed with the
// filter's position.
func ValidateFilter(index int, filter domain.EntityFilter) ValidationErrors {
	var errs ValidationErrors
	prefix := Indexed("filters", index)

	if !filter.IsNonEmpty() {
		errs.Add(prefix, filter.ID, MsgFilterEmpty)
		return errs
	}

	for i, e := range filter.Entities {
		field := Path(prefix, Indexed("entities", i))
		if err := ValidateEntityID(e.EntityID); err != nil {
			errs.Add(Path(field, "entityId"), e.EntityID, err.Error())
		}
		if err := ValidateEntityType(e.EntityType); err != nil {
			errs.Add(Path(field, "entityType"), e.EntityType, err.Error())
		}
	}
	for i, mz := range filter.ManagementZones {
		if strings.TrimSpace(mz.ID) == "" || strings.TrimSpace(mz.Name) == "" {
			errs.Add(Path(prefix, Indexed("managementZones", i)), mz.ID, "management zone needs both an ID and a name")
		}
	}
	for i, t := range filter.Tags {
		if err := ValidateTag(t); err != nil {
			errs.Add(Path(prefix, Indexed("tags", i)), t.String(), err.Error())
		}
	}

	return errs
}

// ParseWindowTime parses a window boundary. Values with an explicit offset are
// taken as-is; wall-clock values are interpreted in timeZone (UTC when empty).
func ParseWindowTime(value, timeZone string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	loc := time.UTC
	if timeZone != "" {
		l, err := time.LoadLocation(timeZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("loading time zone %q: %w", timeZone, err)
		}
		loc = l
	}

	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date and time %q", value)
}

// ValidateSaveRequest checks a window request and returns its parsed start and
// end. The returned error is a ValidationErrors when non-nil.
func ValidateSaveRequest(req domain.SaveWindowRequest) (start, end time.Time, err error) {
	var errs ValidationErrors

	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", req.Name, MsgNameRequired)
	}

	zoneOK := true
	if req.TimeZone != "" {
		if _, err := time.LoadLocation(req.TimeZone); err != nil {
			errs.Add("timeZone", req.TimeZone, MsgUnknownTimeZone)
			zoneOK = false
		}
	}

	switch req.Suppression {
	case "", domain.SuppressionDetectProblemsAndAlert, domain.SuppressionDetectProblemsDontAlert, domain.SuppressionDontDetectProblems:
	default:
		errs.Add("suppression", req.Suppression, MsgUnknownSuppression)
	}

	startOK, endOK := false, false
	if strings.TrimSpace(req.Start) == "" {
		errs.Add("start", req.Start, MsgStartRequired)
	} else if zoneOK {
		if start, err = ParseWindowTime(req.Start, req.TimeZone); err != nil {
			errs.Add("start", req.Start, MsgInvalidDateTime)
		} else {
			startOK = true
		}
	}
	if strings.TrimSpace(req.End) == "" {
		errs.Add("end", req.End, MsgEndRequired)
	} else if zoneOK {
		if end, err = ParseWindowTime(req.End, req.TimeZone); err != nil {
			errs.Add("end", req.End, MsgInvalidDateTime)
		} else {
			endOK = true
		}
	}
	if startOK && endOK && !end.After(start) {
		errs.Add("end", req.End, MsgEndBeforeStart)
	}

	if len(req.Filters) == 0 {
		errs.Add("filters", "", MsgFiltersRequired)
	}
	for i, f := range req.Filters {
		errs = append(errs, ValidateFilter(i, f)...)
	}

	if errs.HasErrors() {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

// ValidateHostBatch checks the size of a parsed host list. Oversized lists are
// rejected whole, never truncated.
func ValidateHostBatch(names []string) error {
	switch {
	case len(names) == 0:
		return NewValidationError("hosts", "", MsgNoHosts)
	case len(names) > MaxHostBatch:
		return NewValidationError("hosts", strconv.Itoa(len(names)),
			fmt.Sprintf("Too many hosts. Maximum %d allowed. You entered %d.", MaxHostBatch, len(names)))
	}
	return nil
}
