package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

func TestValidateEntityType(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		wantErr    bool
	}{
		{"simple", "HOST", false},
		{"underscore", "PROCESS_GROUP_INSTANCE", false},
		{"digits", "EC2_INSTANCE", false},
		{"empty", "", true},
		{"lower case", "host", true},
		{"starts with digit", "1HOST", true},
		{"starts with underscore", "_HOST", true},
		{"contains quote", `HOST"`, true},
		{"contains paren", "HOST)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityType(tt.entityType)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntityType(%q) error = %v, wantErr %v", tt.entityType, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntityID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"host", "HOST-0123456789ABCDEF", false},
		{"service", "SERVICE-1", false},
		{"no separator", "HOST", true},
		{"empty identifier", "HOST-", true},
		{"empty prefix", "-123", true},
		{"lower case prefix", "host-1", true},
		{"quote in identifier", `HOST-1"`, true},
		{"comma in identifier", "HOST-1,2", true},
		{"space in identifier", "HOST-1 2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntityID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.EntityFilter
		wantCount int
		wantField string
	}{
		{
			name:      "empty filter",
			filter:    domain.EntityFilter{UnderlyingOptions: domain.UnderlyingOptions{IncludeHosts: true}},
			wantCount: 1,
			wantField: "filters[2]",
		},
		{
			name:   "valid entity",
			filter: domain.EntityFilter{Entities: []domain.EntityReference{{EntityID: "HOST-1", EntityType: "HOST"}}},
		},
		{
			name:      "bad entity",
			filter:    domain.EntityFilter{Entities: []domain.EntityReference{{EntityID: "nope", EntityType: "host"}}},
			wantCount: 2,
			wantField: "filters[2].entities[0].entityId",
		},
		{
			name:      "zone without name",
			filter:    domain.EntityFilter{ManagementZones: []domain.ManagementZone{{ID: "1"}}},
			wantCount: 1,
			wantField: "filters[2].managementZones[0]",
		},
		{
			name:      "blank tag key",
			filter:    domain.EntityFilter{Tags: []domain.Tag{{Key: " ", Value: "x"}}},
			wantCount: 1,
			wantField: "filters[2].tags[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateFilter(2, tt.filter)
			if len(errs) != tt.wantCount {
				t.Fatalf("Expected %d errors, got %d: %v", tt.wantCount, len(errs), errs)
			}
			if tt.wantCount > 0 && errs[0].Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, errs[0].Field)
			}
		})
	}
}

func validRequest() domain.SaveWindowRequest {
	return domain.SaveWindowRequest{
		Name:     "DB upgrade",
		Start:    "2030-05-01T22:00:00",
		End:      "2030-05-02T02:00:00",
		TimeZone: "Europe/Vienna",
		Filters: []domain.EntityFilter{
			{Entities: []domain.EntityReference{{EntityID: "HOST-1", EntityType: "HOST"}}},
		},
	}
}

func fieldMessages(err error) map[string]string {
	out := map[string]string{}
	var errs ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			out[e.Field] = e.Message
		}
	}
	return out
}

func TestValidateSaveRequest_Valid(t *testing.T) {
	start, end, err := ValidateSaveRequest(validRequest())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Vienna is UTC+2 in May.
	if got := start.UTC().Format(time.RFC3339); got != "2030-05-01T20:00:00Z" {
		t.Errorf("Expected start 2030-05-01T20:00:00Z, got %s", got)
	}
	if got := end.UTC().Format(time.RFC3339); got != "2030-05-02T00:00:00Z" {
		t.Errorf("Expected end 2030-05-02T00:00:00Z, got %s", got)
	}
}

func TestValidateSaveRequest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.SaveWindowRequest)
		field   string
		message string
	}{
		{"missing name", func(r *domain.SaveWindowRequest) { r.Name = "  " }, "name", MsgNameRequired},
		{"missing start", func(r *domain.SaveWindowRequest) { r.Start = "" }, "start", MsgStartRequired},
		{"missing end", func(r *domain.SaveWindowRequest) { r.End = "" }, "end", MsgEndRequired},
		{"reversed", func(r *domain.SaveWindowRequest) { r.End = r.Start }, "end", MsgEndBeforeStart},
		{"garbage start", func(r *domain.SaveWindowRequest) { r.Start = "tomorrow" }, "start", MsgInvalidDateTime},
		{"unknown zone", func(r *domain.SaveWindowRequest) { r.TimeZone = "Mars/Olympus" }, "timeZone", MsgUnknownTimeZone},
		{"bad suppression", func(r *domain.SaveWindowRequest) { r.Suppression = "SILENCE" }, "suppression", MsgUnknownSuppression},
		{"no filters", func(r *domain.SaveWindowRequest) { r.Filters = nil }, "filters", MsgFiltersRequired},
		{"empty filter", func(r *domain.SaveWindowRequest) {
			r.Filters = append(r.Filters, domain.EntityFilter{})
		}, "filters[1]", MsgFilterEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, _, err := ValidateSaveRequest(req)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			msgs := fieldMessages(err)
			if msgs[tt.field] != tt.message {
				t.Errorf("Expected %q on %s, got %v", tt.message, tt.field, msgs)
			}
		})
	}
}

func TestParseWindowTime_ExplicitOffsetWins(t *testing.T) {
	got, err := ParseWindowTime("2030-01-01T10:00:00+05:00", "America/New_York")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.UTC().Hour() != 5 {
		t.Errorf("Expected 05:00 UTC, got %s", got.UTC())
	}
}

func TestParseWindowTime_Layouts(t *testing.T) {
	for _, v := range []string{"2030-01-01T10:00:00", "2030-01-01T10:00", "2030-01-01 10:00:00", "2030-01-01 10:00"} {
		got, err := ParseWindowTime(v, "")
		if err != nil {
			t.Errorf("ParseWindowTime(%q) error = %v", v, err)
			continue
		}
		if got.Location() != time.UTC || got.Hour() != 10 {
			t.Errorf("ParseWindowTime(%q) = %s, want 10:00 UTC", v, got)
		}
	}
}

func TestValidateHostBatch(t *testing.T) {
	if err := ValidateHostBatch(nil); err == nil || !strings.Contains(err.Error(), MsgNoHosts) {
		t.Errorf("Expected %q, got %v", MsgNoHosts, err)
	}

	if err := ValidateHostBatch(make([]string, MaxHostBatch)); err != nil {
		t.Errorf("Expected %d hosts to be accepted, got %v", MaxHostBatch, err)
	}

	err := ValidateHostBatch(make([]string, MaxHostBatch+1))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if vErr.Message != "Too many hosts. Maximum 1000 allowed. You entered 1001." {
		t.Errorf("Unexpected message %q", vErr.Message)
	}
}

func TestFieldPaths(t *testing.T) {
	if got := Path(Indexed("filters", 2), Indexed("entities", 0), "entityId"); got != "filters[2].entities[0].entityId" {
		t.Errorf("Expected filters[2].entities[0].entityId, got %s", got)
	}
	if got := Path("", "name"); got != "name" {
		t.Errorf("Expected name, got %s", got)
	}

	var errs ValidationErrors
	errs.Add("end", "", MsgEndRequired)
	errs.Add(Indexed("filters", 0), "", MsgFilterEmpty)
	errs.Add("end", "x", MsgEndBeforeStart)

	fields := errs.Fields()
	if len(fields) != 2 || fields[0] != "end" || fields[1] != "filters[0]" {
		t.Errorf("Expected [end filters[0]], got %v", fields)
	}
}
