package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bcnelson/maintenance-window-manager/internal/api"
	"github.com/bcnelson/maintenance-window-manager/internal/api/handler"
	"github.com/bcnelson/maintenance-window-manager/internal/autotag"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex/entityindextest"
	"github.com/bcnelson/maintenance-window-manager/internal/fetcher"
	"github.com/bcnelson/maintenance-window-manager/internal/resolver"
	"github.com/bcnelson/maintenance-window-manager/internal/service"
	"github.com/bcnelson/maintenance-window-manager/internal/storage/memory"
)

// testServer creates a test server with in-memory storage and a fake index
type testServer struct {
	handler      http.Handler
	store        *memory.Store
	index        *entityindextest.Fake
	bootstrapKey string
}

func newTestServer() *testServer {
	return newTestServerWith(entityindex.Fixture{
		Entities: map[string][]entityindex.EntityRecord{
			`type(HOST),entityId("HOST-1")`: {
				{EntityID: "HOST-1", DisplayName: "web-1", Type: "HOST"},
			},
			`type(PROCESS_GROUP_INSTANCE),fromRelationships.isProcessOf(entityId("HOST-1"))`: {
				{EntityID: "PROCESS_GROUP_INSTANCE-1", DisplayName: "nginx", Type: "PROCESS_GROUP_INSTANCE"},
				{EntityID: "PROCESS_GROUP_INSTANCE-2", DisplayName: "java"},
			},
			`type(HOST),entityName.equals("web-1")`: {
				{EntityID: "HOST-1", DisplayName: "web-1", Type: "HOST"},
			},
			`type(HOST),entityName.contains("web")`: {
				{EntityID: "HOST-1", DisplayName: "web-1", Type: "HOST"},
			},
		},
		Settings: map[string][]entityindex.SettingsObject{
			domain.SchemaManagementZones: {
				{ObjectID: "mz-2", Value: json.RawMessage(`{"name":"Prod"}`)},
				{ObjectID: "mz-1", Value: json.RawMessage(`{"name":"Batch"}`)},
			},
		},
	})
}

func newTestServerWith(fixture entityindex.Fixture) *testServer {
	store := memory.New()
	index := entityindextest.New(fixture)
	bootstrapKey := "test-bootstrap-key"

	tags := autotag.New(index)
	windows := service.NewWindowService(index, store, fetcher.New(index, fetcher.Options{}), resolver.New(index), tags)
	cleanup := service.NewCleanupScheduler(tags, "@every 1h")

	return &testServer{
		handler:      api.NewRouter(store, windows, cleanup, bootstrapKey),
		store:        store,
		index:        index,
		bootstrapKey: bootstrapKey,
	}
}

func (ts *testServer) request(method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createKey(t *testing.T, name, author string) domain.CreateAPIKeyResponse {
	t.Helper()
	rr := ts.request("POST", "/api/v1/keys", domain.CreateAPIKeyRequest{Name: name, Author: author}, ts.bootstrapKey)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp domain.CreateAPIKeyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode key: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) domain.StandardError {
	t.Helper()
	var resp domain.StandardErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rr.Body.String(), err)
	}
	return resp.Error
}

func hostFilter(opts domain.UnderlyingOptions) domain.EntityFilter {
	return domain.EntityFilter{
		Entities:          []domain.EntityReference{{EntityID: "HOST-1", EntityType: "HOST", DisplayName: "web-1"}},
		UnderlyingOptions: opts,
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/health", nil, "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer()

	// Generate at least one fetch so the counters are exported.
	ts.request("POST", "/api/v1/preview", hostFilter(domain.UnderlyingOptions{}), ts.bootstrapKey)

	rr := ts.request("GET", "/metrics", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "mwm_fetcher_entity_pages_total") {
		t.Error("Expected fetch page counter in metrics output")
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/api/v1/windows", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != domain.ErrCodeUnauthorized {
		t.Errorf("Expected UNAUTHORIZED, got %s", e.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/windows", nil)
	req.Header.Set("Authorization", "Basic invalid")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	rr = ts.request("GET", "/api/v1/windows", nil, "invalid-key")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestBootstrapKeyAuth(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/api/v1/windows", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bootstrap key, got %d", rr.Code)
	}

	ts.createKey(t, "ops", "")

	// Once a key exists the bootstrap key stops working.
	rr = ts.request("GET", "/api/v1/windows", nil, ts.bootstrapKey)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for bootstrap key after setup, got %d", rr.Code)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	ts := newTestServer()

	created := ts.createKey(t, "Test Key", "")
	if created.Key == "" {
		t.Error("Expected key to be returned on creation")
	}
	if !strings.HasPrefix(created.Key, "mwm_") {
		t.Errorf("Expected mwm_ key prefix, got %s", created.Key)
	}
	if created.Author != "Test Key" {
		t.Errorf("Expected author to default to the name, got '%s'", created.Author)
	}

	rr := ts.request("GET", "/api/v1/keys", nil, created.Key)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var keys []*domain.APIKey
	_ = json.Unmarshal(rr.Body.Bytes(), &keys)
	if len(keys) != 1 {
		t.Errorf("Expected 1 key, got %d", len(keys))
	}

	rr = ts.request("DELETE", "/api/v1/keys/"+created.ID, nil, created.Key)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}

	rr = ts.request("DELETE", "/api/v1/keys/"+created.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for deleted key, got %d", rr.Code)
	}
}

func TestCreateKeyValidation(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/keys", map[string]string{}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing name, got %d", rr.Code)
	}

	rr = ts.request("POST", "/api/v1/keys", domain.CreateAPIKeyRequest{Name: "x", Author: "[evil]"}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bracketed author, got %d", rr.Code)
	}
}

func TestSaveAndListWindows(t *testing.T) {
	ts := newTestServer()
	key := ts.createKey(t, "ops", "ops@example.com")

	rr := ts.request("POST", "/api/v1/windows", domain.SaveWindowRequest{
		Name:     "Kernel patch",
		Start:    "2030-05-01T08:00",
		End:      "2030-05-01T10:00",
		TimeZone: "UTC",
		Filters:  []domain.EntityFilter{hostFilter(domain.UnderlyingOptions{IncludeProcesses: true})},
	}, key.Key)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var saved domain.SaveWindowResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &saved)
	if saved.ObjectID == "" || saved.AutoTagID == "" {
		t.Errorf("Expected window and auto-tag IDs, got %+v", saved)
	}
	if saved.TagValue != "2030-05-01 10:00:00 UTC" {
		t.Errorf("Expected tag value from the end time, got %s", saved.TagValue)
	}

	rr = ts.request("GET", "/api/v1/windows", nil, key.Key)
	var windows []domain.MaintenanceWindow
	_ = json.Unmarshal(rr.Body.Bytes(), &windows)
	if len(windows) != 1 {
		t.Fatalf("Expected 1 window, got %d", len(windows))
	}
	if windows[0].Author != "ops@example.com" {
		t.Errorf("Expected author ops@example.com, got %s", windows[0].Author)
	}
	if windows[0].StartTime != "2030-05-01 08:00" {
		t.Errorf("Expected start 2030-05-01 08:00, got %s", windows[0].StartTime)
	}
	if windows[0].Labels.ScheduleType != "Once" || windows[0].Labels.Suppression != "None" {
		t.Errorf("Expected Once/None labels, got %+v", windows[0].Labels)
	}
	if len(windows[0].EntityTypes) != 2 || windows[0].EntityTypes[1].Label != "Process" {
		t.Errorf("Expected host and process types, got %+v", windows[0].EntityTypes)
	}

	rr = ts.request("GET", "/api/v1/windows/saves?limit=10", nil, key.Key)
	var records []*domain.SaveRecord
	_ = json.Unmarshal(rr.Body.Bytes(), &records)
	if len(records) != 1 || records[0].Status != domain.SaveStatusSuccess {
		t.Fatalf("Expected one successful save record, got %+v", records)
	}

	rr = ts.request("GET", "/api/v1/windows/saves/"+records[0].ID, nil, key.Key)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	var record domain.SaveRecord
	_ = json.Unmarshal(rr.Body.Bytes(), &record)
	if record.ObjectID != saved.ObjectID {
		t.Errorf("Expected record for %s, got %s", saved.ObjectID, record.ObjectID)
	}

	rr = ts.request("GET", "/api/v1/windows/saves/missing", nil, key.Key)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestSaveWindowValidation(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/windows", domain.SaveWindowRequest{
		Name:    "bad",
		Start:   "2030-05-01T10:00",
		End:     "2030-05-01T08:00",
		Filters: []domain.EntityFilter{{}},
	}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != domain.ErrCodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR, got %s", e.Code)
	}
	if _, ok := e.Details["errors"]; !ok {
		t.Error("Expected field errors in details")
	}
	fields, _ := e.Details["fields"].([]any)
	if len(fields) != 2 || fields[0] != "end" || fields[1] != "filters[0]" {
		t.Errorf("Expected failing fields [end filters[0]], got %v", e.Details["fields"])
	}
	if len(ts.index.Created()) != 0 {
		t.Error("Expected nothing to be created")
	}
}

func TestSaveWindowAutoTagFailure(t *testing.T) {
	ts := newTestServer()
	ts.index.CreateErr = io.ErrUnexpectedEOF

	rr := ts.request("POST", "/api/v1/windows", domain.SaveWindowRequest{
		Name:    "Kernel patch",
		Start:   "2030-05-01T08:00",
		End:     "2030-05-01T10:00",
		Filters: []domain.EntityFilter{hostFilter(domain.UnderlyingOptions{IncludeProcesses: true})},
	}, ts.bootstrapKey)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != domain.ErrCodeAutoTagFailed {
		t.Errorf("Expected AUTO_TAG_FAILED, got %s", e.Code)
	}
}

func TestWindowEntitiesNotFound(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/api/v1/windows/missing/entities", nil, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestPreview(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/preview", hostFilter(domain.UnderlyingOptions{IncludeProcesses: true}), ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var entities []domain.PreviewEntity
	_ = json.Unmarshal(rr.Body.Bytes(), &entities)
	if len(entities) != 3 {
		t.Fatalf("Expected 3 entities, got %d", len(entities))
	}
	if entities[0].EntityID != "HOST-1" {
		t.Errorf("Expected the anchor first, got %s", entities[0].EntityID)
	}
	if entities[2].EntityType != "PROCESS_GROUP_INSTANCE" {
		t.Errorf("Expected type derived from the ID, got %s", entities[2].EntityType)
	}

	// Empty filters match nothing and never reach the index.
	before := len(ts.index.Queries())
	rr = ts.request("POST", "/api/v1/preview", domain.EntityFilter{}, ts.bootstrapKey)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("Expected empty list, got %d %s", rr.Code, rr.Body.String())
	}
	if len(ts.index.Queries()) != before {
		t.Error("Expected no index queries for an empty filter")
	}
}

func TestPreviewAllDedupes(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/preview/all", handler.PreviewAllRequest{Filters: []domain.EntityFilter{
		hostFilter(domain.UnderlyingOptions{}),
		hostFilter(domain.UnderlyingOptions{}),
		{},
	}}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var entities []domain.PreviewEntity
	_ = json.Unmarshal(rr.Body.Bytes(), &entities)
	if len(entities) != 1 {
		t.Errorf("Expected 1 entity, got %d", len(entities))
	}
}

func TestCompileSelectors(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/selectors/compile", hostFilter(domain.UnderlyingOptions{IncludeProcesses: true}), ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp handler.CompileResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	expected := []string{
		`type(HOST),entityId("HOST-1")`,
		`type(PROCESS_GROUP_INSTANCE),fromRelationships.isProcessOf(entityId("HOST-1"))`,
	}
	if len(resp.Selectors) != len(expected) {
		t.Fatalf("Expected %d selectors, got %d", len(expected), len(resp.Selectors))
	}
	for i, s := range resp.Selectors {
		if s.Selector != expected[i] {
			t.Errorf("Selector %d: expected %s, got %s", i, expected[i], s.Selector)
		}
	}

	// Repeated entities compile to repeated selectors.
	twice := hostFilter(domain.UnderlyingOptions{})
	twice.Entities = append(twice.Entities, twice.Entities[0])
	rr = ts.request("POST", "/api/v1/selectors/compile", twice, ts.bootstrapKey)
	var repeated handler.CompileResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &repeated)
	if len(repeated.Selectors) != 2 {
		t.Errorf("Expected 2 selectors for a repeated entity, got %d", len(repeated.Selectors))
	}
	if len(repeated.EntityTypes) != 1 {
		t.Errorf("Expected 1 entity type, got %v", repeated.EntityTypes)
	}

	rr = ts.request("POST", "/api/v1/selectors/compile", domain.EntityFilter{}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an empty filter, got %d", rr.Code)
	}

	rr = ts.request("POST", "/api/v1/selectors/compile", domain.EntityFilter{
		Entities: []domain.EntityReference{{EntityID: "not an id", EntityType: "HOST"}},
	}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a malformed entity ID, got %d", rr.Code)
	}
}

func TestResolveHosts(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("POST", "/api/v1/hosts/resolve", domain.BulkHostsRequest{Hosts: "web-1\nghost", IncludeServices: true}, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp service.BulkHostsResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Outcome != resolver.Mixed {
		t.Errorf("Expected mixed outcome, got %s", resp.Outcome)
	}
	if len(resp.Filters) != 1 || !resp.Filters[0].UnderlyingOptions.IncludeServices {
		t.Errorf("Expected one filter including services, got %+v", resp.Filters)
	}

	rr = ts.request("POST", "/api/v1/hosts/resolve", domain.BulkHostsRequest{Hosts: "ghost"}, ts.bootstrapKey)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != domain.ErrCodeNoHostsFound {
		t.Errorf("Expected NO_HOSTS_FOUND, got %s", e.Code)
	}

	var many []string
	for i := 0; i < 1001; i++ {
		many = append(many, fmt.Sprintf("host-%d", i))
	}
	rr = ts.request("POST", "/api/v1/hosts/resolve", domain.BulkHostsRequest{Hosts: strings.Join(many, ",")}, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for too many hosts, got %d", rr.Code)
	}
}

func TestReferenceData(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/api/v1/management-zones", nil, ts.bootstrapKey)
	var zones []domain.ManagementZone
	_ = json.Unmarshal(rr.Body.Bytes(), &zones)
	if len(zones) != 2 || zones[0].Name != "Batch" {
		t.Errorf("Expected zones sorted by name, got %+v", zones)
	}

	rr = ts.request("GET", "/api/v1/entities/search?type=HOST&q=web", nil, ts.bootstrapKey)
	var found []domain.EntityReference
	_ = json.Unmarshal(rr.Body.Bytes(), &found)
	if len(found) != 1 || found[0].EntityID != "HOST-1" {
		t.Errorf("Expected HOST-1, got %+v", found)
	}

	rr = ts.request("GET", "/api/v1/entities/search?type=host&q=web", nil, ts.bootstrapKey)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a lower-case type, got %d", rr.Code)
	}

	rr = ts.request("GET", "/api/v1/catalog/timezones", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	rr = ts.request("GET", "/api/v1/entity-types", nil, ts.bootstrapKey)
	var types []domain.EntityTypeOption
	_ = json.Unmarshal(rr.Body.Bytes(), &types)
	if len(types) != 0 {
		t.Errorf("Expected no types from an empty index, got %d", len(types))
	}
}

func TestAutoTagCleanup(t *testing.T) {
	ts := newTestServerWith(entityindex.Fixture{Settings: map[string][]entityindex.SettingsObject{
		domain.SchemaAutoTagging: {{
			ObjectID: "old",
			Value:    json.RawMessage(`{"name":"Maintenance — old","rules":[{"type":"SELECTOR","valueFormat":"2020-01-01 00:00:00 UTC"}]}`),
		}},
	}})

	rr := ts.request("GET", "/api/v1/autotags/cleanup", nil, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 before any run, got %d", rr.Code)
	}

	rr = ts.request("POST", "/api/v1/autotags/cleanup", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var report domain.CleanupReport
	_ = json.Unmarshal(rr.Body.Bytes(), &report)
	if len(report.Deleted) != 1 || report.Deleted[0] != "old" {
		t.Errorf("Expected old tag deleted, got %+v", report)
	}

	rr = ts.request("GET", "/api/v1/autotags/cleanup", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 after a run, got %d", rr.Code)
	}
}
