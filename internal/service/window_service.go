// Package service orchestrates maintenance window listing, previews, saves
// and the scheduled cleanup of expired auto-tags.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bcnelson/maintenance-window-manager/internal/autotag"
	"github.com/bcnelson/maintenance-window-manager/internal/catalog"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/fetcher"
	"github.com/bcnelson/maintenance-window-manager/internal/merger"
	"github.com/bcnelson/maintenance-window-manager/internal/metrics"
	"github.com/bcnelson/maintenance-window-manager/internal/resolver"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
	"github.com/bcnelson/maintenance-window-manager/internal/storage"
	"github.com/bcnelson/maintenance-window-manager/internal/validation"
)

const (
	settingsPageSize   = 500
	entityTypePageSize = 500
	windowFields       = "objectId,value,created,modified,createdBy,modifiedBy,author,schemaVersion"
)

// BulkHostsResponse is the outcome of the bulk host flow.
type BulkHostsResponse struct {
	Valid   []domain.EntityReference `json:"valid"`
	Invalid []string                 `json:"invalid"`
	Outcome resolver.Outcome         `json:"outcome"`
	Filters []domain.EntityFilter    `json:"filters"`
}

// WindowService handles maintenance window operations against the entity index.
type WindowService struct {
	index    entityindex.Index
	store    storage.Storage
	fetcher  *fetcher.Fetcher
	resolver *resolver.Resolver
	tags     *autotag.Manager
	now      func() time.Time
}

// NewWindowService creates a new WindowService.
func NewWindowService(index entityindex.Index, store storage.Storage, f *fetcher.Fetcher, r *resolver.Resolver, tags *autotag.Manager) *WindowService {
	return &WindowService{
		index:    index,
		store:    store,
		fetcher:  f,
		resolver: r,
		tags:     tags,
		now:      time.Now,
	}
}

// ListWindows returns every stored maintenance window. Listing failures are
// logged and yield whatever was read before the failure, usually nothing.
func (s *WindowService) ListWindows(ctx context.Context) []domain.MaintenanceWindow {
	objects, err := entityindex.ListAllSettings(ctx, s.index, entityindex.SettingsQuery{
		SchemaID: domain.SchemaMaintenanceWindow,
		PageSize: settingsPageSize,
		Fields:   windowFields,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch maintenance windows")
	}

	windows := make([]domain.MaintenanceWindow, 0, len(objects))
	for _, obj := range objects {
		value, err := decodeWindow(obj)
		if err != nil {
			log.Debug().Err(err).Str("object_id", obj.ObjectID).Msg("skipping undecodable maintenance window")
			continue
		}
		windows = append(windows, toMaintenanceWindow(obj, value))
	}
	return windows
}

// ListManagementZones returns the management zones sorted by name.
func (s *WindowService) ListManagementZones(ctx context.Context) []domain.ManagementZone {
	objects, err := entityindex.ListAllSettings(ctx, s.index, entityindex.SettingsQuery{
		SchemaID: domain.SchemaManagementZones,
		PageSize: settingsPageSize,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch management zones")
		return []domain.ManagementZone{}
	}

	zones := make([]domain.ManagementZone, 0, len(objects))
	for _, obj := range objects {
		var value struct {
			Name string `json:"name"`
		}
		_ = obj.DecodeValue(&value)
		if value.Name == "" {
			value.Name = "Unknown"
		}
		zones = append(zones, domain.ManagementZone{ID: obj.ObjectID, Name: value.Name})
	}
	sort.SliceStable(zones, func(i, j int) bool {
		return strings.ToLower(zones[i].Name) < strings.ToLower(zones[j].Name)
	})
	return zones
}

// ListEntityTypes returns the index's entity types sorted by label, or the
// default catalog when the index cannot list them.
func (s *WindowService) ListEntityTypes(ctx context.Context) []domain.EntityTypeOption {
	records, err := s.index.QueryEntityTypes(ctx, entityTypePageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch entity types")
		return append([]domain.EntityTypeOption(nil), catalog.DefaultEntityTypes...)
	}

	types := make([]domain.EntityTypeOption, 0, len(records))
	for _, r := range records {
		label := r.DisplayName
		if label == "" {
			label = catalog.LabelFromType(r.Type)
		}
		types = append(types, domain.EntityTypeOption{Value: r.Type, Label: label})
	}
	sort.SliceStable(types, func(i, j int) bool {
		return strings.ToLower(types[i].Label) < strings.ToLower(types[j].Label)
	})
	return types
}

// SearchEntities finds entities of one type by partial name.
func (s *WindowService) SearchEntities(ctx context.Context, entityType, term string) []domain.EntityReference {
	return s.resolver.SearchEntities(ctx, entityType, term)
}

// ResolveEntityNames maps entity IDs to display names.
func (s *WindowService) ResolveEntityNames(ctx context.Context, ids []string) map[string]string {
	return s.resolver.ResolveEntityNames(ctx, ids)
}

// Preview returns the entities one filter matches.
func (s *WindowService) Preview(ctx context.Context, filter domain.EntityFilter) []domain.PreviewEntity {
	return s.fetcher.FetchForFilter(ctx, filter)
}

// PreviewAll returns the entities matched by any of the filters.
func (s *WindowService) PreviewAll(ctx context.Context, filters []domain.EntityFilter) []domain.PreviewEntity {
	return s.fetcher.FetchForFilters(ctx, filters)
}

// WindowEntities returns the entities a stored window currently covers.
func (s *WindowService) WindowEntities(ctx context.Context, objectID string) ([]domain.PreviewEntity, error) {
	objects, err := entityindex.ListAllSettings(ctx, s.index, entityindex.SettingsQuery{
		SchemaID: domain.SchemaMaintenanceWindow,
		PageSize: settingsPageSize,
		Fields:   windowFields,
	})
	if err != nil {
		return nil, fmt.Errorf("listing maintenance windows: %w", err)
	}

	var value *domain.MaintenanceWindowValue
	for _, obj := range objects {
		if obj.ObjectID != objectID {
			continue
		}
		if value, err = decodeWindow(obj); err != nil {
			return nil, fmt.Errorf("decoding maintenance window %s: %w", objectID, err)
		}
		break
	}
	if value == nil {
		return nil, domain.ErrNotFound
	}

	zoneNames := make(map[string]string)
	for _, z := range s.ListManagementZones(ctx) {
		zoneNames[z.ID] = z.Name
	}

	selectors := selector.FromRawFilters(value.Filters, zoneNames)
	return merger.Dedupe(s.fetcher.FetchMany(ctx, selectors)), nil
}

// BulkHosts resolves a pasted host list and builds one filter per found host.
// When no host resolves the partial response is returned with the error.
func (s *WindowService) BulkHosts(ctx context.Context, req domain.BulkHostsRequest) (*BulkHostsResponse, error) {
	result, err := s.resolver.ResolveBatch(ctx, req.Hosts)
	if result == nil {
		return nil, err
	}

	resp := &BulkHostsResponse{
		Valid:   result.Valid,
		Invalid: result.Invalid,
		Outcome: result.Outcome,
		Filters: resolver.BuildHostFilters(result.Valid, req.ManagementZones, req.Tags, req.IncludeProcesses, req.IncludeServices),
	}
	return resp, err
}

// ListSaves returns the local save history, newest first.
func (s *WindowService) ListSaves(ctx context.Context, limit, offset int) ([]*domain.SaveRecord, error) {
	return s.store.ListSaveRecords(ctx, limit, offset)
}

// GetSave returns one save record.
func (s *WindowService) GetSave(ctx context.Context, id string) (*domain.SaveRecord, error) {
	return s.store.GetSaveRecord(ctx, id)
}

// Save validates and creates a maintenance window signed by author.
// Filters with underlying resources first get an auto-tag rule; when that
// fails nothing is created. Every attempt past validation is recorded.
func (s *WindowService) Save(ctx context.Context, req domain.SaveWindowRequest, author string) (*domain.SaveWindowResponse, error) {
	start, end, err := validation.ValidateSaveRequest(req)
	if err != nil {
		metrics.WindowSavesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	// Listed aliases are stored under their canonical zone.
	loc := time.UTC
	if tz := req.TimeZone; tz != "" {
		if catalog.TimeZoneCity(tz) != catalog.Unknown {
			tz = catalog.CanonicalTimeZone(tz)
		}
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, err
		}
	}
	if author == "" {
		author = unknownAuthor
	}

	name := strings.TrimSpace(req.Name)
	record := &domain.SaveRecord{
		ID:         uuid.New().String(),
		WindowName: name,
		Author:     author,
		CreatedAt:  s.now().UTC(),
	}

	var tagKey, tagValue string
	if autotag.NeedsAutoTagging(req.Filters) {
		tagKey = autotag.TagKey(name)
		tagValue = autotag.TagValue(end)
		if rules := autotag.BuildRules(req.Filters, tagValue); len(rules) > 0 {
			id, err := s.tags.Create(ctx, tagKey, tagValue, rules)
			if err != nil {
				record.TagKey, record.TagValue = tagKey, tagValue
				s.recordFailure(ctx, record, err)
				metrics.WindowSavesTotal.WithLabelValues("tag_failed").Inc()
				return nil, err
			}
			record.AutoTagID = id
		}
		record.TagKey, record.TagValue = tagKey, tagValue
	}

	objectID, err := s.index.CreateSettingsObject(ctx, entityindex.SettingsObjectCreate{
		SchemaID: domain.SchemaMaintenanceWindow,
		Scope:    domain.ScopeEnvironment,
		Value:    windowValue(req, start, end, loc, author, tagKey, tagValue),
	})
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrSaveFailed, err)
		s.recordFailure(ctx, record, err)
		metrics.WindowSavesTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	record.ObjectID = objectID
	record.Status = domain.SaveStatusSuccess
	s.writeRecord(ctx, record)
	metrics.WindowSavesTotal.WithLabelValues("success").Inc()
	log.Info().
		Str("window", name).
		Str("object_id", objectID).
		Str("auto_tag_id", record.AutoTagID).
		Str("author", author).
		Msg("created maintenance window")

	s.tags.CleanupExpired(ctx)

	return &domain.SaveWindowResponse{
		ObjectID:  objectID,
		AutoTagID: record.AutoTagID,
		TagKey:    record.TagKey,
		TagValue:  record.TagValue,
		RecordID:  record.ID,
	}, nil
}

func (s *WindowService) recordFailure(ctx context.Context, record *domain.SaveRecord, cause error) {
	record.Status = domain.SaveStatusFailed
	record.Error = cause.Error()
	s.writeRecord(ctx, record)
	log.Error().Err(cause).Str("window", record.WindowName).Msg("saving maintenance window failed")
}

// writeRecord persists the save history. The window itself already exists
// remotely, so a local write failure is only logged.
func (s *WindowService) writeRecord(ctx context.Context, record *domain.SaveRecord) {
	if err := s.store.CreateSaveRecord(ctx, record); err != nil {
		log.Warn().Err(err).Str("record_id", record.ID).Msg("failed to record window save")
	}
}

func decodeWindow(obj entityindex.SettingsObject) (*domain.MaintenanceWindowValue, error) {
	var value domain.MaintenanceWindowValue
	if err := obj.DecodeValue(&value); err != nil {
		return nil, err
	}
	return &value, nil
}
