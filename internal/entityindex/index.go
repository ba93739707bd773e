// Package entityindex talks to the remote entity and settings index.
package entityindex

import (
	"context"
	"encoding/json"
	"fmt"
)

// Index defines the remote operations the window manager depends on.
type Index interface {
	QueryEntities(ctx context.Context, q EntityQuery) (*EntityPage, error)
	QueryEntityTypes(ctx context.Context, pageSize int) ([]EntityTypeRecord, error)
	ListSettingsObjects(ctx context.Context, q SettingsQuery) (*SettingsPage, error)
	CreateSettingsObject(ctx context.Context, obj SettingsObjectCreate) (string, error)
	DeleteSettingsObject(ctx context.Context, objectID string) error
}

// EntityQuery is one page request against the entity index.
type EntityQuery struct {
	Selector    string
	From        string // observation window, e.g. "now-30d"
	PageSize    int
	NextPageKey string
}

// EntityRecord is an entity as returned by the index.
// Optional fields are empty when the index omits them.
type EntityRecord struct {
	EntityID    string `json:"entityId"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type,omitempty"`
}

// EntityPage is one page of entity results.
type EntityPage struct {
	Entities    []EntityRecord `json:"entities"`
	NextPageKey string         `json:"nextPageKey,omitempty"`
	TotalCount  int            `json:"totalCount,omitempty"`
}

// EntityTypeRecord describes one entity type known to the index.
type EntityTypeRecord struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName,omitempty"`
}

// SettingsQuery is one page request for settings objects of a schema.
type SettingsQuery struct {
	SchemaID    string
	PageSize    int
	Fields      string
	NextPageKey string
}

// SettingsObject is a stored settings object. Value is kept raw and decoded
// by the caller into the schema's type.
type SettingsObject struct {
	ObjectID   string          `json:"objectId"`
	SchemaID   string          `json:"schemaId,omitempty"`
	Scope      string          `json:"scope,omitempty"`
	Author     string          `json:"author,omitempty"`
	Created    int64           `json:"created,omitempty"`
	CreatedBy  string          `json:"createdBy,omitempty"`
	Modified   int64           `json:"modified,omitempty"`
	ModifiedBy string          `json:"modifiedBy,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
}

// DecodeValue unmarshals the object's value into v.
// A missing value leaves v untouched.
func (o SettingsObject) DecodeValue(v any) error {
	if len(o.Value) == 0 || string(o.Value) == "null" {
		return nil
	}
	if err := json.Unmarshal(o.Value, v); err != nil {
		return fmt.Errorf("decoding settings object %s: %w", o.ObjectID, err)
	}
	return nil
}

// SettingsPage is one page of settings objects.
type SettingsPage struct {
	Items       []SettingsObject `json:"items"`
	NextPageKey string           `json:"nextPageKey,omitempty"`
	TotalCount  int              `json:"totalCount,omitempty"`
}

// SettingsObjectCreate is the payload for creating one settings object.
type SettingsObjectCreate struct {
	SchemaID string `json:"schemaId"`
	Scope    string `json:"scope"`
	Value    any    `json:"value"`
}

// APIError is a non-success response from the index.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("entity index returned %d: %s", e.StatusCode, e.Message)
}

// ListAllSettings pages through every settings object of a schema.
func ListAllSettings(ctx context.Context, idx Index, q SettingsQuery) ([]SettingsObject, error) {
	var items []SettingsObject
	for {
		page, err := idx.ListSettingsObjects(ctx, q)
		if err != nil {
			return items, err
		}
		items = append(items, page.Items...)
		if page.NextPageKey == "" {
			return items, nil
		}
		q.NextPageKey = page.NextPageKey
	}
}
