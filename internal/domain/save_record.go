package domain

import "time"

// Save statuses.
const (
	SaveStatusSuccess = "success"
	SaveStatusFailed  = "failed"
)

// SaveRecord is the local audit trail of one maintenance window save.
type SaveRecord struct {
	ID         string    `json:"id" db:"id"`
	WindowName string    `json:"window_name" db:"window_name"`
	ObjectID   string    `json:"object_id,omitempty" db:"object_id"`
	AutoTagID  string    `json:"auto_tag_id,omitempty" db:"auto_tag_id"`
	TagKey     string    `json:"tag_key,omitempty" db:"tag_key"`
	TagValue   string    `json:"tag_value,omitempty" db:"tag_value"`
	Status     string    `json:"status" db:"status"` // "success", "failed"
	Error      string    `json:"error,omitempty" db:"error"`
	Author     string    `json:"author" db:"author"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
