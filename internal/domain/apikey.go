package domain

import "time"

// APIKey authenticates an operator. Saved windows are signed with Author.
// The actual key is only returned once on creation.
type APIKey struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Author     string     `json:"author" db:"author"`
	KeyHash    string     `json:"-" db:"key_hash"`
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"` // first 8 chars
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// Signature is the author written into window descriptions.
func (k *APIKey) Signature() string {
	if k.Author != "" {
		return k.Author
	}
	return k.Name
}

// CreateAPIKeyRequest is the request body for creating an API key.
// Author is usually the operator's email address.
type CreateAPIKeyRequest struct {
	Name   string `json:"name"`
	Author string `json:"author,omitempty"`
}

// CreateAPIKeyResponse is returned when creating an API key.
// The key is only shown once.
type CreateAPIKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Author    string    `json:"author"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	CreatedAt time.Time `json:"created_at"`
}
