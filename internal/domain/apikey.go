package domain

import "time"

// APIKey authorizes administrative calls. The actual key is only returned
// once on creation.
type APIKey struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	KeyHash    string     `json:"-" db:"key_hash"`
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"` // first 8 chars for identification
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// CreateAPIKeyRequest is the request body for creating an API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKeyResponse is returned when creating an API key.
type CreateAPIKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	CreatedAt time.Time `json:"created_at"`
}

// PrincipalKind identifies how an administrator authenticated.
type PrincipalKind string

const (
	PrincipalBootstrap PrincipalKind = "bootstrap"
	PrincipalAPIKey    PrincipalKind = "api_key"
	PrincipalOIDC      PrincipalKind = "oidc"
)

// AdminPrincipal is the authenticated caller of an administrative route.
type AdminPrincipal struct {
	Kind  PrincipalKind `json:"kind"`
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email,omitempty"`
}
