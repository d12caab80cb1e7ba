package storage

import (
	"context"
	"time"

	"github.com/bcnelson/passgate/internal/domain"
)

// Storage defines the interface for the storage layer.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// API Keys
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
	CountAPIKeys(ctx context.Context) (int, error)

	CredentialStore
}

// CredentialStore persists one-time access credentials.
type CredentialStore interface {
	CreateCredential(ctx context.Context, cred *domain.AccessCredential) error
	GetCredential(ctx context.Context, id string) (*domain.AccessCredential, error)

	// GetCredentialByUsername returns the newest unconsumed credential with
	// the given username, or the newest consumed one when none is unconsumed.
	GetCredentialByUsername(ctx context.Context, username string) (*domain.AccessCredential, error)
	GetCredentialBySessionToken(ctx context.Context, token string) (*domain.AccessCredential, error)
	ListCredentials(ctx context.Context) ([]*domain.AccessCredential, error)

	// UpdateCredential overwrites username, password hash and duration.
	UpdateCredential(ctx context.Context, cred *domain.AccessCredential) error

	// ConsumeCredential sets used_at, session_token and session_expires_at in
	// one write that only applies while used_at is null. It returns
	// domain.ErrAlreadyConsumed if the credential was consumed first and
	// domain.ErrNotFound if it no longer exists.
	ConsumeCredential(ctx context.Context, id string, usedAt time.Time, token string, expiresAt time.Time) error

	DeleteCredential(ctx context.Context, id string) error
}
