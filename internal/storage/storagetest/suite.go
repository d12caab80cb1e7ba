// Package storagetest holds a behavioural test suite that every
// storage.Storage implementation must pass.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) storage.Storage

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("APIKeyLifecycle", func(t *testing.T) { testAPIKeyLifecycle(t, newStore(t)) })
	t.Run("CredentialCRUD", func(t *testing.T) { testCredentialCRUD(t, newStore(t)) })
	t.Run("UsernamePrefersUnconsumed", func(t *testing.T) { testUsernamePrefersUnconsumed(t, newStore(t)) })
	t.Run("ConsumeOnce", func(t *testing.T) { testConsumeOnce(t, newStore(t)) })
	t.Run("ConsumeConcurrent", func(t *testing.T) { testConsumeConcurrent(t, newStore(t)) })
	t.Run("ConsumeMissing", func(t *testing.T) { testConsumeMissing(t, newStore(t)) })
	t.Run("DeleteInvalidatesToken", func(t *testing.T) { testDeleteInvalidatesToken(t, newStore(t)) })
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// NewCredential builds an unconsumed credential for tests.
func NewCredential(username string, createdAt time.Time) *domain.AccessCredential {
	return &domain.AccessCredential{
		ID:            uuid.NewString(),
		Username:      username,
		PasswordHash:  "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		DurationHours: 24,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func testAPIKeyLifecycle(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	count, err := s.CountAPIKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	key := &domain.APIKey{
		ID:        uuid.NewString(),
		Name:      "ci",
		KeyHash:   "abc123",
		KeyPrefix: "pg_abcdefgh",
		CreatedAt: base,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	got, err := s.GetAPIKeyByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "ci", got.Name)
	assert.Nil(t, got.LastUsedAt)

	require.NoError(t, s.UpdateAPIKeyLastUsed(ctx, key.ID))
	got, err = s.GetAPIKeyByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt)

	keys, err := s.ListAPIKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, s.DeleteAPIKey(ctx, key.ID))
	assert.ErrorIs(t, s.DeleteAPIKey(ctx, key.ID), domain.ErrNotFound)

	_, err = s.GetAPIKeyByHash(ctx, "abc123")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCredentialCRUD(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	cred := NewCredential("alice", base)
	require.NoError(t, s.CreateCredential(ctx, cred))
	assert.ErrorIs(t, s.CreateCredential(ctx, cred), domain.ErrAlreadyExists)

	got, err := s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, cred.PasswordHash, got.PasswordHash)
	assert.Equal(t, 24, got.DurationHours)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.Nil(t, got.UsedAt)
	assert.Nil(t, got.SessionToken)
	assert.Nil(t, got.SessionExpiresAt)

	got.Username = "alice2"
	got.DurationHours = 2
	got.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, s.UpdateCredential(ctx, got))

	got, err = s.GetCredential(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, 2, got.DurationHours)
	assert.True(t, base.Add(time.Minute).Equal(got.UpdatedAt))

	second := NewCredential("bob", base.Add(time.Hour))
	require.NoError(t, s.CreateCredential(ctx, second))

	list, err := s.ListCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	missing := NewCredential("nobody", base)
	assert.ErrorIs(t, s.UpdateCredential(ctx, missing), domain.ErrNotFound)

	require.NoError(t, s.DeleteCredential(ctx, cred.ID))
	assert.ErrorIs(t, s.DeleteCredential(ctx, cred.ID), domain.ErrNotFound)
	_, err = s.GetCredential(ctx, cred.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testUsernamePrefersUnconsumed(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	_, err := s.GetCredentialByUsername(ctx, "carol")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	older := NewCredential("carol", base)
	newer := NewCredential("carol", base.Add(time.Hour))
	require.NoError(t, s.CreateCredential(ctx, older))
	require.NoError(t, s.CreateCredential(ctx, newer))

	got, err := s.GetCredentialByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	require.NoError(t, s.ConsumeCredential(ctx, newer.ID, base.Add(2*time.Hour), "tok-newer", base.Add(26*time.Hour)))

	got, err = s.GetCredentialByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID, "unconsumed record wins over a newer consumed one")

	require.NoError(t, s.ConsumeCredential(ctx, older.ID, base.Add(3*time.Hour), "tok-older", base.Add(27*time.Hour)))

	got, err = s.GetCredentialByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func testConsumeOnce(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	cred := NewCredential("dave", base)
	require.NoError(t, s.CreateCredential(ctx, cred))

	usedAt := base.Add(time.Hour)
	expiresAt := usedAt.Add(24 * time.Hour)
	require.NoError(t, s.ConsumeCredential(ctx, cred.ID, usedAt, "tok-1", expiresAt))

	err := s.ConsumeCredential(ctx, cred.ID, usedAt.Add(time.Minute), "tok-2", expiresAt.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)

	got, err := s.GetCredentialBySessionToken(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)
	require.NotNil(t, got.SessionToken)
	require.NotNil(t, got.SessionExpiresAt)
	assert.True(t, usedAt.Equal(*got.UsedAt))
	assert.Equal(t, "tok-1", *got.SessionToken)
	assert.True(t, expiresAt.Equal(*got.SessionExpiresAt))

	_, err = s.GetCredentialBySessionToken(ctx, "tok-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testConsumeConcurrent(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	cred := NewCredential("erin", base)
	require.NoError(t, s.CreateCredential(ctx, cred))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		consumed  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := uuid.NewString()
			err := s.ConsumeCredential(ctx, cred.ID, base.Add(time.Duration(i)*time.Second), token, base.Add(24*time.Hour))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrAlreadyConsumed):
				consumed++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, consumed)
}

func testConsumeMissing(t *testing.T, s storage.Storage) {
	err := s.ConsumeCredential(context.Background(), uuid.NewString(), base, "tok", base.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteInvalidatesToken(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	cred := NewCredential("frank", base)
	require.NoError(t, s.CreateCredential(ctx, cred))
	require.NoError(t, s.ConsumeCredential(ctx, cred.ID, base, "tok-frank", base.Add(time.Hour)))

	_, err := s.GetCredentialBySessionToken(ctx, "tok-frank")
	require.NoError(t, err)

	require.NoError(t, s.DeleteCredential(ctx, cred.ID))
	_, err = s.GetCredentialBySessionToken(ctx, "tok-frank")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
