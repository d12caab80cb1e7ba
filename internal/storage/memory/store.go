package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bcnelson/passgate/internal/domain"
)

// Store is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state
// with the store.
type Store struct {
	mu sync.RWMutex

	apiKeys     map[string]*domain.APIKey
	credentials map[string]*domain.AccessCredential // key: id
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		apiKeys:     make(map[string]*domain.APIKey),
		credentials: make(map[string]*domain.AccessCredential),
	}
}

func (s *Store) Close() error { return nil }

// ============================================
// API Keys
// ============================================

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[key.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, existing := range s.apiKeys {
		if existing.KeyHash == key.KeyHash {
			return domain.ErrAlreadyExists
		}
	}
	k := *key
	s.apiKeys[key.ID] = &k
	return nil
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.apiKeys {
		if key.KeyHash == keyHash {
			k := *key
			return &k, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*domain.APIKey, 0, len(s.apiKeys))
	for _, key := range s.apiKeys {
		k := *key
		keys = append(keys, &k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.apiKeys, id)
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, exists := s.apiKeys[id]
	if !exists {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	key.LastUsedAt = &now
	return nil
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apiKeys), nil
}

// ============================================
// Access Credentials
// ============================================

func (s *Store) CreateCredential(ctx context.Context, cred *domain.AccessCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[cred.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.credentials[cred.ID] = cred.Clone()
	return nil
}

func (s *Store) GetCredential(ctx context.Context, id string) (*domain.AccessCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, exists := s.credentials[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return cred.Clone(), nil
}

func (s *Store) GetCredentialByUsername(ctx context.Context, username string) (*domain.AccessCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.AccessCredential
	for _, cred := range s.credentials {
		if cred.Username != username {
			continue
		}
		if best == nil || preferForLogin(cred, best) {
			best = cred
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best.Clone(), nil
}

// preferForLogin reports whether a should be picked over b: unconsumed
// records first, then the most recently created.
func preferForLogin(a, b *domain.AccessCredential) bool {
	if a.Consumed() != b.Consumed() {
		return !a.Consumed()
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (s *Store) GetCredentialBySessionToken(ctx context.Context, token string) (*domain.AccessCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cred := range s.credentials {
		if cred.SessionToken != nil && *cred.SessionToken == token {
			return cred.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListCredentials(ctx context.Context) ([]*domain.AccessCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds := make([]*domain.AccessCredential, 0, len(s.credentials))
	for _, cred := range s.credentials {
		creds = append(creds, cred.Clone())
	}
	sort.Slice(creds, func(i, j int) bool {
		return creds[i].CreatedAt.After(creds[j].CreatedAt)
	})
	return creds, nil
}

func (s *Store) UpdateCredential(ctx context.Context, cred *domain.AccessCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.credentials[cred.ID]
	if !exists {
		return domain.ErrNotFound
	}
	existing.Username = cred.Username
	existing.PasswordHash = cred.PasswordHash
	existing.DurationHours = cred.DurationHours
	existing.UpdatedAt = cred.UpdatedAt
	return nil
}

func (s *Store) ConsumeCredential(ctx context.Context, id string, usedAt time.Time, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, exists := s.credentials[id]
	if !exists {
		return domain.ErrNotFound
	}
	if cred.Consumed() {
		return domain.ErrAlreadyConsumed
	}
	cred.UsedAt = &usedAt
	cred.SessionToken = &token
	cred.SessionExpiresAt = &expiresAt
	cred.UpdatedAt = usedAt
	return nil
}

func (s *Store) DeleteCredential(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.credentials, id)
	return nil
}
