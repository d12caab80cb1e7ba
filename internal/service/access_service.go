package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/storage"
	"github.com/bcnelson/passgate/internal/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// sessionTokenBytes is the amount of randomness in a session token.
// Collisions are not checked; 2^128 is large enough.
const sessionTokenBytes = 16

// SessionResult is returned by a successful login.
type SessionResult struct {
	CredentialID string
	Token        string
	ExpiresAt    time.Time
}

// InactiveReason explains why a session token is not active.
type InactiveReason string

const (
	ReasonNone         InactiveReason = ""
	ReasonMissingToken InactiveReason = "missing_token"
	ReasonUnknownToken InactiveReason = "unknown_token"
	ReasonExpired      InactiveReason = "expired"
	ReasonStoreError   InactiveReason = "store_error"
)

// ValidationResult is the outcome of Validate. A store failure and a
// confirmed inactive token both report Active == false; Reason tells them
// apart.
type ValidationResult struct {
	Active    bool
	ExpiresAt *time.Time
	Reason    InactiveReason
}

// AccessService issues and validates one-time access credentials.
// It holds no state of its own; every call re-reads the store.
type AccessService struct {
	store  storage.CredentialStore
	logger logrus.FieldLogger
	now    func() time.Time
	random io.Reader
}

// Option customizes an AccessService.
type Option func(*AccessService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *AccessService) { s.now = now }
}

// WithTokenReader replaces crypto/rand as the source of session tokens.
func WithTokenReader(r io.Reader) Option {
	return func(s *AccessService) { s.random = r }
}

// NewAccessService creates a new AccessService.
func NewAccessService(store storage.CredentialStore, logger logrus.FieldLogger, opts ...Option) *AccessService {
	s := &AccessService{
		store:  store,
		logger: logger,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword returns the hex-encoded SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *AccessService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}

// Login exchanges an unused username/password pair for a session token.
func (s *AccessService) Login(ctx context.Context, username, password string) (*SessionResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	cred, err := s.store.GetCredentialByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("looking up credential", err)
	}

	if cred.Consumed() {
		return nil, domain.ErrAlreadyConsumed
	}

	hash := HashPassword(password)
	if cred.Username != username ||
		subtle.ConstantTimeCompare([]byte(hash), []byte(strings.ToLower(cred.PasswordHash))) != 1 {
		return nil, domain.ErrInvalidCredentials
	}

	if cred.DurationHours <= 0 {
		s.logger.WithField("credential_id", cred.ID).Error("credential has no valid duration")
		return nil, domain.ErrInvalidConfiguration
	}

	token, err := s.newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	usedAt := s.clock()
	expiresAt := usedAt.Add(time.Duration(cred.DurationHours) * time.Hour)

	if err := s.store.ConsumeCredential(ctx, cred.ID, usedAt, token, expiresAt); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyConsumed), errors.Is(err, domain.ErrNotFound):
			return nil, err
		default:
			return nil, storeError("consuming credential", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"credential_id": cred.ID,
		"expires_at":    expiresAt.Format(time.RFC3339),
	}).Info("credential consumed")

	return &SessionResult{
		CredentialID: cred.ID,
		Token:        token,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AccessService) newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Validate reports whether token is an active session. It never mutates
// the store and never fails: store errors are logged and reported as
// inactive.
func (s *AccessService) Validate(ctx context.Context, token string) ValidationResult {
	if token == "" {
		return ValidationResult{Reason: ReasonMissingToken}
	}

	cred, err := s.store.GetCredentialBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ValidationResult{Reason: ReasonUnknownToken}
		}
		s.logger.WithError(err).Warn("session validation failed closed")
		return ValidationResult{Reason: ReasonStoreError}
	}

	if cred.SessionExpiresAt == nil || cred.SessionExpiresAt.Before(s.clock()) {
		return ValidationResult{Reason: ReasonExpired}
	}

	expiresAt := cred.SessionExpiresAt.UTC()
	return ValidationResult{Active: true, ExpiresAt: &expiresAt}
}

func checkInput(in validation.CredentialInput) error {
	missing, errs := validation.CheckCredential(in)
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingFields, strings.Join(missing, ", "))
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Issue creates a new unconsumed credential.
func (s *AccessService) Issue(ctx context.Context, username, password string, durationHours int) (*domain.AccessCredential, error) {
	if err := checkInput(validation.CredentialInput{
		Username:      username,
		Password:      password,
		DurationHours: durationHours,
	}); err != nil {
		return nil, err
	}

	now := s.clock()
	cred := &domain.AccessCredential{
		ID:            uuid.NewString(),
		Username:      username,
		PasswordHash:  HashPassword(password),
		DurationHours: durationHours,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateCredential(ctx, cred); err != nil {
		return nil, storeError("creating credential", err)
	}

	s.logger.WithFields(logrus.Fields{
		"credential_id":  cred.ID,
		"duration_hours": durationHours,
	}).Info("credential issued")

	return cred, nil
}

// Update overwrites username, password and duration of a credential.
// An empty password keeps the stored hash. Consumed credentials are
// updated like any other; last write wins.
func (s *AccessService) Update(ctx context.Context, id, username, password string, durationHours int) (*domain.AccessCredential, error) {
	if err := checkInput(validation.CredentialInput{
		Username:         username,
		Password:         password,
		DurationHours:    durationHours,
		PasswordOptional: true,
	}); err != nil {
		return nil, err
	}

	cred, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cred.Username = username
	if password != "" {
		cred.PasswordHash = HashPassword(password)
	}
	cred.DurationHours = durationHours
	cred.UpdatedAt = s.clock()

	if err := s.store.UpdateCredential(ctx, cred); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, storeError("updating credential", err)
	}

	s.logger.WithField("credential_id", id).Info("credential updated")
	return cred, nil
}

// Revoke deletes a credential, ending any session it issued.
func (s *AccessService) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingFields
	}
	if err := s.store.DeleteCredential(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return storeError("deleting credential", err)
	}
	s.logger.WithField("credential_id", id).Info("credential revoked")
	return nil
}

// Get returns a credential by ID.
func (s *AccessService) Get(ctx context.Context, id string) (*domain.AccessCredential, error) {
	if id == "" {
		return nil, domain.ErrMissingFields
	}
	cred, err := s.store.GetCredential(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, storeError("loading credential", err)
	}
	return cred, nil
}

// List returns all credentials, newest first.
func (s *AccessService) List(ctx context.Context) ([]*domain.AccessCredential, error) {
	creds, err := s.store.ListCredentials(ctx)
	if err != nil {
		return nil, storeError("listing credentials", err)
	}
	return creds, nil
}
