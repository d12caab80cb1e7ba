package sql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bcnelson/passgate/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New connects to the database and runs migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db.DB, driver); err != nil {
		db.Close()
		return nil, err
	}

	return NewWithDB(db, driver), nil
}

// NewWithDB wraps an already migrated connection.
func NewWithDB(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================
// API Keys
// ============================================

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, created_at, last_used_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt, key.LastUsedAt)
	return wrapUniqueError(err)
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	var key domain.APIKey
	err := s.db.GetContext(ctx, &key,
		`SELECT id, name, key_hash, key_prefix, created_at, last_used_at FROM api_keys WHERE key_hash = $1`, keyHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	var keys []*domain.APIKey
	err := s.db.SelectContext(ctx, &keys,
		`SELECT id, name, key_hash, key_prefix, created_at, last_used_at FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	return err
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM api_keys`)
	return count, err
}

// ============================================
// Access Credentials
// ============================================

const credentialColumns = `id, username, password_hash, duration_hours, used_at, session_token,
	session_expires_at, created_at, updated_at`

func (s *Store) CreateCredential(ctx context.Context, cred *domain.AccessCredential) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO access_credentials (`+credentialColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		cred.ID, cred.Username, cred.PasswordHash, cred.DurationHours, cred.UsedAt,
		cred.SessionToken, cred.SessionExpiresAt, cred.CreatedAt, cred.UpdatedAt)
	return wrapUniqueError(err)
}

func (s *Store) getCredential(ctx context.Context, query string, arg any) (*domain.AccessCredential, error) {
	var cred domain.AccessCredential
	err := s.db.GetContext(ctx, &cred, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeCredential(&cred)
	return &cred, nil
}

func (s *Store) GetCredential(ctx context.Context, id string) (*domain.AccessCredential, error) {
	return s.getCredential(ctx,
		`SELECT `+credentialColumns+` FROM access_credentials WHERE id = $1`, id)
}

func (s *Store) GetCredentialByUsername(ctx context.Context, username string) (*domain.AccessCredential, error) {
	return s.getCredential(ctx,
		`SELECT `+credentialColumns+` FROM access_credentials WHERE username = $1
		 ORDER BY CASE WHEN used_at IS NULL THEN 0 ELSE 1 END, created_at DESC
		 LIMIT 1`, username)
}

func (s *Store) GetCredentialBySessionToken(ctx context.Context, token string) (*domain.AccessCredential, error) {
	return s.getCredential(ctx,
		`SELECT `+credentialColumns+` FROM access_credentials WHERE session_token = $1`, token)
}

func (s *Store) ListCredentials(ctx context.Context) ([]*domain.AccessCredential, error) {
	var creds []*domain.AccessCredential
	err := s.db.SelectContext(ctx, &creds,
		`SELECT `+credentialColumns+` FROM access_credentials ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	for _, cred := range creds {
		normalizeCredential(cred)
	}
	return creds, nil
}

func (s *Store) UpdateCredential(ctx context.Context, cred *domain.AccessCredential) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE access_credentials SET username = $1, password_hash = $2, duration_hours = $3, updated_at = $4
		 WHERE id = $5`,
		cred.Username, cred.PasswordHash, cred.DurationHours, cred.UpdatedAt, cred.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ConsumeCredential(ctx context.Context, id string, usedAt time.Time, token string, expiresAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE access_credentials
		 SET used_at = $1, session_token = $2, session_expires_at = $3, updated_at = $1
		 WHERE id = $4 AND used_at IS NULL`,
		usedAt, token, expiresAt, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	// Lost the race or the record is gone; tell the two apart.
	var exists int
	err = s.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM access_credentials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyConsumed
}

func (s *Store) DeleteCredential(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM access_credentials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// normalizeCredential puts every timestamp in UTC; drivers differ in the
// location they attach to TIMESTAMP columns.
func normalizeCredential(cred *domain.AccessCredential) {
	cred.CreatedAt = cred.CreatedAt.UTC()
	cred.UpdatedAt = cred.UpdatedAt.UTC()
	if cred.UsedAt != nil {
		t := cred.UsedAt.UTC()
		cred.UsedAt = &t
	}
	if cred.SessionExpiresAt != nil {
		t := cred.SessionExpiresAt.UTC()
		cred.SessionExpiresAt = &t
	}
}
