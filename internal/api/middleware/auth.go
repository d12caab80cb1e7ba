package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/bcnelson/passgate/internal/auth"
	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/storage"
	"github.com/sirupsen/logrus"
)

type contextKey string

const PrincipalContextKey contextKey = "admin_principal"

// AdminAuth guards administrative routes. A request is let through with a
// bearer API key, the bootstrap key while no API keys exist, or a valid
// OIDC admin session cookie when sessions is non-nil.
func AdminAuth(store storage.Storage, bootstrapKey string, sessions *auth.SessionManager, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if authHeader == "" {
				if sessions != nil {
					if session, err := sessions.Get(r); err == nil {
						principal := &domain.AdminPrincipal{
							Kind:  domain.PrincipalOIDC,
							ID:    session.Subject,
							Name:  session.Name,
							Email: session.Email,
						}
						next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
						return
					}
				}
				unauthorized(w, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			apiKey := strings.TrimPrefix(authHeader, "Bearer ")
			if apiKey == "" {
				unauthorized(w, "empty API key")
				return
			}

			ctx := r.Context()

			keyCount, err := store.CountAPIKeys(ctx)
			if err != nil {
				logger.WithError(err).Error("counting API keys")
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if keyCount == 0 && bootstrapKey != "" &&
				subtle.ConstantTimeCompare([]byte(apiKey), []byte(bootstrapKey)) == 1 {
				principal := &domain.AdminPrincipal{
					Kind: domain.PrincipalBootstrap,
					ID:   "bootstrap",
					Name: "Bootstrap Key",
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
				return
			}

			storedKey, err := store.GetAPIKeyByHash(ctx, HashAPIKey(apiKey))
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					unauthorized(w, "invalid API key")
					return
				}
				logger.WithError(err).Error("looking up API key")
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			// Fire and forget; the request must not wait on bookkeeping.
			go func(id string) {
				if err := store.UpdateAPIKeyLastUsed(context.Background(), id); err != nil {
					logger.WithError(err).WithField("api_key_id", id).Debug("updating API key last use")
				}
			}(storedKey.ID)

			principal := &domain.AdminPrincipal{
				Kind: domain.PrincipalAPIKey,
				ID:   storedKey.ID,
				Name: storedKey.Name,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, message)
}

// HashAPIKey creates a SHA-256 hash of the API key.
// API keys are high-entropy random strings, so a fast hash is enough.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// WithPrincipal stores the authenticated administrator in ctx.
func WithPrincipal(ctx context.Context, p *domain.AdminPrincipal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

// PrincipalFromContext retrieves the administrator from the request context.
func PrincipalFromContext(ctx context.Context) *domain.AdminPrincipal {
	p, _ := ctx.Value(PrincipalContextKey).(*domain.AdminPrincipal)
	return p
}
