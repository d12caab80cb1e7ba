package handler

import (
	"net/http"
	"time"

	"github.com/bcnelson/passgate/internal/auth"
	"github.com/sirupsen/logrus"
)

// OIDCHandler signs administrators in with an OpenID Connect provider.
type OIDCHandler struct {
	provider *auth.OIDCProvider
	states   *auth.StateStore
	sessions *auth.SessionManager
	logger   logrus.FieldLogger
}

// NewOIDCHandler creates a new OIDCHandler.
func NewOIDCHandler(provider *auth.OIDCProvider, states *auth.StateStore, sessions *auth.SessionManager, logger logrus.FieldLogger) *OIDCHandler {
	return &OIDCHandler{
		provider: provider,
		states:   states,
		sessions: sessions,
		logger:   logger,
	}
}

// AdminSessionResponse describes the signed-in administrator.
type AdminSessionResponse struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login redirects to the provider's authorization endpoint.
func (h *OIDCHandler) Login(w http.ResponseWriter, r *http.Request) {
	stateData, err := h.states.Generate(w)
	if err != nil {
		h.logger.WithError(err).Error("generating OIDC state")
		respondError(w, http.StatusInternalServerError, "failed to initiate login")
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(stateData.State, stateData.Nonce), http.StatusSeeOther)
}

// Callback completes the authorization code flow and sets the admin session.
func (h *OIDCHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		errDesc := query.Get("error_description")
		if errDesc == "" {
			errDesc = errParam
		}
		h.logger.WithField("error", errParam).Warn("OIDC provider returned error")
		respondError(w, http.StatusUnauthorized, errDesc)
		return
	}

	code := query.Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "no authorization code received")
		return
	}

	stateData, err := h.states.Validate(r, query.Get("state"))
	if err != nil {
		h.logger.WithError(err).Warn("OIDC state validation failed")
		respondError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}
	h.states.Clear(w)

	claims, err := h.provider.Exchange(r.Context(), code, stateData.Nonce)
	if err != nil {
		h.logger.WithError(err).Warn("OIDC token exchange failed")
		respondError(w, http.StatusUnauthorized, "failed to complete authentication")
		return
	}

	if err := h.provider.ValidateClaims(claims); err != nil {
		h.logger.WithError(err).WithField("email", claims.Email).Warn("OIDC claims rejected")
		respondError(w, http.StatusForbidden, err.Error())
		return
	}

	session := &auth.AdminSession{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}
	if err := h.sessions.Create(w, session); err != nil {
		h.logger.WithError(err).Error("creating admin session")
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.logger.WithField("email", claims.Email).Info("administrator signed in")

	respondJSON(w, http.StatusOK, &AdminSessionResponse{
		Subject:   session.Subject,
		Email:     session.Email,
		Name:      session.Name,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout clears the admin session cookie.
func (h *OIDCHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
