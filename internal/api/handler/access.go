package handler

import (
	"errors"
	"net/http"

	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/service"
	"github.com/sirupsen/logrus"
)

// AccessHandler serves the public login and validate endpoints.
type AccessHandler struct {
	service *service.AccessService
	logger  logrus.FieldLogger
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(svc *service.AccessService, logger logrus.FieldLogger) *AccessHandler {
	return &AccessHandler{service: svc, logger: logger}
}

// Login exchanges a one-time credential for a session token.
func (h *AccessHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondAccessError(w, http.StatusBadRequest, domain.ErrCodeMissingFields, "username and password are required")
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondLoginError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// respondLoginError maps service errors to the public error body. An
// unknown username is reported exactly like a wrong password.
func (h *AccessHandler) respondLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		respondAccessError(w, http.StatusBadRequest, domain.ErrCodeMissingFields, "username and password are required")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidCredentials):
		respondAccessError(w, http.StatusUnauthorized, domain.ErrCodeInvalidCredentials, "invalid username or password")
	case errors.Is(err, domain.ErrAlreadyConsumed):
		respondAccessError(w, http.StatusGone, domain.ErrCodeAlreadyConsumed, "credential has already been used")
	case errors.Is(err, domain.ErrInvalidConfiguration):
		respondAccessError(w, http.StatusInternalServerError, domain.ErrCodeInvalidConfiguration, "credential is misconfigured")
	default:
		h.logger.WithError(err).Error("login failed")
		respondAccessError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, "internal server error")
	}
}

// Validate reports whether a session token is active. It always answers 200.
func (h *AccessHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		req.Token = ""
	}

	result := h.service.Validate(r.Context(), req.Token)
	if !result.Active {
		h.logger.WithField("reason", result.Reason).Debug("inactive session token")
	}

	respondJSON(w, http.StatusOK, &domain.ValidateResponse{
		Active:    result.Active,
		ExpiresAt: result.ExpiresAt,
	})
}
