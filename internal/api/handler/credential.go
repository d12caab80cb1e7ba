package handler

import (
	"net/http"

	"github.com/bcnelson/passgate/internal/api/middleware"
	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// CredentialHandler handles the administrative credential endpoints.
type CredentialHandler struct {
	service *service.AccessService
	logger  logrus.FieldLogger
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(svc *service.AccessService, logger logrus.FieldLogger) *CredentialHandler {
	return &CredentialHandler{service: svc, logger: logger}
}

func (h *CredentialHandler) audit(r *http.Request, credentialID string) *logrus.Entry {
	entry := h.logger.WithField("credential_id", credentialID)
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		entry = entry.WithFields(logrus.Fields{
			"admin_kind": p.Kind,
			"admin_id":   p.ID,
		})
	}
	return entry
}

// Create issues a new credential.
func (h *CredentialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueCredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred, err := h.service.Issue(r.Context(), req.Username, req.Password, req.DurationHours)
	if err != nil {
		handleError(w, err)
		return
	}

	h.audit(r, cred.ID).Info("admin issued credential")

	SetCredentialETag(w, cred)
	respondJSON(w, http.StatusCreated, &domain.IssueCredentialResponse{
		ID:            cred.ID,
		Username:      cred.Username,
		DurationHours: cred.DurationHours,
		CreatedAt:     cred.CreatedAt,
	})
}

// List lists all credentials, newest first.
func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	creds, err := h.service.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, creds)
}

// Get returns a single credential.
func (h *CredentialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	cred, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	SetCredentialETag(w, cred)
	respondJSON(w, http.StatusOK, cred)
}

// Update replaces username, password and duration of a credential.
func (h *CredentialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req domain.UpdateCredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if !CheckCredentialIfMatch(r, current) {
		RespondPreconditionFailed(w, credentialResource, current)
		return
	}

	cred, err := h.service.Update(r.Context(), id, req.Username, req.Password, req.DurationHours)
	if err != nil {
		handleError(w, err)
		return
	}

	h.audit(r, id).Info("admin updated credential")

	SetCredentialETag(w, cred)
	respondJSON(w, http.StatusOK, cred)
}

// Delete revokes a credential and any session it issued.
func (h *CredentialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.service.Revoke(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	h.audit(r, id).Info("admin revoked credential")
	w.WriteHeader(http.StatusNoContent)
}
