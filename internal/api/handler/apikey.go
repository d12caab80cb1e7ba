package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/bcnelson/passgate/internal/api/middleware"
	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// APIKeyHandler handles API key endpoints.
type APIKeyHandler struct {
	store  storage.Storage
	logger logrus.FieldLogger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(store storage.Storage, logger logrus.FieldLogger) *APIKeyHandler {
	return &APIKeyHandler{store: store, logger: logger}
}

// Create creates a new API key. The key itself is only returned here.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAPIKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondValidationError(w, "name", req.Name, "name is required")
		return
	}

	key, hash, prefix, err := generateAPIKey()
	if err != nil {
		h.logger.WithError(err).Error("generating API key")
		respondError(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	apiKey := &domain.APIKey{
		ID:        generateID(),
		Name:      req.Name,
		KeyHash:   hash,
		KeyPrefix: prefix,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := h.store.CreateAPIKey(r.Context(), apiKey); err != nil {
		handleError(w, err)
		return
	}

	entry := h.logger.WithField("api_key_id", apiKey.ID)
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		entry = entry.WithField("admin_id", p.ID)
	}
	entry.Info("API key created")

	respondJSON(w, http.StatusCreated, &domain.CreateAPIKeyResponse{
		ID:        apiKey.ID,
		Name:      apiKey.Name,
		Key:       key,
		KeyPrefix: apiKey.KeyPrefix,
		CreatedAt: apiKey.CreatedAt,
	})
}

// List lists all API keys (without the actual key values).
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAPIKeys(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, keys)
}

// Delete deletes an API key.
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.DeleteAPIKey(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	h.logger.WithField("api_key_id", id).Info("API key deleted")
	w.WriteHeader(http.StatusNoContent)
}
