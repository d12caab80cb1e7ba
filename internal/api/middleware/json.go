package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/bcnelson/passgate/internal/domain"
)

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&domain.APIError{Code: status, Message: message})
}
