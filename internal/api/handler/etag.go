package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bcnelson/passgate/internal/domain"
)

// ETaggable is an interface for resources that can generate ETags.
type ETaggable interface {
	GetID() string
	GetUpdatedAt() time.Time
}

// GenerateETag generates an ETag for a resource based on its ID and updated_at timestamp.
// Format: "<resource_type>-<id>-<updated_at_unix_nano>"
func GenerateETag(resourceType string, res ETaggable) string {
	return fmt.Sprintf(`"%s-%s-%d"`, resourceType, res.GetID(), res.GetUpdatedAt().UnixNano())
}

// SetETagHeader sets the ETag header on the response.
func SetETagHeader(w http.ResponseWriter, resourceType string, res ETaggable) {
	w.Header().Set("ETag", GenerateETag(resourceType, res))
}

// CheckIfMatch checks if the If-Match header matches the current ETag.
// A missing header always matches; ETag checking is optional.
func CheckIfMatch(r *http.Request, resourceType string, res ETaggable) bool {
	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	return ifMatch == GenerateETag(resourceType, res)
}

// RespondPreconditionFailed writes a 412 Precondition Failed response.
func RespondPreconditionFailed(w http.ResponseWriter, resourceType string, res ETaggable) {
	respondStandardError(w, http.StatusPreconditionFailed, domain.ErrCodePreconditionFailed,
		"resource has been modified", "", map[string]any{
			"currentETag": GenerateETag(resourceType, res),
		})
}

const credentialResource = "credential"

// SetCredentialETag sets the ETag of an access credential.
func SetCredentialETag(w http.ResponseWriter, cred *domain.AccessCredential) {
	SetETagHeader(w, credentialResource, cred)
}

// CheckCredentialIfMatch checks If-Match against an access credential.
func CheckCredentialIfMatch(r *http.Request, cred *domain.AccessCredential) bool {
	return CheckIfMatch(r, credentialResource, cred)
}
