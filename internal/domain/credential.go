package domain

import "time"

// AccessCredential is a one-time username/password pair. It is consumed at
// most once; consumption sets UsedAt, SessionToken and SessionExpiresAt
// together.
type AccessCredential struct {
	ID               string     `json:"id" db:"id"`
	Username         string     `json:"username" db:"username"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	DurationHours    int        `json:"durationHours" db:"duration_hours"`
	UsedAt           *time.Time `json:"usedAt,omitempty" db:"used_at"`
	SessionToken     *string    `json:"-" db:"session_token"`
	SessionExpiresAt *time.Time `json:"sessionExpiresAt,omitempty" db:"session_expires_at"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// Consumed reports whether the credential has been exchanged for a session.
func (c *AccessCredential) Consumed() bool {
	return c.UsedAt != nil
}

// GetID returns the credential ID.
func (c *AccessCredential) GetID() string { return c.ID }

// GetUpdatedAt returns the last modification time.
func (c *AccessCredential) GetUpdatedAt() time.Time { return c.UpdatedAt }

// Clone returns a deep copy of the credential.
func (c *AccessCredential) Clone() *AccessCredential {
	out := *c
	if c.UsedAt != nil {
		t := *c.UsedAt
		out.UsedAt = &t
	}
	if c.SessionToken != nil {
		s := *c.SessionToken
		out.SessionToken = &s
	}
	if c.SessionExpiresAt != nil {
		t := *c.SessionExpiresAt
		out.SessionExpiresAt = &t
	}
	return &out
}

// IssueCredentialRequest is the request body for issuing a credential.
type IssueCredentialRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	DurationHours int    `json:"durationHours"`
}

// IssueCredentialResponse is returned when a credential is issued.
type IssueCredentialResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	DurationHours int       `json:"durationHours"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UpdateCredentialRequest is the request body for updating a credential.
// An empty password keeps the stored hash.
type UpdateCredentialRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	DurationHours int    `json:"durationHours"`
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session issued by a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidateRequest is the body of a validate call.
type ValidateRequest struct {
	Token string `json:"token"`
}

// ValidateResponse reports whether a session token is active.
type ValidateResponse struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
