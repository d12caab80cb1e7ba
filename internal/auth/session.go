package auth

import (
	"fmt"
	"net/http"
	"time"
)

// AdminSessionCookieName is the name of the administrator session cookie.
const AdminSessionCookieName = "passgate_admin_session"

// SessionManager handles encrypted administrator session cookies.
type SessionManager struct {
	codec    *cookieCodec
	duration time.Duration
	now      func() time.Time
}

// AdminSession is the data stored in the encrypted cookie.
type AdminSession struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionManager creates a session manager. The key must be exactly
// 32 bytes for AES-256.
func NewSessionManager(key []byte, duration time.Duration, secure bool) (*SessionManager, error) {
	codec, err := newCookieCodec(key, AdminSessionCookieName, secure)
	if err != nil {
		return nil, err
	}
	return &SessionManager{codec: codec, duration: duration, now: time.Now}, nil
}

// Create stamps the session and writes it as a cookie.
func (sm *SessionManager) Create(w http.ResponseWriter, session *AdminSession) error {
	session.CreatedAt = sm.now().UTC()
	session.ExpiresAt = session.CreatedAt.Add(sm.duration)
	return sm.codec.write(w, session, sm.duration)
}

// Get retrieves and validates the session from the request.
func (sm *SessionManager) Get(r *http.Request) (*AdminSession, error) {
	var session AdminSession
	if err := sm.codec.read(r, &session); err != nil {
		return nil, err
	}
	if sm.now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}
	return &session, nil
}

// Clear clears the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	sm.codec.clear(w)
}
