package api_test

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bcnelson/passgate/internal/api"
	"github.com/bcnelson/passgate/internal/api/middleware"
	"github.com/bcnelson/passgate/internal/auth"
	"github.com/bcnelson/passgate/internal/domain"
	"github.com/bcnelson/passgate/internal/logging"
	"github.com/bcnelson/passgate/internal/service"
	"github.com/bcnelson/passgate/internal/storage/memory"
	"github.com/bcnelson/passgate/internal/storage/storagetest"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"golang.org/x/oauth2"
)

// testServer creates a test server with in-memory storage
type testServer struct {
	handler      http.Handler
	store        *memory.Store
	bootstrapKey string

	mu  sync.Mutex
	now time.Time
}

type serverOption func(*api.Options)

func withLimiter(perMinute, burst int) serverOption {
	return func(o *api.Options) {
		o.LoginLimiter = middleware.NewRateLimiter(perMinute, burst, time.Minute, o.Logger)
	}
}

func withOIDC(c *api.OIDCComponents) serverOption {
	return func(o *api.Options) { o.OIDC = c }
}

func newTestServer(opts ...serverOption) *testServer {
	ts := &testServer{
		store:        memory.New(),
		bootstrapKey: "test-bootstrap-key",
		now:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	logger := logging.Discard()
	svc := service.NewAccessService(ts.store, logger, service.WithClock(ts.clock))

	o := api.Options{
		Store:        ts.store,
		Service:      svc,
		Logger:       logger,
		BootstrapKey: ts.bootstrapKey,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ts.handler = api.NewRouter(o)
	return ts
}

func (ts *testServer) clock() time.Time {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.now
}

func (ts *testServer) advance(d time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.now = ts.now.Add(d)
}

func (ts *testServer) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
	default:
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) request(method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	return ts.do(method, path, body, header)
}

func (ts *testServer) issue(t *testing.T, username, password string, hours int) domain.IssueCredentialResponse {
	t.Helper()
	rr := ts.request("POST", "/api/v1/admin/credentials", domain.IssueCredentialRequest{
		Username:      username,
		Password:      password,
		DurationHours: hours,
	}, ts.bootstrapKey)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp domain.IssueCredentialResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	return resp
}

func (ts *testServer) login(username, password string) *httptest.ResponseRecorder {
	return ts.request("POST", "/api/v1/access/login", domain.LoginRequest{Username: username, Password: password}, "")
}

func (ts *testServer) validate(token string) domain.ValidateResponse {
	rr := ts.request("POST", "/api/v1/access/validate", domain.ValidateRequest{Token: token}, "")
	var resp domain.ValidateResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	return resp
}

func decodeAccessError(t *testing.T, rr *httptest.ResponseRecorder) domain.AccessError {
	t.Helper()
	var body domain.AccessError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/health", nil, "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer()

	// Request without auth header
	rr := ts.request("GET", "/api/v1/admin/credentials", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Request with invalid auth header format
	rr = ts.do("GET", "/api/v1/admin/credentials", nil, http.Header{"Authorization": {"Basic invalid"}})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Request with invalid API key
	rr = ts.request("GET", "/api/v1/admin/credentials", nil, "invalid-key")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Access endpoints stay public
	rr = ts.request("POST", "/api/v1/access/validate", domain.ValidateRequest{}, "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestBootstrapKeyAuth(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/api/v1/admin/credentials", nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bootstrap key, got %d", rr.Code)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	ts := newTestServer()

	// Create API key using bootstrap key
	createReq := domain.CreateAPIKeyRequest{Name: "Test Key"}
	rr := ts.request("POST", "/api/v1/keys", createReq, ts.bootstrapKey)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var createResp domain.CreateAPIKeyResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &createResp)
	if !strings.HasPrefix(createResp.Key, "pg_") {
		t.Errorf("Expected key with pg_ prefix, got %q", createResp.Key)
	}
	if !strings.HasPrefix(createResp.Key, createResp.KeyPrefix) {
		t.Errorf("Expected key prefix %q to prefix the key", createResp.KeyPrefix)
	}

	// Bootstrap key is disabled once a key exists
	rr = ts.request("GET", "/api/v1/admin/credentials", nil, ts.bootstrapKey)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for bootstrap key, got %d", rr.Code)
	}

	// Use the new API key
	rr = ts.request("GET", "/api/v1/admin/credentials", nil, createResp.Key)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 with new API key, got %d", rr.Code)
	}

	// List API keys
	rr = ts.request("GET", "/api/v1/keys", nil, createResp.Key)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var keys []*domain.APIKey
	_ = json.Unmarshal(rr.Body.Bytes(), &keys)
	if len(keys) != 1 {
		t.Errorf("Expected 1 key, got %d", len(keys))
	}
	if strings.Contains(rr.Body.String(), createResp.Key) {
		t.Error("Key list must not contain the raw key")
	}

	// Missing name
	rr = ts.request("POST", "/api/v1/keys", domain.CreateAPIKeyRequest{Name: "  "}, createResp.Key)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	// Delete API key
	rr = ts.request("DELETE", "/api/v1/keys/"+createResp.ID, nil, createResp.Key)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
}

func TestCredentialLifecycle(t *testing.T) {
	ts := newTestServer()

	issued := ts.issue(t, "guest-42", "s3cret", 24)
	if issued.ID == "" || issued.Username != "guest-42" || issued.DurationHours != 24 {
		t.Fatalf("Unexpected issue response: %+v", issued)
	}

	// Login
	rr := ts.login("guest-42", "s3cret")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var session domain.LoginResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &session)
	if len(session.Token) != 32 {
		t.Errorf("Expected 32 character token, got %q", session.Token)
	}
	if want := ts.clock().Add(24 * time.Hour); !session.ExpiresAt.Equal(want) {
		t.Errorf("Expected expiresAt %s, got %s", want, session.ExpiresAt)
	}

	// Validate
	v := ts.validate(session.Token)
	if !v.Active || v.ExpiresAt == nil || !v.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("Expected active session until %s, got %+v", session.ExpiresAt, v)
	}

	// Second login is refused
	rr = ts.login("guest-42", "s3cret")
	if rr.Code != http.StatusGone {
		t.Errorf("Expected status 410, got %d", rr.Code)
	}
	if body := decodeAccessError(t, rr); body.Code != domain.ErrCodeAlreadyConsumed {
		t.Errorf("Expected code %s, got %s", domain.ErrCodeAlreadyConsumed, body.Code)
	}

	// Admin view hides secrets
	rr = ts.request("GET", "/api/v1/admin/credentials/"+issued.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), session.Token) || strings.Contains(rr.Body.String(), "passwordHash") {
		t.Errorf("Credential response leaks secrets: %s", rr.Body.String())
	}
	if rr.Header().Get("ETag") == "" {
		t.Error("Expected ETag header")
	}

	// Revoke ends the session
	rr = ts.request("DELETE", "/api/v1/admin/credentials/"+issued.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	if v := ts.validate(session.Token); v.Active {
		t.Error("Expected session to be inactive after revoke")
	}

	rr = ts.request("GET", "/api/v1/admin/credentials/"+issued.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
	rr = ts.request("DELETE", "/api/v1/admin/credentials/"+issued.ID, nil, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestLoginErrors(t *testing.T) {
	ts := newTestServer()
	ts.issue(t, "guest", "right", 2)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"missing password", domain.LoginRequest{Username: "guest"}, http.StatusBadRequest, domain.ErrCodeMissingFields},
		{"missing username", domain.LoginRequest{Password: "right"}, http.StatusBadRequest, domain.ErrCodeMissingFields},
		{"malformed json", `{"username":`, http.StatusBadRequest, domain.ErrCodeMissingFields},
		{"unknown username", domain.LoginRequest{Username: "nobody", Password: "right"}, http.StatusUnauthorized, domain.ErrCodeInvalidCredentials},
		{"wrong password", domain.LoginRequest{Username: "guest", Password: "wrong"}, http.StatusUnauthorized, domain.ErrCodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request("POST", "/api/v1/access/login", tt.body, "")
			if rr.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rr.Code)
			}
			if body := decodeAccessError(t, rr); body.Code != tt.wantErr {
				t.Errorf("Expected code %s, got %s", tt.wantErr, body.Code)
			}
		})
	}

	// None of the failures consumed the credential
	if rr := ts.login("guest", "right"); rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 after failed attempts, got %d", rr.Code)
	}
}

func TestLoginInvalidConfiguration(t *testing.T) {
	ts := newTestServer()

	cred := storagetest.NewCredential("broken", ts.clock())
	cred.DurationHours = 0
	if err := ts.store.CreateCredential(context.Background(), cred); err != nil {
		t.Fatal(err)
	}

	rr := ts.login("broken", "test")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}
	if body := decodeAccessError(t, rr); body.Code != domain.ErrCodeInvalidConfiguration {
		t.Errorf("Expected code %s, got %s", domain.ErrCodeInvalidConfiguration, body.Code)
	}
}

func TestValidateExpiry(t *testing.T) {
	ts := newTestServer()
	ts.issue(t, "short", "pw", 1)

	rr := ts.login("short", "pw")
	var session domain.LoginResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &session)

	ts.advance(time.Hour)
	if v := ts.validate(session.Token); !v.Active {
		t.Error("Expected session to be active at exactly its expiry")
	}

	ts.advance(time.Second)
	v := ts.validate(session.Token)
	if v.Active || v.ExpiresAt != nil {
		t.Errorf("Expected inactive session without expiresAt, got %+v", v)
	}
}

func TestValidateAlways200(t *testing.T) {
	ts := newTestServer()

	for _, body := range []any{`not json`, domain.ValidateRequest{}, domain.ValidateRequest{Token: "deadbeef"}} {
		rr := ts.request("POST", "/api/v1/access/validate", body, "")
		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %v, got %d", body, rr.Code)
		}
		if strings.TrimSpace(rr.Body.String()) != `{"active":false}` {
			t.Errorf("Expected inactive body, got %s", rr.Body.String())
		}
	}
}

func TestIssueValidation(t *testing.T) {
	ts := newTestServer()

	tests := []struct {
		name string
		body any
	}{
		{"missing fields", domain.IssueCredentialRequest{Username: "a"}},
		{"duration too long", domain.IssueCredentialRequest{Username: "a", Password: "b", DurationHours: 9000}},
		{"negative duration", domain.IssueCredentialRequest{Username: "a", Password: "b", DurationHours: -1}},
		{"control characters", domain.IssueCredentialRequest{Username: "a\nb", Password: "b", DurationHours: 1}},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request("POST", "/api/v1/admin/credentials", tt.body, ts.bootstrapKey)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}

	rr := ts.request("GET", "/api/v1/admin/credentials", nil, ts.bootstrapKey)
	var creds []*domain.AccessCredential
	_ = json.Unmarshal(rr.Body.Bytes(), &creds)
	if len(creds) != 0 {
		t.Errorf("Expected no credentials, got %d", len(creds))
	}
}

func TestCredentialUpdateIfMatch(t *testing.T) {
	ts := newTestServer()
	issued := ts.issue(t, "before", "pw", 4)
	path := "/api/v1/admin/credentials/" + issued.ID

	rr := ts.request("GET", path, nil, ts.bootstrapKey)
	etag := rr.Header().Get("ETag")

	ts.advance(time.Minute)
	update := domain.UpdateCredentialRequest{Username: "after", DurationHours: 8}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+ts.bootstrapKey)
	header.Set("If-Match", etag)
	rr = ts.do("PUT", path, update, header)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("ETag") == etag {
		t.Error("Expected ETag to change after update")
	}

	// Stale ETag
	stale := domain.UpdateCredentialRequest{Username: "stale", DurationHours: 1}
	rr = ts.do("PUT", path, stale, header)
	if rr.Code != http.StatusPreconditionFailed {
		t.Errorf("Expected status 412, got %d", rr.Code)
	}

	var cred domain.AccessCredential
	rr = ts.request("GET", path, nil, ts.bootstrapKey)
	_ = json.Unmarshal(rr.Body.Bytes(), &cred)
	if cred.Username != "after" || cred.DurationHours != 8 {
		t.Errorf("Expected record unchanged by stale update, got %+v", cred)
	}

	// Empty password kept the original hash
	if rr := ts.login("after", "pw"); rr.Code != http.StatusOK {
		t.Errorf("Expected login with original password, got %d", rr.Code)
	}

	rr = ts.request("PUT", "/api/v1/admin/credentials/missing", update, ts.bootstrapKey)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestServer(withLimiter(1, 2))

	for i := 0; i < 2; i++ {
		if rr := ts.login("nobody", "pw"); rr.Code != http.StatusUnauthorized {
			t.Fatalf("Attempt %d: expected status 401, got %d", i+1, rr.Code)
		}
	}

	rr := ts.login("nobody", "pw")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rr.Code)
	}
	if body := decodeAccessError(t, rr); body.Code != domain.ErrCodeRateLimited {
		t.Errorf("Expected code %s, got %s", domain.ErrCodeRateLimited, body.Code)
	}

	// Validate is never throttled
	if rr := ts.request("POST", "/api/v1/access/validate", domain.ValidateRequest{}, ""); rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestConcurrentLogin(t *testing.T) {
	ts := newTestServer()
	ts.issue(t, "race", "pw", 1)

	const attempts = 12
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- ts.login("race", "pw").Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for code := range codes {
		counts[code]++
	}
	if counts[http.StatusOK] != 1 || counts[http.StatusGone] != attempts-1 {
		t.Errorf("Expected one 200 and %d 410s, got %v", attempts-1, counts)
	}
}

func signIDToken(key *rsa.PrivateKey, claims map[string]any) (string, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	obj, err := signer.Sign(payload)
	if err != nil {
		return "", err
	}
	return obj.CompactSerialize()
}

// cookieHeader renders cookies the way a browser sends them back.
func cookieHeader(cookies ...*http.Cookie) http.Header {
	header := http.Header{}
	for _, c := range cookies {
		header.Add("Cookie", (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	return header
}

func TestOIDCAdminSession(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	var (
		mu    sync.Mutex
		nonce string
	)
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n := nonce
		mu.Unlock()

		now := time.Now()
		idToken, err := signIDToken(key, map[string]any{
			"iss":   "https://id.example.com",
			"aud":   "passgate",
			"sub":   "admin-1",
			"email": "ops@example.com",
			"name":  "Ops",
			"nonce": n,
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	}))
	defer idp.Close()

	secret := []byte(strings.Repeat("s", 32))
	states, _ := auth.NewStateStore(secret, false)
	sessions, _ := auth.NewSessionManager(secret, time.Hour, false)
	verifier := oidc.NewVerifier("https://id.example.com",
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		&oidc.Config{ClientID: "passgate"})
	provider := auth.NewOIDCProviderWith(&oauth2.Config{
		ClientID:     "passgate",
		ClientSecret: "secret",
		RedirectURL:  "http://passgate.test/auth/oidc/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: idp.URL + "/authorize", TokenURL: idp.URL + "/token"},
		Scopes:       []string{"openid", "email"},
	}, verifier, []string{"example.com"})

	ts := newTestServer(withOIDC(&api.OIDCComponents{Provider: provider, States: states, Sessions: sessions}))

	// Start the flow
	rr := ts.request("GET", "/auth/oidc/login", nil, "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rr.Code)
	}
	location, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	nonce = location.Query().Get("nonce")
	mu.Unlock()
	state := location.Query().Get("state")

	// Forged state is rejected
	header := cookieHeader(rr.Result().Cookies()...)
	if rr := ts.do("GET", "/auth/oidc/callback?code=abc&state=forged", nil, header); rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for forged state, got %d", rr.Code)
	}

	// Complete the flow
	rr = ts.do("GET", "/auth/oidc/callback?code=abc&state="+url.QueryEscape(state), nil, header)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.AdminSessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("Expected admin session cookie")
	}

	// The session authorizes admin routes
	admin := cookieHeader(sessionCookie)
	rr = ts.do("POST", "/api/v1/admin/credentials", domain.IssueCredentialRequest{Username: "sso", Password: "pw", DurationHours: 1}, admin)
	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201 with admin session, got %d", rr.Code)
	}

	// Logout clears it
	rr = ts.do("POST", "/auth/logout", nil, admin)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	cleared := rr.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Expected session cookie to be cleared, got %v", cleared)
	}
}

func TestOIDCDisabled(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/auth/oidc/login", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}
