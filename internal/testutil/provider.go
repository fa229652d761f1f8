package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ieraasyl/FavoritesService/pkg/config"
)

// Fake provider credentials.
const (
	ProviderClientID     = "test-client-id"
	ProviderClientSecret = "test-client-secret"
)

// ProviderProfile is the profile the fake provider returns for a code.
type ProviderProfile struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// FakeProvider simulates the Twitch token and Helix users endpoints.
// Each registered authorization code maps to one profile.
type FakeProvider struct {
	Server *httptest.Server

	mu          sync.Mutex
	profiles    map[string]ProviderProfile
	profileCode int32 // HTTP status forced on the users endpoint, 0 for normal
	tokenCalls  atomic.Int32
	userCalls   atomic.Int32
}

// NewFakeProvider starts a fake provider that is shut down with the test.
func NewFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()

	p := &FakeProvider{profiles: make(map[string]ProviderProfile)}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", p.handleToken)
	mux.HandleFunc("/helix/users", p.handleUsers)

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)

	return p
}

// AddCode registers an authorization code that exchanges for profile.
func (p *FakeProvider) AddCode(code string, profile ProviderProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[code] = profile
}

// FailProfile forces the users endpoint to answer with status.
func (p *FakeProvider) FailProfile(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileCode = int32(status)
}

// TokenCalls returns how many token requests were received.
func (p *FakeProvider) TokenCalls() int {
	return int(p.tokenCalls.Load())
}

// UserCalls returns how many profile requests were received.
func (p *FakeProvider) UserCalls() int {
	return int(p.userCalls.Load())
}

// OAuthConfig returns provider configuration pointing at the fake server.
func (p *FakeProvider) OAuthConfig() config.OAuthConfig {
	return config.OAuthConfig{
		ClientID:     ProviderClientID,
		ClientSecret: ProviderClientSecret,
		RedirectURL:  "http://localhost:8080/auth/twitch/callback",
		AuthURL:      p.Server.URL + "/oauth2/authorize",
		TokenURL:     p.Server.URL + "/oauth2/token",
		ProfileURL:   p.Server.URL + "/helix/users",
		Scopes:       []string{"user:read:email"},
	}
}

func (p *FakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	p.tokenCalls.Add(1)

	if r.Method != http.MethodPost || r.ParseForm() != nil {
		writeProviderError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if r.FormValue("client_id") != ProviderClientID || r.FormValue("client_secret") != ProviderClientSecret {
		writeProviderError(w, http.StatusUnauthorized, "invalid_client")
		return
	}
	if r.FormValue("grant_type") != "authorization_code" {
		writeProviderError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	code := r.FormValue("code")
	p.mu.Lock()
	_, ok := p.profiles[code]
	p.mu.Unlock()
	if !ok {
		writeProviderError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  "access-" + code,
		"refresh_token": "refresh-" + code,
		"token_type":    "bearer",
		"expires_in":    3600,
	})
}

func (p *FakeProvider) handleUsers(w http.ResponseWriter, r *http.Request) {
	p.userCalls.Add(1)

	p.mu.Lock()
	forced := p.profileCode
	p.mu.Unlock()
	if forced != 0 {
		writeProviderError(w, int(forced), "forced")
		return
	}

	if r.Header.Get("Client-Id") != ProviderClientID {
		writeProviderError(w, http.StatusUnauthorized, "missing client id")
		return
	}

	code, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer access-")
	if !ok {
		writeProviderError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	p.mu.Lock()
	profile, ok := p.profiles[code]
	p.mu.Unlock()
	if !ok {
		writeProviderError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": []ProviderProfile{profile},
	})
}

func writeProviderError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}
