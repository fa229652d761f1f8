// Package services provides business logic and application services.
// Services coordinate between handlers and the storage layers.
//
// The services layer is responsible for:
//   - OAuth 2.0 login with Twitch
//   - Server-side session creation, lookup, and destruction
//   - The favorites toggle and the per-user song list
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/pkg/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// providerTimeout bounds every outbound call to the identity provider.
const providerTimeout = 10 * time.Second

// UserDatabase defines the user persistence the OAuth flow needs.
type UserDatabase interface {
	UpsertUser(ctx context.Context, id, login, displayName string) (*models.User, error)
}

// OAuthService handles the Twitch OAuth 2.0 authorization-code flow:
// authorization URL generation, code exchange, profile retrieval, and the
// user upsert. Nothing in the flow is retried; a failure ends the attempt.
type OAuthService struct {
	config     *oauth2.Config
	profileURL string
	httpClient *http.Client
	db         UserDatabase
}

// TwitchUser is one entry of the Helix users response.
//
// JSON response example:
//
//	{
//	  "data": [
//	    {"id": "141981764", "login": "twitchdev", "display_name": "TwitchDev"}
//	  ]
//	}
type TwitchUser struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type twitchUsersResponse struct {
	Data []TwitchUser `json:"data"`
}

// NewOAuthService creates a new OAuth service. Endpoints come from
// configuration so tests can point them at a local server.
//
// Parameters:
//   - cfg: client credentials, redirect URL, endpoints and scopes
//   - db: user store used for the upsert
//
// Example:
//
//	oauthSvc := services.NewOAuthService(&cfg.OAuth, sqlDB)
func NewOAuthService(cfg *config.OAuthConfig, db UserDatabase) *OAuthService {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &OAuthService{
		config:     oauthConfig,
		profileURL: cfg.ProfileURL,
		httpClient: &http.Client{Timeout: providerTimeout},
		db:         db,
	}
}

// AuthURL returns the provider authorization URL for state.
//
// Example:
//
//	authURL := oauthSvc.AuthURL(state)
//	// https://id.twitch.tv/oauth2/authorize?client_id=...&redirect_uri=...&response_type=code&scope=user%3Aread%3Aemail&state=...
func (s *OAuthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token. Any
// failure wraps ErrExchange.
func (s *OAuthService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrExchange)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to exchange authorization code")
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return token, nil
}

// FetchProfile retrieves the profile for an access token from the Helix
// users endpoint. Helix requires the Client-Id header next to the bearer
// token. Any failure, including an empty user list, wraps ErrProfileFetch.
func (s *OAuthService) FetchProfile(ctx context.Context, token *oauth2.Token) (*TwitchUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Client-Id", s.config.ClientID)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch user profile from provider")
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("Provider rejected profile request")
		return nil, fmt.Errorf("%w: status %d", ErrProfileFetch, resp.StatusCode)
	}

	var body twitchUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error().Err(err).Msg("Failed to decode user profile")
		return nil, fmt.Errorf("%w: decode: %v", ErrProfileFetch, err)
	}

	if len(body.Data) == 0 || body.Data[0].ID == "" {
		return nil, fmt.Errorf("%w: empty profile", ErrProfileFetch)
	}

	profile := body.Data[0]
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Login
	}
	return &profile, nil
}

// AuthenticateUser runs the complete exchange:
//  1. Exchange the authorization code for a token
//  2. Fetch the provider profile
//  3. Upsert the user (an existing row is kept as is)
//
// The returned user carries the freshly fetched login and display name.
//
// Example:
//
//	user, err := oauthSvc.AuthenticateUser(ctx, r.URL.Query().Get("code"))
//	if err != nil {
//	    http.Error(w, "Authentication failed", http.StatusUnauthorized)
//	    return
//	}
func (s *OAuthService) AuthenticateUser(ctx context.Context, code string) (*models.User, error) {
	token, err := s.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.db.UpsertUser(ctx, profile.ID, profile.Login, profile.DisplayName)
	if err != nil {
		log.Error().
			Err(err).
			Str("provider_id", profile.ID).
			Msg("Failed to upsert user")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	user.Login = profile.Login
	user.DisplayName = profile.DisplayName

	log.Info().
		Str("user_id", user.ID).
		Str("login", user.Login).
		Msg("User authenticated successfully")

	return user, nil
}
