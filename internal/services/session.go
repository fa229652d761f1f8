package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ieraasyl/FavoritesService/internal/database"
	"github.com/ieraasyl/FavoritesService/internal/models"
	"github.com/ieraasyl/FavoritesService/pkg/config"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"
)

// SessionStore is the key-value backend for session records. RedisDB and
// MemorySessionStore both implement it.
type SessionStore interface {
	SetSession(ctx context.Context, sessionID string, fields map[string]string, expiry time.Duration) error
	GetSession(ctx context.Context, sessionID string) (map[string]string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Session record fields.
const (
	fieldUserID      = "user_id"
	fieldLogin       = "login"
	fieldDisplayName = "display_name"
	fieldDeviceInfo  = "device_info"
	fieldIPAddress   = "ip_address"
	fieldCreatedAt   = "created_at"
)

// SessionService manages server-side sessions. The browser holds a signed
// token naming the session; the record itself (user id, display name,
// device, IP) lives in the configured store and expires with it.
type SessionService struct {
	store  SessionStore
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSessionService creates a session service over store.
//
// Parameters:
//   - store: session backend (RedisDB or MemorySessionStore)
//   - cfg: signing secret and session lifetime
//
// Example:
//
//	sessionSvc := services.NewSessionService(database.NewMemorySessionStore(), &cfg.Session)
func NewSessionService(store SessionStore, cfg *config.SessionConfig) *SessionService {
	return &SessionService{
		store:  store,
		secret: cfg.Secret,
		expiry: cfg.Expiry,
		now:    time.Now,
	}
}

// CreateSession stores a new session record for user and returns the token
// to place in the session cookie together with its expiry.
//
// Example:
//
//	token, expiresAt, err := sessionSvc.CreateSession(ctx, user,
//	    services.ExtractDeviceInfo(r.UserAgent()), utils.ExtractClientIP(r))
func (s *SessionService) CreateSession(ctx context.Context, user *models.User, deviceInfo, ipAddress string) (string, time.Time, error) {
	sessionID := uuid.New().String()
	now := s.now()
	expiresAt := now.Add(s.expiry)

	fields := map[string]string{
		fieldUserID:      user.ID,
		fieldLogin:       user.Login,
		fieldDisplayName: user.DisplayName,
		fieldDeviceInfo:  deviceInfo,
		fieldIPAddress:   ipAddress,
		fieldCreatedAt:   strconv.FormatInt(now.Unix(), 10),
	}

	if err := s.store.SetSession(ctx, sessionID, fields, s.expiry); err != nil {
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("Failed to create session")
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	token, err := signSessionToken(s.secret, sessionID, user.ID, now, expiresAt)
	if err != nil {
		// Do not leave an orphaned record behind an unusable token.
		_ = s.store.DeleteSession(ctx, sessionID)
		return "", time.Time{}, err
	}

	log.Info().
		Str("user_id", user.ID).
		Str("session_id", sessionID).
		Str("device", deviceInfo).
		Msg("Session created successfully")

	return token, expiresAt, nil
}

// ResolveSession validates a session token and loads its record.
// Returns ErrSessionNotFound for a bad or expired token, a missing record,
// or a record that belongs to another user. Store failures wrap
// ErrPersistence.
func (s *SessionService) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	claims, err := parseSessionToken(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	fields, err := s.store.GetSession(ctx, claims.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if fields[fieldUserID] == "" || fields[fieldUserID] != claims.UserID {
		return nil, ErrSessionNotFound
	}

	session := &models.Session{
		ID: claims.ID,
		User: models.User{
			ID:          fields[fieldUserID],
			Login:       fields[fieldLogin],
			DisplayName: fields[fieldDisplayName],
		},
		DeviceInfo: fields[fieldDeviceInfo],
		IPAddress:  fields[fieldIPAddress],
	}
	if unix, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64); err == nil {
		session.CreatedAt = time.Unix(unix, 0)
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}

// DestroySession deletes the record behind token. Tokens that are expired
// but correctly signed still have their record removed. Unparseable tokens
// and already-deleted sessions are not errors.
func (s *SessionService) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring unparseable session token on logout")
		return nil
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || claims.ID == "" {
		return nil
	}

	if err := s.store.DeleteSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Info().
		Str("user_id", claims.UserID).
		Str("session_id", claims.ID).
		Msg("Session destroyed")

	return nil
}

// ExtractDeviceInfo turns a User-Agent header into a short label such as
// "Chrome 120.0.0.0 · Windows 10 · Desktop", stored with the session.
// An empty header gives "Unknown Device".
func ExtractDeviceInfo(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.Parse(userAgent)

	var parts []string

	if ua.Name != "" {
		browser := ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
		parts = append(parts, browser)
	}

	if ua.OS != "" {
		os := ua.OS
		if ua.OSVersion != "" {
			os += " " + ua.OSVersion
		}
		parts = append(parts, os)
	}

	switch {
	case ua.Mobile:
		parts = append(parts, "Mobile")
	case ua.Tablet:
		parts = append(parts, "Tablet")
	case ua.Desktop:
		parts = append(parts, "Desktop")
	}

	if len(parts) == 0 {
		return truncateRunes(userAgent, maxRawDeviceInfo)
	}

	return strings.Join(parts, " · ")
}

// maxRawDeviceInfo caps unparseable user agents kept as device info.
const maxRawDeviceInfo = 100

// truncateRunes shortens s to max runes, appending "..." when cut. It never
// splits a multi-byte character.
func truncateRunes(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
