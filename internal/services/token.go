package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the session cookie. The JWT ID is the
// server-side session id, so the cookie cannot be forged and a deleted
// record invalidates it immediately.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// signSessionToken returns an HS256 token for sessionID that expires at
// expiresAt.
func signSessionToken(secret []byte, sessionID, userID string, now, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// parseSessionToken verifies the signature and time claims of a session
// token.
func parseSessionToken(secret []byte, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// GenerateState generates a random state string for OAuth CSRF protection.
// The value goes into the oauth_state cookie before the provider redirect
// and must come back unchanged on the callback.
//
// Returns a URL-safe base64-encoded string of 16 random bytes.
//
// Example:
//
//	state := services.GenerateState()
//	utils.SetAuthCookieWithMaxAge(w, "oauth_state", state, 600, secure)
//	http.Redirect(w, r, oauthSvc.AuthURL(state), http.StatusTemporaryRedirect)
func GenerateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
