// Package tokens reads claims from backend-issued access tokens without
// verifying them; the client never holds the signing key.
package tokens

import (
	"github.com/golang-jwt/jwt/v4"
)

// ExpiresAt returns the unix "exp" claim of a JWT access token. ok is false for
// opaque tokens or tokens without an expiry.
func ExpiresAt(token string) (exp int64, ok bool) {
	if token == "" {
		return 0, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, false
	}
	switch v := claims["exp"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// Subject returns the "sub" claim, usually the user id.
func Subject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
