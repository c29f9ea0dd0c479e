package domain

import "time"

// Session is a backend-issued credential pair plus its expiry.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is a unix timestamp in seconds; 0 when unknown.
	ExpiresAt int64 `json:"expires_at"`
}

// Expiry returns ExpiresAt as a time, or the zero time when unknown.
func (s *Session) Expiry() time.Time {
	if s == nil || s.ExpiresAt <= 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0)
}

// IsExpired reports whether the session expired at reference. Sessions with an
// unknown expiry are never considered expired.
func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt <= 0 {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.Expiry().After(reference)
}

// Credentials returns the token pair that is persisted for this session.
func (s *Session) Credentials() Credentials {
	if s == nil {
		return Credentials{}
	}
	return Credentials{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Credentials is the token pair kept in durable client storage.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether no access token is held.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}
