package domain

import "time"

// AdminSession lives in the KV store under admin_session:<token>. Expiry is
// checked lazily on verification rather than swept.
type AdminSession struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	LoginTime time.Time `json:"loginTime"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *AdminSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
