package models

import "time"

// AccessToken is a bearer token issued by the commission API.
type AccessToken struct {
	Value     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidFor reports whether the token is still usable for at least margin after now.
func (t *AccessToken) ValidFor(now time.Time, margin time.Duration) bool {
	if t == nil || t.Value == "" {
		return false
	}
	return now.Add(margin).Before(t.ExpiresAt)
}
