package domain

import "time"

// BlacklistEntry records a bearer token invalidated before its natural expiry.
// ExpiryDate is copied from the token's own exp claim and drives purging.
type BlacklistEntry struct {
	ID         int64
	Token      string
	ExpiryDate time.Time
	CreatedAt  time.Time
}

// IsExpired reports whether the underlying token has passed its natural expiry.
func (e BlacklistEntry) IsExpired(at time.Time) bool {
	return e.ExpiryDate.Before(at)
}

// Identity is the authenticated principal attached to a request by the auth gate.
type Identity struct {
	Email     string
	Role      string
	Token     string
	ExpiresAt time.Time
}

// HasRole reports whether the identity carries any of the supplied roles.
func (i Identity) HasRole(roles ...string) bool {
	current := NormalizeRole(i.Role)
	for _, role := range roles {
		if NormalizeRole(role) == current {
			return true
		}
	}
	return false
}
