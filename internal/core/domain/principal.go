package domain

import "time"

// Principal is the identity resolved from a verified bearer token.
type Principal struct {
	UserID    string
	Username  string
	Role      string
	RoleID    string
	ExpiresAt time.Time
}
