package models

import "time"

// Session is an active login. The bearer token itself is never stored;
// only its SHA-256 digest is.
type Session struct {
	ID            string
	UserID        string
	TokenHash     []byte
	ExpiresAt     time.Time
	LastRenewedAt time.Time
	CreatedAt     time.Time
}

// Verification is a pending out-of-band confirmation, e.g. a password
// reset token. It goes inert after first use or expiry.
type Verification struct {
	ID         string
	Identifier string
	TokenHash  []byte
	ExpiresAt  time.Time
	Used       bool
	CreatedAt  time.Time
}
