package session

import (
	"time"

	"github.com/quantrail/accessgate/permission"
)

// Session is one authenticated principal's continuous login. It is created
// by the token authority, touched on every successful validation, and
// destroyed by revocation or by the sweeper once LastActivity exceeds the
// inactivity ceiling.
type Session struct {
	SessionID    string          `json:"session_id"`
	UserID       string          `json:"user_id"`
	Email        string          `json:"email"`
	Role         permission.Role `json:"role"`
	Permissions  permission.Set  `json:"permissions"`
	MFAVerified  bool            `json:"mfa_verified"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
}

// RefreshRecord maps an opaque refresh credential to its owning user and
// session. A record never outlives ExpiresAt; the sweeper purges it once the
// expiry has passed.
type RefreshRecord struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
