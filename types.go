package accessgate

import (
	"time"

	"github.com/quantrail/accessgate/permission"
)

// Identity is the verified principal handed to [Plane.CreateSession] by an
// external authentication step. The plane trusts it as-is; MFA verification
// happens elsewhere and arrives here as a flag.
type Identity struct {
	UserID string          `validate:"required"`
	Email  string          `validate:"required,email"`
	Role   permission.Role `validate:"required"`

	// Permissions overrides the role's default capability set when non-nil.
	Permissions *permission.Set
	MFAVerified bool
}

// TokenPair is returned by session creation and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
