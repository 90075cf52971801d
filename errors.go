package accessgate

import "errors"

var (
	// ErrTokenMalformed is returned when a credential fails signature or
	// shape verification. The credential store is never consulted.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrWrongTokenType is returned when a refresh token is presented where
	// an access token is expected, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
	// ErrTokenExpired is returned when the access credential's embedded
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrSessionNotFound is returned when the credential verifies but the
	// referenced session no longer exists (revoked or swept).
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshExpired is returned when the refresh record exists but is
	// past its expiry. The stale record is deleted as a side effect.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrRefreshUnknown is returned when no record exists for the refresh
	// credential.
	ErrRefreshUnknown = errors.New("unknown refresh token")
	// ErrRateLimited is returned when the admission window is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrUnknownTier is returned when an endpoint tier has no policy.
	ErrUnknownTier = errors.New("unknown endpoint tier")
	// ErrPermissionDenied is returned when the session lacks the required
	// capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidIdentity is returned by CreateSession for inputs outside
	// the closed role set or with missing/invalid fields.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrStoreUnavailable wraps credential store transport failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// ErrorKind returns the machine-distinguishable wire name for a gate error,
// used in the {error} field of denial responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrTokenMalformed):
		return "malformed_token"
	case errors.Is(err, ErrWrongTokenType):
		return "wrong_token_type"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrRefreshExpired):
		return "refresh_expired"
	case errors.Is(err, ErrRefreshUnknown):
		return "refresh_unknown"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnknownTier):
		return "unknown_tier"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal_error"
	}
}
