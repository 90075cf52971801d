package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when the session id has no live record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshNotFound is returned when the refresh token has no record.
	ErrRefreshNotFound = errors.New("refresh record not found")
	// ErrBackendUnavailable wraps transport failures of externalized stores.
	ErrBackendUnavailable = errors.New("session backend unavailable")
)

// Store is the credential store behind the token authority. All mutation of
// sessions and refresh records flows through it, giving the plane a single
// choke point for invariant enforcement. Every method is individually atomic
// with respect to the others, including [Store.PurgeExpired] running from the
// sweeper.
type Store interface {
	// SaveSession inserts or replaces the session record.
	SaveSession(ctx context.Context, sess *Session) error
	// GetSession returns a copy of the live session or [ErrSessionNotFound].
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	// TouchSession updates LastActivity. Missing sessions return
	// [ErrSessionNotFound].
	TouchSession(ctx context.Context, sessionID string, at time.Time) error
	// DeleteSession removes the session; reports whether it existed.
	DeleteSession(ctx context.Context, sessionID string) (bool, error)

	// SaveRefresh registers an outstanding refresh credential.
	SaveRefresh(ctx context.Context, token string, rec RefreshRecord) error
	// GetRefresh returns the record for token or [ErrRefreshNotFound].
	GetRefresh(ctx context.Context, token string) (RefreshRecord, error)
	// DeleteRefresh removes one record; reports whether it existed.
	DeleteRefresh(ctx context.Context, token string) (bool, error)
	// DeleteRefreshForUser removes every record owned by userID and returns
	// the number removed.
	DeleteRefreshForUser(ctx context.Context, userID string) (int, error)

	// PurgeExpired deletes refresh records past their expiry and sessions
	// whose LastActivity is older than now minus inactivity. Returns the
	// counts of sessions and refresh records removed.
	PurgeExpired(ctx context.Context, now time.Time, inactivity time.Duration) (sessions, refreshRecords int, err error)
}
