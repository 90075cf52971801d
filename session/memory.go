package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default [Store]: plain maps guarded by one mutex. The
// single lock keeps cross-map operations (revoke, purge) atomic relative to
// the request path without lock-ordering concerns.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	refresh  map[string]RefreshRecord
}

// NewMemoryStore creates an empty in-process credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		refresh:  make(map[string]RefreshRecord),
	}
}

// SaveSession inserts or replaces the session record.
func (s *MemoryStore) SaveSession(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.SessionID] = *sess
	return nil
}

// GetSession returns a copy of the session or [ErrSessionNotFound].
func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := sess
	return &out, nil
}

// TouchSession updates LastActivity for a live session.
func (s *MemoryStore) TouchSession(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastActivity = at
	s.sessions[sessionID] = sess
	return nil
}

// DeleteSession removes the session; deleting a missing session is a no-op.
func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return existed, nil
}

// SaveRefresh registers an outstanding refresh credential.
func (s *MemoryStore) SaveRefresh(_ context.Context, token string, rec RefreshRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = rec
	return nil
}

// GetRefresh returns the record for token or [ErrRefreshNotFound].
func (s *MemoryStore) GetRefresh(_ context.Context, token string) (RefreshRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.refresh[token]
	if !ok {
		return RefreshRecord{}, ErrRefreshNotFound
	}
	return rec, nil
}

// DeleteRefresh removes one record.
func (s *MemoryStore) DeleteRefresh(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.refresh[token]
	delete(s.refresh, token)
	return existed, nil
}

// DeleteRefreshForUser removes every record owned by userID.
func (s *MemoryStore) DeleteRefreshForUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, rec := range s.refresh {
		if rec.UserID == userID {
			delete(s.refresh, token)
			removed++
		}
	}
	return removed, nil
}

// PurgeExpired removes expired refresh records and inactive sessions in one
// critical section, so a concurrent validate sees either the live record or
// none at all.
func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time, inactivity time.Duration) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purgedRefresh := 0
	for token, rec := range s.refresh {
		if now.After(rec.ExpiresAt) {
			delete(s.refresh, token)
			purgedRefresh++
		}
	}

	purgedSessions := 0
	cutoff := now.Add(-inactivity)
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			purgedSessions++
		}
	}

	return purgedSessions, purgedRefresh, nil
}

// Len reports the current number of sessions and refresh records. Test and
// introspection helper.
func (s *MemoryStore) Len() (sessions, refreshRecords int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), len(s.refresh)
}
