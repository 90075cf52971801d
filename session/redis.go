package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore externalizes the credential store to Redis so several plane
// instances can share one session space. Records carry their expiry in the
// payload rather than as a Redis TTL: expiry decisions stay on the plane's
// injectable clock, and the sweeper performs the actual deletion. Redis
// guarantees per-command atomicity, which is all [Store] requires.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [Store] backed by the given Redis client. prefix
// namespaces all keys; it defaults to "ag".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ag"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.prefix + ":sess:" + sessionID
}

func (s *RedisStore) refreshKey(token string) string {
	return s.prefix + ":ref:" + token
}

func (s *RedisStore) userRefreshKey(userID string) string {
	return s.prefix + ":uref:" + userID
}

// SaveSession inserts or replaces the session record.
func (s *RedisStore) SaveSession(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.redis.Set(ctx, s.sessionKey(sess.SessionID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// GetSession returns the decoded session or [ErrSessionNotFound].
func (s *RedisStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// TouchSession updates LastActivity with an optimistic WATCH transaction so
// a concurrent delete is never resurrected by the write-back.
func (s *RedisStore) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	const maxRetries = 4
	key := s.sessionKey(sessionID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			var sess Session
			if err := json.Unmarshal(data, &sess); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
			sess.LastActivity = at

			updated, err := json.Marshal(&sess)
			if err != nil {
				return fmt.Errorf("encode session: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil
	}

	return ErrSessionNotFound
}

// DeleteSession removes the session; deleting a missing session is a no-op.
func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.redis.Del(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return n > 0, nil
}

// SaveRefresh registers an outstanding refresh credential and indexes it
// under its owning user for revoke-everywhere deletion.
func (s *RedisStore) SaveRefresh(ctx context.Context, token string, rec RefreshRecord) error {
	data, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encode refresh record: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.refreshKey(token), data, 0)
		pipe.SAdd(ctx, s.userRefreshKey(rec.UserID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// GetRefresh returns the record for token or [ErrRefreshNotFound].
func (s *RedisStore) GetRefresh(ctx context.Context, token string) (RefreshRecord, error) {
	data, err := s.redis.Get(ctx, s.refreshKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return RefreshRecord{}, ErrRefreshNotFound
		}
		return RefreshRecord{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var rec RefreshRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RefreshRecord{}, fmt.Errorf("decode refresh record: %w", err)
	}
	return rec, nil
}

// DeleteRefresh removes one record and its user-index entry.
func (s *RedisStore) DeleteRefresh(ctx context.Context, token string) (bool, error) {
	rec, err := s.GetRefresh(ctx, token)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return false, nil
		}
		return false, err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.refreshKey(token))
		pipe.SRem(ctx, s.userRefreshKey(rec.UserID), token)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return true, nil
}

// DeleteRefreshForUser removes every record owned by userID.
func (s *RedisStore) DeleteRefreshForUser(ctx context.Context, userID string) (int, error) {
	userKey := s.userRefreshKey(userID)

	tokens, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.refreshKey(token))
	}
	keys = append(keys, userKey)

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return len(tokens), nil
}

// PurgeExpired scans both key spaces and deletes dead records. O(n) over the
// store; runs from the sweeper, never from the request path.
func (s *RedisStore) PurgeExpired(ctx context.Context, now time.Time, inactivity time.Duration) (int, int, error) {
	purgedRefresh, err := s.purgeRefresh(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	purgedSessions, err := s.purgeSessions(ctx, now.Add(-inactivity))
	if err != nil {
		return 0, purgedRefresh, err
	}

	return purgedSessions, purgedRefresh, nil
}

func (s *RedisStore) purgeRefresh(ctx context.Context, now time.Time) (int, error) {
	var (
		cursor uint64
		purged int
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":ref:*", 1000).Result()
		if err != nil {
			return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}

		for _, key := range keys {
			data, err := s.redis.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
			}

			var rec RefreshRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				// Undecodable records are dead weight; drop them.
				if delErr := s.redis.Del(ctx, key).Err(); delErr != nil {
					return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, delErr)
				}
				purged++
				continue
			}

			if now.After(rec.ExpiresAt) {
				_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					pipe.SRem(ctx, s.userRefreshKey(rec.UserID), key[len(s.prefix+":ref:"):])
					return nil
				})
				if err != nil {
					return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
				}
				purged++
			}
		}

		cursor = next
		if cursor == 0 {
			return purged, nil
		}
	}
}

func (s *RedisStore) purgeSessions(ctx context.Context, cutoff time.Time) (int, error) {
	var (
		cursor uint64
		purged int
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":sess:*", 1000).Result()
		if err != nil {
			return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}

		for _, key := range keys {
			data, err := s.redis.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
			}

			var sess Session
			if err := json.Unmarshal(data, &sess); err != nil {
				if delErr := s.redis.Del(ctx, key).Err(); delErr != nil {
					return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, delErr)
				}
				purged++
				continue
			}

			if sess.LastActivity.Before(cutoff) {
				if err := s.redis.Del(ctx, key).Err(); err != nil {
					return purged, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
				}
				purged++
			}
		}

		cursor = next
		if cursor == 0 {
			return purged, nil
		}
	}
}

// Ping reports Redis availability and round-trip latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return time.Since(start), nil
}
