package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantrail/accessgate/permission"
)

func testSession(sessionID, userID string, at time.Time) *Session {
	return &Session{
		SessionID:    sessionID,
		UserID:       userID,
		Email:        userID + "@example.com",
		Role:         permission.RoleTrader,
		Permissions:  permission.Defaults(permission.RoleTrader),
		CreatedAt:    at,
		LastActivity: at,
	}
}

// testStoreConformance exercises the Store contract. Both backends must pass
// it unchanged.
func testStoreConformance(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("session lifecycle", func(t *testing.T) {
		sess := testSession("sid-1", "u-1", base)
		if err := store.SaveSession(ctx, sess); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := store.GetSession(ctx, "sid-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.UserID != "u-1" || got.Role != permission.RoleTrader {
			t.Fatalf("session mismatch: %+v", got)
		}
		if !got.Permissions.Has(permission.CapTrade) {
			t.Fatal("permissions did not survive the store")
		}

		later := base.Add(30 * time.Minute)
		if err := store.TouchSession(ctx, "sid-1", later); err != nil {
			t.Fatalf("touch: %v", err)
		}
		got, err = store.GetSession(ctx, "sid-1")
		if err != nil {
			t.Fatalf("get after touch: %v", err)
		}
		if !got.LastActivity.Equal(later) {
			t.Fatalf("last activity = %v, want %v", got.LastActivity, later)
		}

		existed, err := store.DeleteSession(ctx, "sid-1")
		if err != nil || !existed {
			t.Fatalf("delete = %v, %v; want true, nil", existed, err)
		}
		existed, err = store.DeleteSession(ctx, "sid-1")
		if err != nil || existed {
			t.Fatalf("second delete = %v, %v; want false, nil", existed, err)
		}

		if _, err := store.GetSession(ctx, "sid-1"); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("get after delete err = %v, want ErrSessionNotFound", err)
		}
		if err := store.TouchSession(ctx, "sid-1", later); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("touch after delete err = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("refresh lifecycle", func(t *testing.T) {
		rec := RefreshRecord{UserID: "u-2", SessionID: "sid-2", ExpiresAt: base.Add(time.Hour)}
		if err := store.SaveRefresh(ctx, "tok-1", rec); err != nil {
			t.Fatalf("save refresh: %v", err)
		}

		got, err := store.GetRefresh(ctx, "tok-1")
		if err != nil {
			t.Fatalf("get refresh: %v", err)
		}
		if got.UserID != "u-2" || !got.ExpiresAt.Equal(rec.ExpiresAt) {
			t.Fatalf("refresh mismatch: %+v", got)
		}

		existed, err := store.DeleteRefresh(ctx, "tok-1")
		if err != nil || !existed {
			t.Fatalf("delete refresh = %v, %v; want true, nil", existed, err)
		}
		if _, err := store.GetRefresh(ctx, "tok-1"); !errors.Is(err, ErrRefreshNotFound) {
			t.Fatalf("get after delete err = %v, want ErrRefreshNotFound", err)
		}
	})

	t.Run("delete refresh for user", func(t *testing.T) {
		for _, tok := range []string{"ua-1", "ua-2", "ua-3"} {
			rec := RefreshRecord{UserID: "u-3", SessionID: "sid-" + tok, ExpiresAt: base.Add(time.Hour)}
			if err := store.SaveRefresh(ctx, tok, rec); err != nil {
				t.Fatalf("save refresh %s: %v", tok, err)
			}
		}
		if err := store.SaveRefresh(ctx, "other", RefreshRecord{UserID: "u-4", SessionID: "sid-x", ExpiresAt: base.Add(time.Hour)}); err != nil {
			t.Fatalf("save refresh: %v", err)
		}

		removed, err := store.DeleteRefreshForUser(ctx, "u-3")
		if err != nil {
			t.Fatalf("delete for user: %v", err)
		}
		if removed != 3 {
			t.Fatalf("removed = %d, want 3", removed)
		}

		if _, err := store.GetRefresh(ctx, "other"); err != nil {
			t.Fatalf("unrelated record was removed: %v", err)
		}
		if _, err := store.GetRefresh(ctx, "ua-1"); !errors.Is(err, ErrRefreshNotFound) {
			t.Fatalf("user record survived: %v", err)
		}

		if _, err := store.DeleteRefresh(ctx, "other"); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	})

	t.Run("purge expired", func(t *testing.T) {
		now := base.Add(24 * time.Hour)
		inactivity := 7 * 24 * time.Hour

		// One live and one inactive session.
		if err := store.SaveSession(ctx, testSession("live", "u-5", now)); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := store.SaveSession(ctx, testSession("stale", "u-5", now.Add(-inactivity-time.Minute))); err != nil {
			t.Fatalf("save: %v", err)
		}

		// One live and one expired refresh record.
		if err := store.SaveRefresh(ctx, "fresh", RefreshRecord{UserID: "u-5", SessionID: "live", ExpiresAt: now.Add(time.Hour)}); err != nil {
			t.Fatalf("save refresh: %v", err)
		}
		if err := store.SaveRefresh(ctx, "dead", RefreshRecord{UserID: "u-5", SessionID: "stale", ExpiresAt: now.Add(-time.Minute)}); err != nil {
			t.Fatalf("save refresh: %v", err)
		}

		sessions, refreshRecords, err := store.PurgeExpired(ctx, now, inactivity)
		if err != nil {
			t.Fatalf("purge: %v", err)
		}
		if sessions != 1 || refreshRecords != 1 {
			t.Fatalf("purged = %d sessions, %d refresh; want 1, 1", sessions, refreshRecords)
		}

		if _, err := store.GetSession(ctx, "live"); err != nil {
			t.Fatalf("live session was purged: %v", err)
		}
		if _, err := store.GetSession(ctx, "stale"); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("stale session survived: %v", err)
		}
		if _, err := store.GetRefresh(ctx, "fresh"); err != nil {
			t.Fatalf("live refresh was purged: %v", err)
		}
		if _, err := store.GetRefresh(ctx, "dead"); !errors.Is(err, ErrRefreshNotFound) {
			t.Fatalf("expired refresh survived: %v", err)
		}
	})
}

func TestMemoryStoreConformance(t *testing.T) {
	testStoreConformance(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sess := testSession("sid-1", "u-1", base)
	if err := store.SaveSession(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.UserID = "mutated"

	again, err := store.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.UserID != "u-1" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.SaveSession(ctx, testSession("shared", "u-1", base)); err != nil {
		t.Fatalf("save: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = store.TouchSession(ctx, "shared", base.Add(time.Duration(i)*time.Second))
		}
	}()
	for i := 0; i < 500; i++ {
		if _, err := store.GetSession(ctx, "shared"); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	<-done
}
