package accessgate

import (
	"context"
	"log"
	"sync"
	"time"
)

// sweeperState holds the background sweeper lifecycle. The sweeper is the
// only writer that reclaims expired state; read paths never mutate beyond
// their own bucket or session.
type sweeperState struct {
	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	started bool

	stopOnce sync.Once
}

func newSweeperState() *sweeperState {
	return &sweeperState{
		done: make(chan struct{}),
	}
}

// SweepOnce runs a single reclamation pass: expired refresh records and
// inactive sessions from the store, then stale rate buckets. Store errors
// skip the store pass but never abort bucket reclamation; a degraded backend
// must not stop limiter cleanup.
func (p *Plane) SweepOnce(ctx context.Context) (sessions, refreshRecords, buckets int) {
	now := p.now()

	sessions, refreshRecords, err := p.store.PurgeExpired(ctx, now, p.config.Session.InactivityLimit)
	if err != nil {
		log.Printf("accessgate: sweep store pass failed: %v", err)
		p.emit(ctx, "sweep_store_failed", "", "", false, err)
	} else {
		p.metrics.Add(MetricSweepPurgedSessions, uint64(sessions))
		p.metrics.Add(MetricSweepPurgedRefresh, uint64(refreshRecords))
	}

	buckets = p.limiter.Sweep(now)
	p.metrics.Add(MetricSweepPurgedBuckets, uint64(buckets))

	return sessions, refreshRecords, buckets
}

// StartSweeping launches the periodic sweeper at the configured interval.
// Safe to call once; subsequent calls are no-ops. The sweeper stops when ctx
// is canceled or the plane is closed.
func (p *Plane) StartSweeping(ctx context.Context) {
	s := p.sweeper

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(p.config.Session.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.SweepOnce(ctx)
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()
}

func (p *Plane) stopSweeping() {
	s := p.sweeper
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
