package reservation

import (
	"context"
	"log"
	"time"
)

// Reaper periodically expires PENDING holds that passed their deadline, so
// capacity is reclaimed even when no caller ever revisits the reservation.
// A failed sweep is logged and retried on the next tick; it never stops the
// loop.
type Reaper struct {
	repo     *Repository
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
}

func NewReaper(repo *Repository, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Reaper{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// WithClock overrides the reaper's clock for tests.
func (r *Reaper) WithClock(now func() time.Time) *Reaper {
	r.now = now
	return r
}

// Start launches the sweep loop in its own goroutine.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		log.Printf("reservation: reaper started, sweeping every %s", r.interval)
		for {
			select {
			case <-ticker.C:
				r.Sweep(ctx)
			case <-r.stop:
				log.Println("reservation: reaper stopped")
				return
			case <-ctx.Done():
				log.Println("reservation: reaper context cancelled")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it to finish.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}

// Sweep runs one bulk conditional transition of stale PENDING holds to
// EXPIRED. Safe to run concurrently with allocations, confirms and itself:
// it only touches rows already past their deadline.
func (r *Reaper) Sweep(ctx context.Context) {
	expired, err := r.repo.ExpirePending(ctx, r.now())
	if err != nil {
		log.Printf("reservation: expiry sweep failed, will retry next tick: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("reservation: expired %d stale hold(s)", expired)
	}
}
