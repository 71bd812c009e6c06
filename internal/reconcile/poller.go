package reconcile

import (
	"context"
	"time"
)

// Poller re-runs a fetch-and-reconcile tick on a fixed interval while its
// context is alive. It approximates a push channel for surfaces the backend
// only exposes as read endpoints.
type Poller struct {
	interval time.Duration
	tick     func(ctx context.Context)
}

func NewPoller(interval time.Duration, tick func(ctx context.Context)) *Poller {
	return &Poller{interval: interval, tick: tick}
}

// Run blocks until ctx is cancelled. The tick is never invoked after
// cancellation, so a slow backend response cannot be applied to a view that
// already closed.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			p.tick(ctx)
		}
	}
}
