package scraper

import (
	"context"
	"time"
)

// gate spaces outbound requests at least interval apart. Callers queue on a
// one-slot semaphore so the read-modify-write of last is serialized, and
// waiting is a timer that gives up when ctx is done.
type gate struct {
	interval time.Duration
	slot     chan struct{}
	last     time.Time
}

func newGate(interval time.Duration) *gate {
	return &gate{interval: interval, slot: make(chan struct{}, 1)}
}

// Wait blocks until a request may be issued and returns the issue time,
// which becomes the new last request time.
func (g *gate) Wait(ctx context.Context) (time.Time, error) {
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
	defer func() { <-g.slot }()

	if !g.last.IsZero() {
		if d := g.interval - time.Since(g.last); d > 0 {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return time.Time{}, ctx.Err()
			}
		}
	}

	g.last = time.Now()
	return g.last, nil
}
