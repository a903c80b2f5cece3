package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// repeater calls fn every interval until stopped or its context ends
type repeater struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startRepeater(ctx context.Context, clock clockwork.Clock, interval time.Duration, fn func()) *repeater {
	ctx, cancel := context.WithCancel(ctx)
	r := &repeater{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				fn()
			}
		}
	}()
	return r
}

// Stop cancels the repeater, calling it more than once is a no-op.
// It does not wait for a running tick so it is safe to call from inside fn.
func (r *repeater) Stop() {
	if r == nil {
		return
	}
	r.once.Do(r.cancel)
}

// Done is closed once the goroutine has exited
func (r *repeater) Done() <-chan struct{} {
	return r.done
}
