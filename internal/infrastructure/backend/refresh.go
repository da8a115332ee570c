package backend

import (
	"context"
	"sync"

	"github.com/galacash/gateway/internal/pkg/metrics"
)

// refreshState is either idle or *refreshing.
type refreshState interface{ refreshState() }

type idle struct{}

// refreshing holds the callers parked behind the in-flight refresh.
type refreshing struct {
	waiters []chan error
}

func (idle) refreshState()        {}
func (*refreshing) refreshState() {}

// refresher serialises token refreshes for one backend session. At most one
// refresh is in flight; every caller that asks while it runs receives its
// outcome.
type refresher struct {
	mu    sync.Mutex
	state refreshState
	// gen counts settled refreshes. A request remembers the generation it
	// was sent under; if a refresh settled since, its 401 is already stale.
	gen     uint64
	lastErr error
}

func newRefresher() *refresher {
	return &refresher{state: idle{}}
}

func (r *refresher) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// await obtains a refresh outcome for a request sent under generation seen.
// The first caller runs fn; callers arriving while it runs are queued.
// fn runs detached from ctx so a cancelled caller cannot fail the others.
func (r *refresher) await(ctx context.Context, seen uint64, fn func(context.Context) error) error {
	r.mu.Lock()
	if r.gen != seen {
		err := r.lastErr
		r.mu.Unlock()
		return err
	}

	switch s := r.state.(type) {
	case *refreshing:
		ch := make(chan error, 1)
		s.waiters = append(s.waiters, ch)
		r.mu.Unlock()
		metrics.TokenRefreshWaiters.Inc()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		r.state = &refreshing{}
		r.mu.Unlock()
	}

	err := fn(context.WithoutCancel(ctx))

	r.mu.Lock()
	s := r.state.(*refreshing)
	r.state = idle{}
	r.gen++
	r.lastErr = err
	r.mu.Unlock()

	for _, ch := range s.waiters {
		ch <- err
	}
	return err
}
