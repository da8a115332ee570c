package query

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/galacash/gateway/internal/core/domain"
)

// Infinite marks data that only goes stale through explicit invalidation.
const Infinite time.Duration = -1

// Staleness policy per resource.
const (
	StaleCurrentUser = Infinite
	StaleDashboard   = 60 * time.Second
	StaleList        = 120 * time.Second
	StaleDetail      = 300 * time.Second
	StaleProfile     = 300 * time.Second
)

const (
	defaultMaxRetries = 2
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// RetryPolicy governs query fetch retries. Mutations never retry.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy retries twice with 1s, 2s back-off.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: defaultMaxRetries, BaseDelay: defaultRetryDelay}
}

// ShouldRetry reports whether a fetch that has failed `failures` times
// (counting the one that produced err) may be attempted again. Client errors
// are final, except 401 which is retried so an in-flight token refresh can
// complete.
func (p RetryPolicy) ShouldRetry(failures int, err error) bool {
	if failures > p.MaxRetries || err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domain.ErrSessionExpired) {
		return false
	}
	if apiErr, ok := domain.AsAPIError(err); ok {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return true
		}
		if apiErr.IsClientError() {
			return false
		}
	}
	return true
}

// Delay is the wait before retry number `failures` (1-based): base * 2^(n-1),
// capped at 30s.
func (p RetryPolicy) Delay(failures int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}
