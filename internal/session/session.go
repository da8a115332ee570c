// Package session holds the per-user state of the gateway: the backend
// client bound to the user's cookies, the resource services, the scoped
// query cache and the signed-in user object.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/service"
	"github.com/galacash/gateway/internal/query"
)

// Session is one signed-in user. It is created by Registry.Init and
// destroyed by Registry.Clear; nothing else owns it.
type Session struct {
	ID        string
	CreatedAt time.Time

	Services *service.Bundle
	Queries  *query.Client

	mu       sync.RWMutex
	user     *domain.User
	lastSeen atomic.Int64
}

// User returns a copy of the signed-in user, or nil before sign-in
// completes.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser replaces the session user and primes the current-user query.
func (s *Session) SetUser(ctx context.Context, u *domain.User) {
	if u == nil {
		return
	}
	cp := *u
	s.mu.Lock()
	s.user = &cp
	s.mu.Unlock()
	_ = query.Set(ctx, s.Queries, query.CurrentUserKey, &cp)
}

// MergeUser folds a mutation result into the session user so the change is
// visible without a refetch.
func (s *Session) MergeUser(ctx context.Context, patch *domain.User) {
	if patch == nil {
		return
	}
	s.mu.Lock()
	if s.user == nil {
		cp := *patch
		s.user = &cp
	} else {
		s.user.Merge(patch)
	}
	merged := *s.user
	s.mu.Unlock()
	_ = query.Set(ctx, s.Queries, query.CurrentUserKey, &merged)
}

// Role is shorthand for User().Role.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}
