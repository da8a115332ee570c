package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/core/service"
	"github.com/galacash/gateway/internal/pkg/metrics"
	"github.com/galacash/gateway/internal/query"
)

const (
	defaultTTL         = 24 * time.Hour
	defaultIdleTimeout = 2 * time.Hour
	defaultSweepEvery  = time.Minute
)

// ClientFactory builds a backend client for a new session. onAuthFailure
// must be invoked when the backend session can no longer be refreshed.
type ClientFactory func(onAuthFailure func()) (ports.APIClient, error)

// Config tunes session lifetimes.
type Config struct {
	TTL         time.Duration
	IdleTimeout time.Duration
	Retry       query.RetryPolicy
}

// Registry owns every live session.
type Registry struct {
	cfg      Config
	clients  ClientFactory
	store    query.Store
	observer query.Observer
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config, clients ClientFactory, store query.Store, observer query.Observer, log zerolog.Logger) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Retry == (query.RetryPolicy{}) {
		cfg.Retry = query.DefaultRetryPolicy()
	}
	return &Registry{
		cfg:      cfg,
		clients:  clients,
		store:    store,
		observer: observer,
		log:      log.With().Str("component", "session").Logger(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Init creates an empty session. The caller signs in through its services
// and either sets the user or clears the session.
func (r *Registry) Init(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	api, err := r.clients(func() { r.Clear(context.Background(), id) })
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	log := r.log.With().Str("session_id", id).Logger()
	now := r.now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		Services:  service.NewBundle(api, log),
		Queries: query.NewClient(id, r.store,
			query.WithRetryPolicy(r.cfg.Retry),
			query.WithObserver(r.observer),
			query.WithLogger(log),
			query.WithClock(r.now),
		),
	}
	s.touch(now)

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	log.Debug().Msg("session initialised")
	return s, nil
}

// Get returns a live session and marks it used. Expired sessions are
// cleared and reported as ErrSessionExpired.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	now := r.now()
	if r.expired(s, now) {
		r.Clear(ctx, id)
		return nil, domain.ErrSessionExpired
	}
	s.touch(now)
	return s, nil
}

// Clear removes a session and drops its cache. Clearing an unknown id is a
// no-op.
func (r *Registry) Clear(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return
	}

	metrics.ActiveSessions.Set(float64(n))
	if err := s.Queries.Clear(ctx, "session_cleared"); err != nil {
		r.log.Warn().Err(err).Str("session_id", id).Msg("drop session cache failed")
	}
	r.log.Info().Str("session_id", id).Msg("session cleared")
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start sweeps expired sessions until ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(defaultSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(ctx)
			}
		}
	}()
}

// Sweep clears every expired session and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) int {
	now := r.now()
	var expired []string
	r.mu.RLock()
	for id, s := range r.sessions {
		if r.expired(s, now) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range expired {
		r.Clear(ctx, id)
	}
	if len(expired) > 0 {
		r.log.Debug().Int("count", len(expired)).Msg("expired sessions swept")
	}
	return len(expired)
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return now.Sub(s.CreatedAt) >= r.cfg.TTL || now.Sub(s.LastSeen()) >= r.cfg.IdleTimeout
}
