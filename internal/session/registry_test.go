package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// ---------------------------------------------------------------------------
// stubs
// ---------------------------------------------------------------------------

type stubAPI struct {
	me *domain.User
}

func (s *stubAPI) Do(_ context.Context, req ports.Request, out any) error {
	if out == nil {
		return nil
	}
	data, _ := json.Marshal(s.me)
	return json.Unmarshal(data, out)
}

func (s *stubAPI) Download(context.Context, ports.Request) (*ports.Blob, error) {
	return &ports.Blob{}, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []query.Event
}

func (l *eventLog) Publish(e query.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestRegistry(t *testing.T, clock *testClock) (*Registry, *[]func(), *eventLog) {
	t.Helper()
	hooks := &[]func(){}
	events := &eventLog{}
	factory := func(onAuthFailure func()) (ports.APIClient, error) {
		*hooks = append(*hooks, onAuthFailure)
		return &stubAPI{me: &domain.User{ID: "u1", Name: "Siti", Role: domain.RoleStudent}}, nil
	}
	r := NewRegistry(Config{TTL: time.Hour, IdleTimeout: 10 * time.Minute}, factory, query.NewMemoryStore(), events, zerolog.Nop())
	r.now = clock.now
	return r, hooks, events
}

// ---------------------------------------------------------------------------
// lifecycle
// ---------------------------------------------------------------------------

func TestRegistry_InitGetClear(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 8, 17, 8, 0, 0, 0, time.UTC)}
	r, _, events := newTestRegistry(t, clock)
	ctx := context.Background()

	s, err := r.Init(ctx)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.ID == "" || s.Services == nil || s.Queries == nil || s.Queries.Scope() != s.ID {
		t.Fatalf("session not wired: %+v", s)
	}

	got, err := r.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get: %v", err)
	}

	r.Clear(ctx, s.ID)
	if _, err := r.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after Clear, got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
	if len(events.events) != 1 || events.events[0].Type != query.EventCleared || events.events[0].Scope != s.ID {
		t.Errorf("expected one cleared event, got %+v", events.events)
	}

	// Clearing twice is harmless.
	r.Clear(ctx, s.ID)
}

func TestRegistry_IdleSessionExpires(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 8, 17, 8, 0, 0, 0, time.UTC)}
	r, _, _ := newTestRegistry(t, clock)
	ctx := context.Background()
	s, _ := r.Init(ctx)

	clock.t = clock.t.Add(9 * time.Minute)
	if _, err := r.Get(ctx, s.ID); err != nil {
		t.Fatalf("session should still be live: %v", err)
	}
	clock.t = clock.t.Add(11 * time.Minute)
	if _, err := r.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if r.Len() != 0 {
		t.Error("expired session should be removed")
	}
}

func TestRegistry_SweepRemovesExpired(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 8, 17, 8, 0, 0, 0, time.UTC)}
	r, _, _ := newTestRegistry(t, clock)
	ctx := context.Background()
	old, _ := r.Init(ctx)
	clock.t = clock.t.Add(15 * time.Minute)
	fresh, _ := r.Init(ctx)

	if n := r.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 swept, got %d", n)
	}
	if _, err := r.Get(ctx, old.ID); err == nil {
		t.Error("old session survived sweep")
	}
	if _, err := r.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh session swept: %v", err)
	}
}

func TestRegistry_AuthFailureHookClearsSession(t *testing.T) {
	clock := &testClock{t: time.Now()}
	r, hooks, _ := newTestRegistry(t, clock)
	ctx := context.Background()
	s, _ := r.Init(ctx)

	(*hooks)[0]()

	if _, err := r.Get(ctx, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected session cleared by hook, got %v", err)
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	boom := errors.New("bad url")
	r := NewRegistry(Config{}, func(func()) (ports.APIClient, error) { return nil, boom }, query.NewMemoryStore(), nil, zerolog.Nop())
	if _, err := r.Init(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Session user
// ---------------------------------------------------------------------------

func TestSession_MergeUserUpdatesCache(t *testing.T) {
	clock := &testClock{t: time.Now()}
	r, _, _ := newTestRegistry(t, clock)
	ctx := context.Background()
	s, _ := r.Init(ctx)

	s.SetUser(ctx, &domain.User{ID: "u1", Name: "Siti", Role: domain.RoleStudent, Email: "siti@kampus.ac.id"})
	s.MergeUser(ctx, &domain.User{Name: "Siti Aminah", AvatarURL: "https://cdn/avatar.png"})

	u := s.User()
	if u.Name != "Siti Aminah" || u.Email != "siti@kampus.ac.id" || u.AvatarURL != "https://cdn/avatar.png" {
		t.Errorf("unexpected merge result: %+v", u)
	}
	cached, ok := query.Peek[*domain.User](ctx, s.Queries, query.CurrentUserKey, query.StaleCurrentUser)
	if !ok || cached.Name != "Siti Aminah" {
		t.Errorf("current-user cache not updated: %+v, %v", cached, ok)
	}

	// User returns a copy.
	u.Name = "changed"
	if s.User().Name != "Siti Aminah" {
		t.Error("User must return a copy")
	}
	if s.Role() != domain.RoleStudent {
		t.Errorf("Role: %q", s.Role())
	}
}
