package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/query"
)

type recordingSink struct {
	mu     sync.Mutex
	events map[string][]string
	total  int
	done   chan struct{}
	want   int
	err    error
}

func newRecordingSink(want int) *recordingSink {
	return &recordingSink{events: make(map[string][]string), done: make(chan struct{}), want: want}
}

func (s *recordingSink) Deliver(_ context.Context, e query.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.Scope] = append(s.events[e.Scope], e.Mutation)
	s.total++
	if s.total == s.want {
		close(s.done)
	}
	return s.err
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
}

func TestDispatcher_PreservesPerScopeOrder(t *testing.T) {
	sink := newRecordingSink(30)
	d := NewDispatcher(3, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	mutations := []string{"pay_bill", "cancel_payment", "pay_bill", "confirm_payment", "create_transaction",
		"update_profile", "logout", "approve_fund_application", "reject_payment", "upload_avatar"}
	for _, scope := range []string{"alice", "bob", "carol"} {
		for _, m := range mutations {
			d.Publish(query.Event{Scope: scope, Type: query.EventInvalidated, Mutation: m})
		}
	}
	sink.wait(t)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for scope, got := range sink.events {
		for i := range mutations {
			if got[i] != mutations[i] {
				t.Errorf("scope %s: event %d = %s, want %s", scope, i, got[i], mutations[i])
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingSink(0), zerolog.Nop())
	first := d.shardIndex("8b1c0f1e-7a3e-4f7a-9a55-1e3f0d4c2b10")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("8b1c0f1e-7a3e-4f7a-9a55-1e3f0d4c2b10"); got != first {
			t.Fatalf("shard changed: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Errorf("shard out of range: %d", first)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, newRecordingSink(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Errorf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, newRecordingSink(0), zerolog.Nop())
	// Not started: nothing drains the buffer.
	for i := 0; i < channelBuffer+10; i++ {
		d.Publish(query.Event{Scope: "s1"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Errorf("expected full buffer of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_SinkErrorDoesNotStopWorker(t *testing.T) {
	sink := newRecordingSink(2)
	sink.err = errors.New("socket closed")
	d := NewDispatcher(1, sink, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Publish(query.Event{Scope: "s1", Mutation: "a"})
	d.Publish(query.Event{Scope: "s1", Mutation: "b"})
	sink.wait(t)
}
