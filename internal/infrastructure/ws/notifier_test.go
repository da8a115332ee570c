package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/query"
)

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?sid=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, n *Notifier, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for n.Len() < want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, n.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotifier_DeliversOnlyToOwningSession(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	defer n.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = n.Serve(w, r, r.URL.Query().Get("sid"))
	}))
	defer srv.Close()

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, n, 2)

	err := n.Deliver(context.Background(), query.Event{
		Scope:      "alice",
		Type:       query.EventInvalidated,
		Mutation:   string(query.PayBill),
		Namespaces: []query.Namespace{query.NSCashBills, query.NSDashboard},
		At:         time.Date(2024, 8, 17, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := alice.ReadMessage()
	if err != nil {
		t.Fatalf("alice read: %v", err)
	}
	var got struct {
		Type       string   `json:"type"`
		Mutation   string   `json:"mutation"`
		Namespaces []string `json:"namespaces"`
		Scope      string   `json:"scope"`
	}
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "invalidated" || got.Mutation != "pay_bill" || len(got.Namespaces) != 2 {
		t.Errorf("unexpected message: %s", msg)
	}
	if got.Scope != "" {
		t.Error("scope must not leak to the client")
	}

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Error("bob must not receive alice's events")
	}
}
