// Package ws pushes cache events to the UI over websockets so dependent views
// refetch after a mutation.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/query"
)

const sessionKey = "session_id"

// Notifier fans cache events out to the sockets of the owning session. It
// implements queue.Sink.
type Notifier struct {
	m   *melody.Melody
	log zerolog.Logger
}

func NewNotifier(log zerolog.Logger) *Notifier {
	m := melody.New()
	m.Config.MaxMessageSize = 4 * 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	n := &Notifier{m: m, log: log.With().Str("component", "ws").Logger()}

	m.HandleConnect(func(s *melody.Session) {
		id, _ := s.Get(sessionKey)
		n.log.Debug().Interface(sessionKey, id).Msg("client connected")
	})
	m.HandleDisconnect(func(s *melody.Session) {
		id, _ := s.Get(sessionKey)
		n.log.Debug().Interface(sessionKey, id).Msg("client disconnected")
	})
	m.HandleError(func(s *melody.Session, err error) {
		n.log.Warn().Err(err).Msg("websocket error")
	})
	return n
}

// Serve upgrades the request and binds the socket to sessionID.
func (n *Notifier) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	return n.m.HandleRequestWithKeys(w, r, map[string]any{sessionKey: sessionID})
}

// Deliver sends the event to every socket of the event's scope.
func (n *Notifier) Deliver(_ context.Context, e query.Event) error {
	msg, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return n.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, ok := s.Get(sessionKey)
		return ok && id == e.Scope
	})
}

// Len reports the number of connected sockets.
func (n *Notifier) Len() int { return n.m.Len() }

// Close disconnects every socket.
func (n *Notifier) Close() error { return n.m.Close() }
