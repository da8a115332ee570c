package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// EventServer upgrades a request to the cache-event socket of a session.
type EventServer interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID string) error
}

// EventsHandler handles GET /v1/ws. Each socket only receives the
// invalidation events of its own session.
type EventsHandler struct {
	events EventServer
}

func NewEventsHandler(events EventServer) *EventsHandler {
	return &EventsHandler{events: events}
}

func (h *EventsHandler) Subscribe(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return h.events.Serve(c.Response(), c.Request(), s.ID)
}
