package notify

import (
	"sync"

	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientBuffer = 16

type client struct {
	tables    map[string]bool
	sessionID string
	ch        chan model.ChangeEvent
}

// Hub fans change events out to streaming clients. Each client receives
// events for the tables it asked for plus auth events for its own session.
// A slow client loses events rather than blocking others; it resyncs on
// the next event it does receive.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*client)}
}

// Attach subscribes the hub to the bus.
func (h *Hub) Attach(bus *Bus) error {
	return bus.Subscribe(h.Dispatch)
}

// Subscribe registers a client. The returned cancel func must be called
// when the client goes away; it closes the channel.
func (h *Hub) Subscribe(tables []string, sessionID string) (<-chan model.ChangeEvent, func()) {
	id := uuid.New()
	c := &client{
		tables:    make(map[string]bool, len(tables)),
		sessionID: sessionID,
		ch:        make(chan model.ChangeEvent, clientBuffer),
	}
	for _, t := range tables {
		c.tables[t] = true
	}

	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, id)
			h.mu.Unlock()
			close(c.ch)
		})
	}
	return c.ch, cancel
}

func (h *Hub) Dispatch(ev model.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if !c.wants(ev) {
			continue
		}
		select {
		case c.ch <- ev:
		default:
			log.Warn().Str("client", id.String()).Str("table", ev.Table).Msg("dropping change event for slow client")
		}
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *client) wants(ev model.ChangeEvent) bool {
	if ev.Table == model.TableAuth {
		return ev.SessionID != "" && ev.SessionID == c.sessionID
	}
	return c.tables[ev.Table]
}
