package realtime

import (
	"sync"
)

// Event is one change-feed notification pushed to connected clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	EventMessageCreated = "message.created"
	EventThreadCreated  = "thread.created"
)

// Client is one live subscription. The websocket handler owns the
// connection and drains Send; the hub never touches the network.
type Client struct {
	UserID uint
	Send   chan Event
}

// Hub tracks connected clients per user and fans events out to them.
// Publishing is fire-and-forget: a slow client drops events instead of
// blocking the sender, and delivery is at most once per client per event
// even when the same user id is listed more than once.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

var DefaultHub = NewHub()

func NewHub() *Hub {
	return &Hub{
		clients: map[uint]map[*Client]struct{}{},
	}
}

// AddClient registers a new subscription for the user.
func (h *Hub) AddClient(userID uint) *Client {
	c := &Client{
		UserID: userID,
		Send:   make(chan Event, 64),
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	return c
}

// RemoveClient deregisters a subscription. Safe to call twice; after
// removal the Send channel is closed and no further events arrive.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
}

// Publish delivers the event to every client of every listed user,
// once per client. Duplicate user ids are collapsed first.
func (h *Hub) Publish(userIDs []uint, ev Event) {
	seen := make(map[uint]struct{}, len(userIDs))

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, uid := range userIDs {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}

		for c := range h.clients[uid] {
			select {
			case c.Send <- ev:
			default:
				// slow client: drop rather than block the publisher
			}
		}
	}
}
