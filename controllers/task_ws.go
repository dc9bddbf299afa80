package controller

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"taskhive/models"
)

// TaskEvent is what goes over the wire to subscribed clients.
type TaskEvent struct {
	Event string       `json:"event"` // task.created, task.updated, task.completed, task.deleted
	Task  *models.Task `json:"task"`
}

// EventHub fans task events out to connected users. Delivery is best-effort:
// events to slow consumers are dropped rather than blocking the request that
// produced them.
type EventHub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan TaskEvent]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[uint]map[chan TaskEvent]struct{}),
	}
}

func (h *EventHub) Subscribe(userID uint) chan TaskEvent {
	ch := make(chan TaskEvent, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan TaskEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

func (h *EventHub) Unsubscribe(userID uint, ch chan TaskEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.subs[userID]; ok {
		delete(conns, ch)
		if len(conns) == 0 {
			delete(h.subs, userID)
		}
	}
}

// Publish delivers the event to every connection of every listed user. The
// audience is computed by the caller from current engine state, so a revoked
// user stops receiving events the moment the grant disappears.
func (h *EventHub) Publish(event TaskEvent, userIDs []uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range userIDs {
		for ch := range h.subs[id] {
			select {
			case ch <- event:
			default:
				// Slow consumer, drop
			}
		}
	}
}

// HandleTaskEventsWS streams task events for the authenticated user.
func HandleTaskEventsWS(hub *EventHub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return
		}

		ch := hub.Subscribe(userID)
		defer hub.Unsubscribe(userID, ch)

		logrus.WithField("user_id", userID).Debug("task event stream opened")

		// Reader goroutine: we never expect client messages, but reading is
		// how we learn the peer went away.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event := <-ch:
				if err := c.WriteJSON(event); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
