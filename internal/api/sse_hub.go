package api

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"launchdash/domain/launch"

	"github.com/gin-gonic/gin"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan ViewEvent
}

// ViewEvent carries freshly recomputed views to a browser session
type ViewEvent struct {
	SessionID  string       `json:"session_id"`
	EventType  string       `json:"event_type"`
	Generation uint64       `json:"generation"`
	Views      launch.Views `json:"views"`
	Timestamp  time.Time    `json:"timestamp"`
}

// EventViews is the SSE event name used for view pushes
const EventViews = "views"

// keepAlive is how long a stream may stay silent before a ping is sent
var keepAlive = 30 * time.Second

// SSEHub fans recomputed views out to the streams of the owning session
type SSEHub struct {
	clients    map[string]map[chan ViewEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ViewEvent
	release    chan string
	done       chan struct{}
	stopOnce   sync.Once
}

// NewSSEHub creates a new SSE hub and starts its dispatch loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan ViewEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan ViewEvent, 100),
		release:    make(chan string, 10),
		done:       make(chan struct{}),
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan ViewEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			log.Printf("[SSE] Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				if clients[client.Channel] {
					delete(clients, client.Channel)
					close(client.Channel)
				}
				log.Printf("[SSE] Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case sessionID := <-h.release:
			h.clientsMu.Lock()
			clients := h.clients[sessionID]
			for clientChan := range clients {
				close(clientChan)
			}
			delete(h.clients, sessionID)
			h.clientsMu.Unlock()
			if len(clients) > 0 {
				log.Printf("[SSE] Closed %d streams of released session %s", len(clients), sessionID)
			}

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.SessionID] {
				select {
				case clientChan <- event:
				default:
					log.Printf("[SSE] Client channel full for session %s, skipping generation %d",
						event.SessionID, event.Generation)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Stop ends the dispatch loop
func (h *SSEHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast queues an event for every stream of event.SessionID
func (h *SSEHub) Broadcast(event ViewEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping %s event for session %s", event.EventType, event.SessionID)
	}
}

// Publish implements the session publisher: it wraps views in a ViewEvent
func (h *SSEHub) Publish(sessionID string, generation uint64, views launch.Views) {
	h.Broadcast(ViewEvent{
		SessionID:  sessionID,
		EventType:  EventViews,
		Generation: generation,
		Views:      views,
		Timestamp:  time.Now().UTC(),
	})
}

// Subscribe registers a stream for sessionID. The returned cancel func must
// be called when the stream ends.
func (h *SSEHub) Subscribe(sessionID string) (<-chan ViewEvent, func(), bool) {
	clientChan := make(chan ViewEvent, 10)
	client := SSEClient{SessionID: sessionID, Channel: clientChan}

	select {
	case h.register <- client:
	default:
		return nil, nil, false
	}

	cancel := func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}
	return clientChan, cancel, true
}

// Release closes every stream of sessionID. It blocks until the hub takes the
// request or stops.
func (h *SSEHub) Release(sessionID string) {
	select {
	case h.release <- sessionID:
	case <-h.done:
	}
}

// HandleSSE streams view events for the session named by the :id path param
func (h *SSEHub) HandleSSE(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(400, gin.H{"error": "session id required"})
		return
	}

	clientChan, cancel, ok := h.Subscribe(sessionID)
	if !ok {
		c.JSON(503, gin.H{"error": "SSE hub registration failed"})
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-clientChan:
			if !open {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(EventViews, string(eventJSON))
			return true

		case <-time.After(keepAlive):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetClientCount returns the number of active streams for a session
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}
