package api

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"statlab/internal"
)

// ProgressEvent reports how far a permutation run has got
type ProgressEvent struct {
	RunKey    string    `json:"run_key"`
	EventType string    `json:"event_type"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Progress  float64   `json:"progress"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types. Done and error end the stream.
const (
	EventProgress = "progress"
	EventDone     = "done"
	EventError    = "error"
)

func (e ProgressEvent) terminal() bool {
	return e.EventType == EventDone || e.EventType == EventError
}

type progressClient struct {
	runKey  string
	channel chan ProgressEvent
}

// ProgressHub fans permutation progress out to Server-Sent Events clients.
// Clients subscribe with the key they pass as ?progress= on the run request.
type ProgressHub struct {
	clients    map[string]map[chan ProgressEvent]bool
	clientsMu  sync.RWMutex
	register   chan progressClient
	unregister chan progressClient
	broadcast  chan ProgressEvent
	done       chan struct{}
	closeOnce  sync.Once
	keepAlive  time.Duration
	logger     *internal.Logger
}

// NewProgressHub creates a hub and starts its dispatch loop
func NewProgressHub(logger *internal.Logger) *ProgressHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &ProgressHub{
		clients:    make(map[string]map[chan ProgressEvent]bool),
		register:   make(chan progressClient, 10),
		unregister: make(chan progressClient, 10),
		broadcast:  make(chan ProgressEvent, 100),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
		logger:     logger.WithComponent("ProgressHub"),
	}

	go hub.run()
	return hub
}

func (h *ProgressHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.runKey] == nil {
				h.clients[client.runKey] = make(map[chan ProgressEvent]bool)
			}
			h.clients[client.runKey][client.channel] = true
			h.logger.Debug("client registered for %s (total clients: %d)", client.runKey, len(h.clients[client.runKey]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.runKey]; exists {
				delete(clients, client.channel)
				if len(clients) == 0 {
					delete(h.clients, client.runKey)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.RunKey] {
				select {
				case clientChan <- event:
				default:
					h.logger.Debug("client channel full for %s, skipping event", event.RunKey)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Broadcast queues an event for every client of its run key. Events are
// dropped rather than blocking the permutation loop.
func (h *ProgressHub) Broadcast(event ProgressEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Debug("broadcast channel full, dropping %s event", event.EventType)
	}
}

// subscribe registers client unless the hub is already closed
func (h *ProgressHub) subscribe(client progressClient) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *ProgressHub) unsubscribe(client progressClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Close stops the dispatch loop and ends every open stream
func (h *ProgressHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of subscribers for a run key
func (h *ProgressHub) ClientCount(runKey string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[runKey])
}

// HandleSSE streams progress events for ?run=<key> until the client leaves,
// the run reports done or error, or the hub closes.
func (h *ProgressHub) HandleSSE(c *gin.Context) {
	runKey := c.Query("run")
	if runKey == "" {
		c.JSON(400, gin.H{"error": "run parameter required", "code": "INVALID_INPUT"})
		return
	}

	clientChan := make(chan ProgressEvent, 10)
	client := progressClient{runKey: runKey, channel: clientChan}
	if !h.subscribe(client) {
		c.JSON(503, gin.H{"error": "progress streaming is shut down", "code": "UNAVAILABLE"})
		return
	}
	defer h.unsubscribe(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-clientChan:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(payload))
			return !event.terminal()

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status":"alive"}`)
			return true

		case <-ctx.Done():
			return false

		case <-h.done:
			return false
		}
	})
}
