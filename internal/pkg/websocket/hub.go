package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/portfoliohub/internal/pkg/events"
)

// EnvelopeEvent is the event name every broadcast frame carries
const EnvelopeEvent = "portfolio_update"

// Envelope is the frame written to every connected client
type Envelope struct {
	Event   string       `json:"event"`
	Payload events.Event `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts portfolio updates to all of them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound updates waiting for the run loop
	broadcast chan events.Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Guards clients for readers outside the run loop
	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}

	// Per-client outbound buffer size
	sendBuffer int

	logger zerolog.Logger
}

// NewHub creates a new Hub instance. sendBuffer sizes both the hub queue and each client queue.
func NewHub(sendBuffer int, logger zerolog.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Hub{
		broadcast:  make(chan events.Event, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ev := <-h.broadcast:
			h.broadcastEvent(ev)
		}
	}
}

// Publish queues ev for broadcast. When the queue is full the update is dropped
// so the caller is never held up by slow consumers.
func (h *Hub) Publish(ev events.Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn().
			Str("kind", string(ev.Kind)).
			Str("studentId", ev.StudentID).
			Msg("Broadcast queue full, dropping portfolio update")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.logger.Info().
		Str("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		h.logger.Info().
			Str("userID", client.userID).
			Str("addr", client.conn.RemoteAddr().String()).
			Msg("Client unregistered")
	}
}

// broadcastEvent runs on the hub goroutine only
func (h *Hub) broadcastEvent(ev events.Event) {
	data, err := json.Marshal(Envelope{Event: EnvelopeEvent, Payload: ev})
	if err != nil {
		h.logger.Error().Err(err).Str("kind", string(ev.Kind)).Msg("Failed to marshal portfolio update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer: drop it rather than stall everyone else
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn().Str("userID", client.userID).Msg("Client send buffer full, disconnecting")
		}
	}

	h.logger.Debug().
		Str("kind", string(ev.Kind)).
		Int("clientCount", len(h.clients)).
		Msg("Portfolio update broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// ClientsCount returns the number of connected clients
func (h *Hub) ClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
