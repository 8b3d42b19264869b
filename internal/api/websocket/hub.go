package websocket

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and fans out live updates to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log zerolog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws-hub").Logger(),
	}
}

// Run starts the hub's main loop. It returns when Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop terminates the run loop and closes all client connections.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast sends a message to all connected clients. Non-blocking: if the
// broadcast buffer is full the message is dropped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn().Msg("broadcast buffer full, dropping message")
	}
}

// ClientCount returns the number of active clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.log.Info().Int("total", len(h.clients)).Msg("client connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Info().Int("total", len(h.clients)).Msg("client disconnected")
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- message:
		default:
			// Client buffer full, too slow to keep.
			h.log.Warn().Msg("client buffer full, disconnecting")
			go func(c *Client) { h.unregister <- c }(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.Info().Int("clients", len(h.clients)).Msg("shutting down hub")
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
