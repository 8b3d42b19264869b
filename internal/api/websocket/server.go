package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vbertoni/torcida/internal/pandascore"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server pushes live-match snapshots to WebSocket subscribers.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	log    zerolog.Logger
}

// NewServer creates a new WebSocket server.
func NewServer(log zerolog.Logger) *Server {
	return &Server{
		hub: NewHub(log),
		log: log.With().Str("component", "ws-server").Logger(),
	}
}

// Start starts the WebSocket server.
func (s *Server) Start(port string) error {
	s.port = port

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/live", s.handleLive)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	s.log.Info().Str("port", port).Msg("WebSocket server listening")
	return s.server.ListenAndServe()
}

// handleLive upgrades the connection and subscribes it to live updates.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastLive pushes a live snapshot for a tracked chat to all subscribers.
func (s *Server) BroadcastLive(chatID int64, snap *pandascore.LiveSnapshot) {
	payload, err := json.Marshal(map[string]any{
		"chat_id":  chatID,
		"snapshot": snap,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal live snapshot")
		return
	}
	s.hub.Broadcast(payload)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
