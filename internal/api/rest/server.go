// Package rest exposes the bot's query pipelines over a small read-only HTTP
// API, plus the ingress endpoints the chat relay calls for commands and
// button callbacks.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is the REST API server.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer builds the router and wires middleware.
func NewServer(port string, handler *Handler, log zerolog.Logger) *Server {
	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Read-only queries
	api.HandleFunc("/last-result", handler.GetLastResult).Methods("GET")
	api.HandleFunc("/next-matches", handler.GetNextMatches).Methods("GET")
	api.HandleFunc("/next-match", handler.GetNextMatch).Methods("GET")
	api.HandleFunc("/scoreboard", handler.GetScoreboard).Methods("GET")
	api.HandleFunc("/live-sessions", handler.GetLiveSessions).Methods("GET")

	// Chat-relay ingress
	api.HandleFunc("/chats/{chatID}/command", handler.PostCommand).Methods("POST")
	api.HandleFunc("/chats/{chatID}/callback", handler.PostCallback).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
