// Package server provides the optional HTTP status server of handcursor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/handcursor/internal/server/api"
	"github.com/ayusman/handcursor/internal/store"
)

// shutdownTimeout bounds how long Run waits for open requests on shutdown.
// Streams and websockets end when their request context is cancelled.
const shutdownTimeout = 3 * time.Second

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Feed carries the live frames and pointer messages of the running loop.
	Feed *Feed
	// Mode names the running loop in the health response.
	Mode string
}

// Server represents the HTTP status server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store))
	}

	if s.config.Feed != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Feed.Frames()))
		s.mux.Handle("/api/pointer", NewPointerHandler(s.config.Feed.Hub()))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Mode != "" {
		response["mode"] = s.config.Mode
	}
	if s.config.Feed != nil {
		response["clients"] = s.config.Feed.Hub().Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
