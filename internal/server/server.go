// Package server provides the local HTTP status server for pinchpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/gesture"
	"github.com/ayusman/pinchpoint/internal/server/api"
	"github.com/ayusman/pinchpoint/internal/store"
)

// Status is a snapshot of the controller published over HTTP and the websocket.
type Status struct {
	Enabled    bool            `json:"enabled"`
	Phase      gesture.Phase   `json:"phase"`
	X          int             `json:"x"`
	Y          int             `json:"y"`
	Hold       float64         `json:"hold"`
	Missed     int             `json:"missed"`
	Frames     uint64          `json:"frames"`
	SessionID  string          `json:"session_id,omitempty"`
	LastIntent *gesture.Intent `json:"last_intent,omitempty"`
}

// Controller is the part of the running app the server exposes.
type Controller interface {
	Status() Status
	SetEnabled(enabled bool)
}

// Config holds the server configuration.
type Config struct {
	Store      *store.Store
	Controller Controller
	Hub        *Hub
}

// Server represents the HTTP server for the pinchpoint application.
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

	if s.config.Controller != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
	}

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	writeJSON(w, http.StatusOK, response)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleStatus serves GET /api/status and accepts POST {"enabled": bool}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req setEnabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		s.config.Controller.SetEnabled(*req.Enabled)
		log.WithField("enabled", *req.Enabled).Info("Tracking toggled over HTTP")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.config.Controller.Status())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if s.config.Hub != nil {
			s.config.Hub.Close()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
