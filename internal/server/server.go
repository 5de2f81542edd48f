package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"wifiwatch/internal/config"
	"wifiwatch/internal/events"
	"wifiwatch/internal/metrics"
	"wifiwatch/internal/monitor"
	"wifiwatch/internal/storage"
)

// Server exposes the control surface over HTTP: settings get/set,
// status query, start/stop, the event feed, and metrics.
type Server struct {
	httpServer *http.Server
	monitor    *monitor.Monitor
	bus        *events.Bus
	store      *storage.SettingsStore
	stats      *metrics.Collector
}

// New wires the control surface routes. store and stats may be nil.
func New(addr string, mon *monitor.Monitor, bus *events.Bus, store *storage.SettingsStore, stats *metrics.Collector) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux},
		monitor:    mon,
		bus:        bus,
		store:      store,
		stats:      stats,
	}
	s.registerRoutes(mux)
	return s
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/monitoring/start", s.handleStart)
	mux.HandleFunc("/api/monitoring/stop", s.handleStop)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.Handle("/metrics", s.stats.Handler())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.monitor.Settings())
	case http.MethodPut:
		s.updateSettings(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var next config.Settings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON body"})
		return
	}
	if err := s.monitor.UpdateSettings(next); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	applied := s.monitor.Settings()
	if s.store != nil {
		if err := s.store.Save(applied); err != nil {
			// The new settings are live either way; persistence catches
			// up on the next successful save.
			log.Printf("server: persist settings: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "settings": applied})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.monitor.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.monitor.Start()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "monitoring": true})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.monitor.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "monitoring": false})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
