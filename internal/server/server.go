// Package server is the HTTP transport in front of the game engine. Every
// route is a thin shell: resolve the player ID, hand the payload to the
// engine, write the envelope back as JSON.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/hollowpine/greybarrow/internal/config"
	"github.com/hollowpine/greybarrow/internal/game"
	"github.com/hollowpine/greybarrow/internal/logger"
)

// playerIDHeader carries the acting player on every request except
// create_player.
const playerIDHeader = "X-Player-ID"

// maxActionBody caps the request body for the JSON action endpoint.
const maxActionBody = 64 * 1024

// Server serves the action API over HTTP and WebSocket.
type Server struct {
	cfg    *config.ServerConfig
	engine *game.Engine
	http   *http.Server
}

// New builds a server around an engine.
func New(cfg *config.ServerConfig, engine *game.Engine) *Server {
	s := &Server{cfg: cfg, engine: engine}

	mux := http.NewServeMux()
	mux.HandleFunc("/action", s.handleAction)
	mux.HandleFunc("/command", s.handleCommand)
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{Addr: cfg.Listen.Addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving the API until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	logger.Info("Server listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// handleAction is POST /action: one JSON action envelope in, one response
// envelope out.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resp := s.engine.Apply(r.Header.Get(playerIDHeader), payload)
	writeResponse(w, resp)
}

// handleCommand is POST /command: a free-text command line in the body, run
// through the parser before dispatch.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(string(body))
	resp := s.engine.ApplyCommand(r.Header.Get(playerIDHeader), text)
	writeResponse(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// writeResponse serializes an engine envelope. Game-level failures still
// return 200; the envelope's ok field is the contract.
func writeResponse(w http.ResponseWriter, resp *game.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Errorf("Failed to write response: %v", err)
	}
}
