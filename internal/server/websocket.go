package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/hollowpine/greybarrow/internal/game"
	"github.com/hollowpine/greybarrow/internal/logger"
)

// handleWebSocketUpgrade upgrades GET /ws to a WebSocket session. The player
// binds once, via the X-Player-ID header or the player_id query parameter;
// every text frame after that is either a JSON action envelope or a free-text
// command line.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	playerID := r.Header.Get(playerIDHeader)
	if playerID == "" {
		playerID = r.URL.Query().Get("player_id")
	}

	go s.serveWebSocket(conn, playerID)
}

// serveWebSocket runs one WebSocket session to completion.
func (s *Server) serveWebSocket(conn *websocket.Conn, playerID string) {
	defer conn.Close()

	if s.cfg.WebSocket.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.WebSocket.MaxMessageSize)
	}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.applyFrame(playerID, payload)

		// A session with no bound player adopts the one it just created.
		if playerID == "" && resp.OK && resp.State != nil && resp.State.Player != nil {
			playerID = resp.State.Player.ID
		}

		data, err := json.Marshal(resp)
		if err != nil {
			logger.Errorf("Failed to marshal response: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("WebSocket write failed", "error", err)
			return
		}
	}
}

// applyFrame routes a frame by shape: JSON objects are action envelopes,
// anything else is a command line.
func (s *Server) applyFrame(playerID string, payload []byte) *game.Response {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		return s.engine.Apply(playerID, payload)
	}
	return s.engine.ApplyCommand(playerID, text)
}
