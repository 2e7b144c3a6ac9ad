package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/diagnostics"
)

func (s *Server) handleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.diagClients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	top := map[string]any{
		"width":      s.lay.Width,
		"height":     s.lay.Height,
		"serpentine": s.lay.Serpentine,
		"count":      s.lay.Count(),
	}
	b, _ := json.Marshal(top)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

// BroadcastFrame fans a rendered frame out to preview clients. Wired to the
// engine's frame hook; drops frames above the throttle rate.
func (s *Server) BroadcastFrame(rgb []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	now := time.Now()
	if now.Sub(s.lastEmit) < frameThrottle {
		return
	}
	s.lastEmit = now

	type frame struct {
		T   int64  `json:"t"`
		RGB []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: now.UnixNano(), RGB: rgb})
	for c := range s.clients {
		c.SetWriteDeadline(now.Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// BroadcastDiag pushes a diagnostic to every connected diag client.
func (s *Server) BroadcastDiag(d diagnostics.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := json.Marshal(d)
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write diag")
		}
	}
}
