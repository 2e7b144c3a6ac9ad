package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/color"
	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/layout"
	"github.com/cosmicled/cosmicled/internal/playlist"
	"github.com/cosmicled/cosmicled/internal/render"
)

// Preview frames go out at most every 50ms (~20 FPS) regardless of render
// rate, to keep browser clients from drowning.
const frameThrottle = 50 * time.Millisecond

// Server is the thin HTTP/websocket translation layer over the core API.
type Server struct {
	store    *config.Store
	reg      *render.Registry
	eng      *render.Engine
	palettes *color.Table
	lay      layout.Layout
	show     *playlist.Player

	mu          sync.Mutex
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	lastEmit    time.Time

	upgrader websocket.Upgrader
}

func New(store *config.Store, reg *render.Registry, eng *render.Engine, palettes *color.Table, lay layout.Layout, show *playlist.Player) *Server {
	return &Server{
		store:       store,
		reg:         reg,
		eng:         eng,
		palettes:    palettes,
		lay:         lay,
		show:        show,
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/palettes", s.handlePalettes)
	mux.HandleFunc("/api/program", s.handleProgram)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/show", s.handleShow)
	mux.HandleFunc("/api/show/stop", s.handleShowStop)
	mux.HandleFunc("/ws/frames", s.handleFramesWS)
	mux.HandleFunc("/ws/diag", s.handleDiagWS)
	return mux
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Snapshot())
	case http.MethodPost:
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		applied, rejected := s.store.Update(fields)
		writeJSON(w, http.StatusOK, map[string]any{
			"applied":  emptyNotNil(applied),
			"rejected": emptyNotNil(rejected),
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := map[string]any{
		"running":  true,
		"program":  s.reg.ActiveName(),
		"programs": s.reg.List(),
		"stats":    s.eng.Stats(),
		"config":   s.store.Snapshot(),
		"matrix": map[string]any{
			"width":      s.lay.Width,
			"height":     s.lay.Height,
			"serpentine": s.lay.Serpentine,
		},
	}
	if s.show != nil {
		status["show"] = map[string]any{
			"state":   s.show.State(),
			"current": s.show.Current(),
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.eng.Stats())
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"palettes": s.palettes.List()})
}

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing program name"})
		return
	}
	if err := s.reg.Activate(req.Name); err != nil {
		if errors.Is(err, render.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// Keep the stored parameter set in sync so a restart resumes the same
	// program.
	s.store.Update(map[string]any{"active_program": req.Name})
	writeJSON(w, http.StatusOK, map[string]string{"active": req.Name})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing program name"})
		return
	}
	if err := s.reg.LoadScript(req.Name, req.Source); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.Name})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	if s.show == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "playlist disabled"})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var show playlist.Show
	if err := json.NewDecoder(r.Body).Decode(&show); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := s.show.Load(show); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.show.Start()
	writeJSON(w, http.StatusOK, map[string]any{"state": s.show.State()})
}

func (s *Server) handleShowStop(w http.ResponseWriter, r *http.Request) {
	if s.show == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "playlist disabled"})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.show.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"state": s.show.State()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("response encode failed")
	}
}

func emptyNotNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
