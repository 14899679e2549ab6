// Package web exposes the live tunables and engine status over HTTP and
// websocket so a browser panel can steer the visuals remotely.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/params"
	"github.com/riazmb01/Audio-Canvas/internal/render"
)

// AppInterface is what the server needs from the host application.
type AppInterface interface {
	Settings() params.Settings
	ApplySettings(params.Settings)
	Status() (analyzer.Features, float64)
}

// StatusResponse is the JSON shape pushed to clients.
type StatusResponse struct {
	FPS        float64           `json:"fps"`
	Features   analyzer.Features `json:"features"`
	Settings   params.Settings   `json:"settings"`
	ColorModes []string          `json:"colorModes"`
}

// UpdateRequest is a partial settings patch; nil fields are left untouched.
// Out-of-range values are clamped, never rejected.
type UpdateRequest struct {
	ParticleCount    *int     `json:"particleCount,omitempty"`
	FieldStrength    *float64 `json:"fieldStrength,omitempty"`
	NoiseScale       *float64 `json:"noiseScale,omitempty"`
	TimeScale        *float64 `json:"timeScale,omitempty"`
	Drag             *float64 `json:"drag,omitempty"`
	ColorMode        *string  `json:"colorMode,omitempty"`
	ColorSensitivity *float64 `json:"colorSensitivity,omitempty"`
	BeatSensitivity  *float64 `json:"beatSensitivity,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
}

// Server broadcasts status and accepts tunable updates.
type Server struct {
	app      AppInterface
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer creates a Server around the host application.
func NewServer(app AppInterface, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		app:     app,
		log:     logger,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/update", s.handleUpdate)
	mux.HandleFunc("/ws", s.handleWebSocket)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go s.broadcastLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Printf("control server on http://0.0.0.0:%d", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) status() StatusResponse {
	feat, fps := s.app.Status()
	return StatusResponse{
		FPS:        fps,
		Features:   feat,
		Settings:   s.app.Settings(),
		ColorModes: render.ColorModeNames(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := s.app.Settings()
	applyPatch(&cfg, req)
	s.app.ApplySettings(cfg)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status())
}

func applyPatch(cfg *params.Settings, req UpdateRequest) {
	if req.ParticleCount != nil {
		cfg.ParticleCount = *req.ParticleCount
	}
	if req.FieldStrength != nil {
		cfg.FieldStrength = *req.FieldStrength
	}
	if req.NoiseScale != nil {
		cfg.NoiseScale = *req.NoiseScale
	}
	if req.TimeScale != nil {
		cfg.TimeScale = *req.TimeScale
	}
	if req.Drag != nil {
		cfg.Drag = *req.Drag
	}
	if req.ColorMode != nil {
		cfg.ColorMode = *req.ColorMode
	}
	if req.ColorSensitivity != nil {
		cfg.ColorSensitivity = *req.ColorSensitivity
	}
	if req.BeatSensitivity != nil {
		cfg.BeatSensitivity = *req.BeatSensitivity
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Reader loop: clients may push UpdateRequest patches over the socket.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			var req UpdateRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			cfg := s.app.Settings()
			applyPatch(&cfg, req)
			s.app.ApplySettings(cfg)
		}
	}()
}

func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, err := json.Marshal(s.status())
			if err != nil {
				continue
			}
			s.mu.Lock()
			for conn := range s.clients {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					delete(s.clients, conn)
					_ = conn.Close()
				}
			}
			s.mu.Unlock()
		}
	}
}
