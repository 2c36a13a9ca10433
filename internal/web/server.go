// Package web exposes the running visualizer over HTTP: catalogs, live
// settings updates, source switching and a websocket status feed.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/app"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
	"github.com/Ravikk-web/AURALIS-Ultra/internal/render"
)

const (
	statusInterval = 500 * time.Millisecond
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	writeWait      = 10 * time.Second
)

// Controller is the part of the application the server drives.
type Controller interface {
	Status() app.Status
	Store() *params.Store
	OpenSource(kind audio.SourceKind) error
	CloseSource() error
	SaveSettings() (string, error)
}

type Server struct {
	mu        sync.Mutex
	ctrl      Controller
	log       *log.Logger
	clients   map[*websocketClient]bool
	broadcast chan []byte
	upgrader  websocket.Upgrader
	mux       *http.ServeMux
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// UpdateRequest changes settings. Visualizer is applied first so Settings
// land in the newly selected visualizer's profile.
type UpdateRequest struct {
	Visualizer *int              `json:"visualizer,omitempty"`
	Reset      bool              `json:"reset,omitempty"`
	Defaults   *params.Overrides `json:"defaults,omitempty"`
	Settings   *params.Overrides `json:"settings,omitempty"`
	Palette    *string           `json:"palette,omitempty"`
}

// SourceRequest selects the capture source: "mic", "system" or "none".
type SourceRequest struct {
	Source string `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewServer returns a server for ctrl. A nil logger discards output.
func NewServer(ctrl Controller, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		ctrl:      ctrl,
		log:       logger,
		clients:   make(map[*websocketClient]bool),
		broadcast: make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/visualizers", s.handleVisualizers)
	s.mux.HandleFunc("/api/palettes", s.handlePalettes)
	s.mux.HandleFunc("/api/update", s.handleUpdate)
	s.mux.HandleFunc("/api/source", s.handleSource)
	s.mux.HandleFunc("/api/save", s.handleSave)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}

	go s.broadcastLoop(ctx)
	go s.statusUpdateLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	s.log.Printf("[web] control surface on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleVisualizers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, render.Catalog())
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, render.Palettes())
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.apply(req)
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) apply(req UpdateRequest) {
	store := s.ctrl.Store()
	if req.Visualizer != nil {
		store.SetVisualizer(render.Lookup(*req.Visualizer).ID)
	}
	if req.Reset {
		store.ResetProfile()
	}
	if req.Defaults != nil {
		store.UpdateDefaults(*req.Defaults)
	}
	if req.Settings == nil && req.Palette == nil {
		return
	}
	var o params.Overrides
	if req.Settings != nil {
		o = *req.Settings
	}
	if req.Palette != nil {
		o.Palette = req.Palette
	}
	store.Update(o)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if req.Source == "none" || req.Source == "off" {
		if err := s.ctrl.CloseSource(); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, s.ctrl.Status())
		return
	}

	kind, err := audio.ParseSourceKind(req.Source)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.ctrl.OpenSource(kind); err != nil {
		status, errKind := captureStatus(err)
		writeJSON(w, status, errorResponse{Error: err.Error(), Kind: errKind})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func captureStatus(err error) (int, string) {
	switch {
	case errors.Is(err, audio.ErrPermissionDenied):
		return http.StatusForbidden, "permission-denied"
	case errors.Is(err, audio.ErrUnsupportedSource):
		return http.StatusNotImplemented, "unsupported-source"
	case errors.Is(err, audio.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable, "device-unavailable"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path, err := s.ctrl.SaveSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "path": path})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("[web] websocket upgrade error: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(s.clients, client)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) statusUpdateLoop(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.clientCount() > 0 {
				s.publishStatus()
			}
		}
	}
}

// publishStatus queues the current status for every websocket client. It
// drops the message when the queue is full.
func (s *Server) publishStatus() {
	data, err := json.Marshal(s.ctrl.Status())
	if err != nil {
		return
	}
	select {
	case s.broadcast <- data:
	default:
	}
}

func (s *Server) removeClient(c *websocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
}

// readPump applies UpdateRequest messages sent by the client.
func (c *websocketClient) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var req UpdateRequest
		if err := json.Unmarshal(message, &req); err != nil {
			c.server.log.Printf("[web] ignoring websocket message: %v", err)
			continue
		}
		c.server.apply(req)
		c.server.publishStatus()
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
