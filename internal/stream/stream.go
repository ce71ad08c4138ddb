// Package stream broadcasts driver snapshots to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"grayscott/internal/core"
	"grayscott/internal/driver"
)

// Frame is the JSON message sent for every snapshot.
type Frame struct {
	Type  string     `json:"type"`
	Step  int        `json:"step"`
	Total int        `json:"total"`
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	U     []float32  `json:"u"`
	UStat core.Stats `json:"uStats"`
	VStat core.Stats `json:"vStats"`
}

// NewFrame converts a snapshot into a wire frame.
func NewFrame(s driver.Snapshot) Frame {
	u := make([]float32, len(s.U))
	for i, x := range s.U {
		u[i] = float32(x)
	}
	return Frame{
		Type:  "frame",
		Step:  s.Step,
		Total: s.Total,
		Rows:  s.Rows,
		Cols:  s.Cols,
		U:     u,
		UStat: s.UStats(),
		VStat: s.VStats(),
	}
}

const writeWait = 5 * time.Second

// Server keeps the set of connected clients and the latest frame.
type Server struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	lastMu sync.RWMutex
	last   *Frame
}

// NewServer returns a server with no clients. logger may be nil.
func NewServer(logger *log.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handler serves /ws for the stream and /snapshot for the latest frame as
// plain JSON.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Consume records s as the latest frame and sends it to every client.
// Clients that fail to receive are dropped; the run is never stopped by them.
func (s *Server) Consume(_ context.Context, snap driver.Snapshot) error {
	frame := NewFrame(snap)
	s.lastMu.Lock()
	s.last = &frame
	s.lastMu.Unlock()
	s.broadcast(&frame)
	return nil
}

func (s *Server) broadcast(frame *Frame) {
	s.clientsMu.RLock()
	var failed []*websocket.Conn
	for conn, mu := range s.clients {
		if err := send(conn, mu, frame); err != nil {
			s.logf("stream: dropping client %s: %v", conn.RemoteAddr(), err)
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			delete(s.clients, conn)
			conn.Close()
		}
		s.clientsMu.Unlock()
	}
}

func send(conn *websocket.Conn, mu *sync.Mutex, frame *Frame) error {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func (s *Server) latest() *Frame {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	frame := s.latest()
	if frame == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(frame); err != nil {
		s.logf("stream: snapshot: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("stream: upgrade: %v", err)
		return
	}
	defer conn.Close()

	mu := &sync.Mutex{}
	if frame := s.latest(); frame != nil {
		if err := send(conn, mu, frame); err != nil {
			return
		}
	}
	s.clientsMu.Lock()
	s.clients[conn] = mu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	// Clients do not send anything meaningful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
