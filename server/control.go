package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"grassrenderer/simulation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message types on the control socket
const (
	TypeStats   = "stats"
	TypeWind    = "wind"
	TypeSetWind = "setWind"
	TypeGetWind = "getWind"
	TypeError   = "error"
)

// Stats is the frame loop summary broadcast to every client
type Stats struct {
	Frames        uint64  `json:"frames"`
	FPS           float64 `json:"fps"`
	FrameTimeMs   float64 `json:"frameTimeMs"`
	SimTime       float32 `json:"simTime"`
	WindMagnitude float32 `json:"windMagnitude"`
	Blades        int     `json:"blades"`
	Paused        bool    `json:"paused"`
}

// Message is one frame on the control socket. Wind in a setWind message is
// merged over the current parameters, so clients may send only what changes.
type Message struct {
	Type  string              `json:"type"`
	Stats *Stats              `json:"stats,omitempty"`
	Wind  jsoniter.RawMessage `json:"wind,omitempty"`
	Error string              `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, any page may connect
	},
}

// ControlServer streams frame stats over websocket and accepts wind updates.
// It only touches the wind control and its own state, never GL objects.
type ControlServer struct {
	logger   *zap.Logger
	control  *simulation.WindControl
	addr     string
	interval time.Duration

	clients      map[*websocket.Conn]*sync.Mutex
	clientsMutex sync.RWMutex

	statsMutex sync.Mutex
	stats      Stats

	// WriteTimeout bounds every socket write so a stalled client is dropped
	// instead of holding up the broadcast
	WriteTimeout time.Duration

	// OnWindChange is called after every attempted wind update
	OnWindChange func(ok bool)
	// OnClients is called with the client count whenever it changes
	OnClients func(n int)
}

// NewControlServer creates a server listening on port
func NewControlServer(logger *zap.Logger, control *simulation.WindControl, port int, interval time.Duration) *ControlServer {
	return &ControlServer{
		logger:   logger,
		control:  control,
		addr:     net.JoinHostPort("", strconv.Itoa(port)),
		interval: interval,
		clients:  make(map[*websocket.Conn]*sync.Mutex),

		WriteTimeout: 2 * time.Second,
	}
}

// Handler serves /ws and /wind
func (s *ControlServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/wind", s.handleWind)
	return mux
}

// Publish stores the latest stats for the next broadcast
func (s *ControlServer) Publish(stats Stats) {
	s.statsMutex.Lock()
	s.stats = stats
	s.statsMutex.Unlock()
}

func (s *ControlServer) latestStats() Stats {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	return s.stats
}

// Run serves until ctx is done, broadcasting stats every interval
func (s *ControlServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Control server starting", zap.String("addr", s.addr))
		errc <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Broadcast()
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("control server: %w", err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.closeClients()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("control server shutdown: %w", err)
			}
			return nil
		}
	}
}

// Broadcast sends the latest stats to every client, dropping the ones that fail
func (s *ControlServer) Broadcast() {
	stats := s.latestStats()
	s.broadcast(Message{Type: TypeStats, Stats: &stats})
}

func (s *ControlServer) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to encode message", zap.Error(err))
		return
	}

	type target struct {
		conn  *websocket.Conn
		mutex *sync.Mutex
	}
	s.clientsMutex.RLock()
	targets := make([]target, 0, len(s.clients))
	for client, mutex := range s.clients {
		targets = append(targets, target{client, mutex})
	}
	s.clientsMutex.RUnlock()

	clientsToRemove := []*websocket.Conn{}
	for _, t := range targets {
		if err := s.write(t.conn, t.mutex, data); err != nil {
			s.logger.Debug("WebSocket write error", zap.Error(err))
			t.conn.Close()
			clientsToRemove = append(clientsToRemove, t.conn)
		}
	}

	if len(clientsToRemove) > 0 {
		s.clientsMutex.Lock()
		for _, client := range clientsToRemove {
			delete(s.clients, client)
		}
		n := len(s.clients)
		s.clientsMutex.Unlock()
		s.notifyClients(n)
	}
}

func (s *ControlServer) send(conn *websocket.Conn, msg Message) error {
	s.clientsMutex.RLock()
	mutex, ok := s.clients[conn]
	s.clientsMutex.RUnlock()
	if !ok {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.write(conn, mutex, data)
}

func (s *ControlServer) write(conn *websocket.Conn, mutex *sync.Mutex, data []byte) error {
	mutex.Lock()
	defer mutex.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *ControlServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	s.clientsMutex.Lock()
	s.clients[conn] = &sync.Mutex{}
	n := len(s.clients)
	s.clientsMutex.Unlock()
	s.notifyClients(n)
	defer func() {
		s.clientsMutex.Lock()
		_, present := s.clients[conn]
		delete(s.clients, conn)
		n := len(s.clients)
		s.clientsMutex.Unlock()
		if present {
			s.notifyClients(n)
		}
	}()

	if err := s.send(conn, s.windMessage()); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		if err := s.send(conn, s.handleMessage(data)); err != nil {
			return
		}
	}
}

// handleMessage returns the reply to one client message
func (s *ControlServer) handleMessage(data []byte) Message {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{Type: TypeError, Error: "malformed message: " + err.Error()}
	}
	switch msg.Type {
	case TypeGetWind:
		return s.windMessage()
	case TypeSetWind:
		if len(msg.Wind) == 0 {
			return Message{Type: TypeError, Error: "setWind without wind"}
		}
		if _, err := s.applyWind(msg.Wind); err != nil {
			return Message{Type: TypeError, Error: err.Error()}
		}
		return s.windMessage()
	default:
		return Message{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
}

// applyWind merges a partial JSON object over the current wind
func (s *ControlServer) applyWind(raw []byte) (simulation.WindParams, error) {
	params, err := s.control.Update(func(p *simulation.WindParams) error {
		if err := json.Unmarshal(raw, p); err != nil {
			return fmt.Errorf("malformed wind: %w", err)
		}
		return nil
	})
	ok := err == nil
	if s.OnWindChange != nil {
		s.OnWindChange(ok)
	}
	if ok {
		s.logger.Info("Wind updated from control client",
			zap.Float32("magnitude", params.Magnitude),
			zap.Float32("heading", params.Heading))
	}
	return params, err
}

func (s *ControlServer) windMessage() Message {
	params, _ := s.control.Snapshot()
	data, err := json.Marshal(params)
	if err != nil {
		return Message{Type: TypeError, Error: err.Error()}
	}
	return Message{Type: TypeWind, Wind: data}
}

// handleWind is the plain HTTP variant: GET reads, PUT merges
func (s *ControlServer) handleWind(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut, http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := s.applyWind(body); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.broadcast(s.windMessage())
	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	params, _ := s.control.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(params); err != nil {
		s.logger.Debug("Failed to write wind response", zap.Error(err))
	}
}

func (s *ControlServer) closeClients() {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
	s.notifyClients(0)
}

func (s *ControlServer) notifyClients(n int) {
	if s.OnClients != nil {
		s.OnClients(n)
	}
}
