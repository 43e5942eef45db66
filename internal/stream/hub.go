package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

const writeWait = 5 * time.Second

// ErrBacklog is returned by Publish when the broadcast queue is full.
var ErrBacklog = errors.New("stream: broadcast backlog full")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Snapshotter exposes the rolling history sent to a client on connect.
type Snapshotter interface {
	History() []domain.Reading
}

type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// Hub pushes every generated reading to connected websocket clients.
// New clients receive an "init" message with the current history, then one
// "update" message per reading.
type Hub struct {
	mux       *http.ServeMux
	history   Snapshotter
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan Message
	now       func() time.Time
}

func New(history Snapshotter) *Hub {
	h := &Hub{
		mux:       http.NewServeMux(),
		history:   history,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 256),
		now:       time.Now,
	}
	h.mux.HandleFunc("/ws", h.handleWebSocket)
	h.mux.HandleFunc("/healthz", h.handleHealthz)
	return h
}

func (h *Hub) Name() string { return "websocket" }

// Publish queues r for broadcast without blocking the refresh loop.
func (h *Hub) Publish(ctx context.Context, r domain.Reading) error {
	msg := Message{Type: "update", Data: r, Timestamp: h.now().Unix()}
	select {
	case h.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBacklog
	}
}

// Run delivers queued messages until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) Clients() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	// register after the init write, under the lock, so a broadcast never
	// interleaves with it
	h.clientsMu.Lock()
	init := Message{Type: "init", Data: h.history.History(), Timestamp: h.now().Unix()}
	if err := writeJSON(conn, init); err != nil {
		h.clientsMu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = true
	h.clientsMu.Unlock()
	log.Debug().Str("remote", r.RemoteAddr).Msg("stream client connected")

	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "online", "clients": h.Clients()})
}

func (h *Hub) send(msg Message) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for conn := range h.clients {
		if err := writeJSON(conn, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.clientsMu.Lock()
	delete(h.clients, conn)
	h.clientsMu.Unlock()
	conn.Close()
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
