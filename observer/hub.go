// Package observer streams fleet snapshots to spectators over websockets.
package observer

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans snapshots out to every connected spectator. Slow spectators
// miss frames rather than slowing the fleet down.
type Hub struct {
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only, see Handler
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues s for every spectator.
func (h *Hub) Broadcast(s Snapshot) {
	b, err := json.Marshal(s)
	if err != nil {
		slog.Error("marshal snapshot", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.clients {
		select {
		case out <- b:
		default:
			// spectator is behind; drop the frame
		}
	}
}

func (h *Hub) join() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	out := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[id] = out
	h.mu.Unlock()
	return id, out
}

func (h *Hub) leave(id uint64) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// Handler upgrades loopback requests and streams snapshots until the
// spectator disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out := h.join()
		defer h.leave(id)
		slog.Info("spectator joined", "id", id)

		// Reader: spectators send nothing, but reading surfaces the close.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				slog.Info("spectator left", "id", id)
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

// Serve runs an HTTP server exposing the hub at /ws until srv is shut down.
func Serve(addr string, h *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", h.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observer server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Info("observer listening", "addr", addr)
	return srv
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
