// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "wakeup/internal/log"
)

const (
	broadcastBuffer = 256
	writeTimeout    = time.Second
)

// WebSocketTransport broadcasts events as JSON to every connected client
// on the /ws endpoint.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketTransport creates the transport and starts its broadcaster.
// The caller serves Handler on its own HTTP server.
func NewWebSocketTransport() *WebSocketTransport {
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Dashboards are served from anywhere on the LAN.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, broadcastBuffer),
		done:      make(chan struct{}),
	}

	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client connected, total: %d", total)

	go wst.readLoop(conn)
}

// readLoop drains client frames so pings and close frames are answered.
// Anything a client sends is ignored; the first read error removes it.
func (wst *WebSocketTransport) readLoop(conn *websocket.Conn) {
	defer wst.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			applog.Debugf("WebSocketTransport: Client read ended: %v", err)
			return
		}
	}
}

func (wst *WebSocketTransport) remove(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	if ok {
		conn.Close()
		applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
	}
}

// handleBroadcasts sends queued events to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case event := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteJSON(event); err != nil {
					applog.Warnf("WebSocketTransport: Error sending to client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Send queues the event for broadcast. When the queue is full the event is
// dropped so the listener never waits on slow clients.
func (wst *WebSocketTransport) Send(event Event) error {
	select {
	case <-wst.done:
		return ErrClosed
	default:
	}

	select {
	case wst.broadcast <- event:
	default:
		applog.Debugf("WebSocketTransport: Broadcast queue full, dropping %s event", event.Kind)
	}
	return nil
}

// Close stops broadcasting and disconnects all clients.
func (wst *WebSocketTransport) Close() error {
	wst.closeOnce.Do(func() {
		applog.Infof("WebSocketTransport: Closing")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()
	})
	return nil
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
