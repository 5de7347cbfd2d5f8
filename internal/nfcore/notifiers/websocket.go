package notifiers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amstokely/nfsim/internal/nfcore"
	"github.com/gorilla/websocket"
)

// WebSocketNotifier broadcasts firing events to every connected
// WebSocket client, for a live dashboard watching a running
// simulation.
type WebSocketNotifier struct {
	id         string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan nfcore.NotificationEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWebSocketNotifier creates a WebSocket notifier and starts its
// broadcast goroutine.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	n := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan nfcore.NotificationEvent, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	n.wg.Add(1)
	go n.run()
	return n
}

func (n *WebSocketNotifier) ID() string   { return n.id }
func (n *WebSocketNotifier) Type() string { return "websocket" }

// RegisterClient registers a new client connection to receive events.
func (n *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	select {
	case n.register <- conn:
	case <-n.done:
	}
}

// UnregisterClient drops a client connection.
func (n *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	select {
	case n.unregister <- conn:
	case <-n.done:
	}
}

func (n *WebSocketNotifier) Notify(ctx context.Context, event nfcore.NotificationEvent) error {
	select {
	case n.broadcast <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Second):
		return fmt.Errorf("notification queue full")
	}
}

func (n *WebSocketNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return
		case conn := <-n.register:
			if conn == nil {
				continue
			}
			n.mu.Lock()
			n.clients[conn] = true
			n.mu.Unlock()
		case conn := <-n.unregister:
			if conn == nil {
				continue
			}
			n.mu.Lock()
			if _, ok := n.clients[conn]; ok {
				delete(n.clients, conn)
				conn.Close()
			}
			n.mu.Unlock()
		case event, ok := <-n.broadcast:
			if !ok {
				return
			}
			jsonData, err := event.JSON()
			if err != nil {
				continue
			}
			n.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(n.clients))
			for conn := range n.clients {
				conns = append(conns, conn)
			}
			n.mu.RUnlock()

			var toRemove []*websocket.Conn
			for _, conn := range conns {
				if conn == nil {
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							toRemove = append(toRemove, conn)
						}
					}()
					conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
						toRemove = append(toRemove, conn)
						conn.Close()
					}
				}()
			}
			if len(toRemove) > 0 {
				n.mu.Lock()
				for _, conn := range toRemove {
					delete(n.clients, conn)
				}
				n.mu.Unlock()
			}
		}
	}
}

func (n *WebSocketNotifier) Close() error {
	close(n.done)

	n.mu.Lock()
	for conn := range n.clients {
		conn.Close()
		delete(n.clients, conn)
	}
	n.mu.Unlock()

	close(n.broadcast)
	close(n.register)
	close(n.unregister)
	n.wg.Wait()
	return nil
}

// GetUpgrader returns the WebSocket upgrader for the server's HTTP
// handler to use when accepting a new client connection.
func (n *WebSocketNotifier) GetUpgrader() websocket.Upgrader {
	return n.upgrader
}
