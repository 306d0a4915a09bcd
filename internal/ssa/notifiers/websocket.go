package notifiers

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/daniacca/stochchem/internal/ssa"
	"github.com/gorilla/websocket"
)

// WebSocketNotifier streams engine events as JSON text messages to every
// connected WebSocket client. It implements ssa.Observer and http.Handler.
type WebSocketNotifier struct {
	id         string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan ssa.Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	dropped    atomic.Uint64
}

// NewWebSocketNotifier creates a new WebSocket notifier
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	notifier := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan ssa.Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	notifier.wg.Add(1)
	go notifier.run()

	return notifier
}

// ID returns the notifier ID
func (wsn *WebSocketNotifier) ID() string {
	return wsn.id
}

// Clients returns the number of connected clients.
func (wsn *WebSocketNotifier) Clients() int {
	wsn.mu.RLock()
	defer wsn.mu.RUnlock()
	return len(wsn.clients)
}

// Dropped returns how many events were discarded because the queue was full.
func (wsn *WebSocketNotifier) Dropped() uint64 {
	return wsn.dropped.Load()
}

// ObserveEvent queues the event for broadcast. It never blocks the engine: when
// the queue is full the event is dropped and counted.
func (wsn *WebSocketNotifier) ObserveEvent(ev ssa.Event) {
	select {
	case <-wsn.done:
		return
	default:
	}
	select {
	case wsn.broadcast <- ev:
	default:
		wsn.dropped.Add(1)
	}
}

// ServeHTTP upgrades the request to a WebSocket and keeps the client
// registered until it disconnects.
func (wsn *WebSocketNotifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsn.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		return
	}

	select {
	case wsn.register <- conn:
	case <-wsn.done:
		conn.Close()
		return
	}

	// Clients only listen; reading detects the close frame or a dropped link.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			select {
			case wsn.unregister <- conn:
			case <-wsn.done:
			}
			return
		}
	}
}

// run handles client registration/unregistration and message broadcasting
func (wsn *WebSocketNotifier) run() {
	defer wsn.wg.Done()
	for {
		select {
		case <-wsn.done:
			return

		case conn := <-wsn.register:
			wsn.mu.Lock()
			wsn.clients[conn] = true
			wsn.mu.Unlock()

		case conn := <-wsn.unregister:
			wsn.mu.Lock()
			if _, ok := wsn.clients[conn]; ok {
				delete(wsn.clients, conn)
				conn.Close()
			}
			wsn.mu.Unlock()

		case ev := <-wsn.broadcast:
			jsonData, err := ev.JSON()
			if err != nil {
				continue
			}

			// Collect connections to write to (to avoid holding lock during write)
			wsn.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(wsn.clients))
			for conn := range wsn.clients {
				conns = append(conns, conn)
			}
			wsn.mu.RUnlock()

			var toRemove []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
					toRemove = append(toRemove, conn)
					conn.Close()
				}
			}

			if len(toRemove) > 0 {
				wsn.mu.Lock()
				for _, conn := range toRemove {
					delete(wsn.clients, conn)
				}
				wsn.mu.Unlock()
			}
		}
	}
}

// Flush waits until every queued event has been written or timeout elapses.
// It returns false on timeout.
func (wsn *WebSocketNotifier) Flush(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for len(wsn.broadcast) > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
	return true
}

// Close closes all WebSocket connections and stops the goroutine
func (wsn *WebSocketNotifier) Close() error {
	wsn.closeOnce.Do(func() {
		close(wsn.done)
		wsn.wg.Wait()

		wsn.mu.Lock()
		for conn := range wsn.clients {
			conn.Close()
			delete(wsn.clients, conn)
		}
		wsn.mu.Unlock()
	})
	return nil
}
