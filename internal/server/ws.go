package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/posecue/internal/app"
	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/mailbox"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// BroadcastInterval paces status messages, about 15 per second.
const BroadcastInterval = 66 * time.Millisecond

// Message is one websocket frame sent to clients.
type Message struct {
	Type      string      `json:"type"` // "status" or "cue"
	Status    *app.Status `json:"status,omitempty"`
	Event     string      `json:"event,omitempty"`
	Signal    float64     `json:"signal,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Hub broadcasts pipeline status and cue events via WebSocket.
// Status updates are coalesced to the newest; cue events are sent as they
// happen and dropped only if a burst overflows the buffer.
type Hub struct {
	status  *mailbox.Slot[app.Status]
	cues    chan Message
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewHub creates a Hub and starts its broadcaster.
func NewHub() *Hub {
	h := &Hub{
		status:  mailbox.New[app.Status](),
		cues:    make(chan Message, 16),
		clients: make(map[*websocket.Conn]bool),
		stop:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// PublishStatus records the newest status. It never blocks.
func (h *Hub) PublishStatus(s app.Status) {
	h.status.Publish(s)
}

// PublishCue queues a cue event. It never blocks.
func (h *Hub) PublishCue(e cue.Event, signal float64) {
	msg := Message{Type: "cue", Event: e.String(), Signal: signal, Timestamp: time.Now().UnixMilli()}
	select {
	case h.cues <- msg:
	default:
		log.Warn("dropping cue message, clients too slow", "event", e.String())
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster and disconnects every client.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.stop)
		h.status.Close()

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.clients = make(map[*websocket.Conn]bool)
		h.mu.Unlock()
	})
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends queued cues immediately and the newest status on each tick.
func (h *Hub) broadcast() {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-h.stop:
			return
		case msg := <-h.cues:
			h.send(msg)
		case <-ticker.C:
			seq := h.status.Seq()
			if seq == sent {
				continue
			}
			sent = seq
			if s, ok := h.status.Latest(); ok {
				h.send(Message{Type: "status", Status: &s, Timestamp: time.Now().UnixMilli()})
			}
		}
	}
}

func (h *Hub) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to encode message", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug("websocket write failed", "err", err)
		}
	}
}
