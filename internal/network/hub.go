// Package network exposes the sanctuary over WebSocket for the
// observatory front-end: state broadcasts, a live journal feed and
// steward actions.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nebulazenith/sanctuary/internal/chat"
	"github.com/nebulazenith/sanctuary/internal/engine"
	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
	"github.com/nebulazenith/sanctuary/internal/platform/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The observatory is a local toy; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger

	session    *engine.Session
	expedition *engine.ExpeditionSystem
	arcade     *engine.ArcadeSystem
	chat       *chat.Orchestrator
}

// Deps bundles the systems the hub routes actions to.
type Deps struct {
	Session    *engine.Session
	Expedition *engine.ExpeditionSystem
	Arcade     *engine.ArcadeSystem
	Chat       *chat.Orchestrator
	Logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub.
func NewHub(deps Deps) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     deps.Logger,
		session:    deps.Session,
		expedition: deps.Expedition,
		arcade:     deps.Arcade,
		chat:       deps.Chat,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down")
			close(h.done)
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ServerMessage is the envelope for every frame the hub sends.
type ServerMessage struct {
	Type    string      `json:"type"` // "STATE", "JOURNAL", "CHAT", "RESULT"
	Payload interface{} `json:"payload"`
}

// Broadcast serializes and fans out a server message.
func (h *Hub) Broadcast(msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(fmt.Sprintf("Failed to serialize hub message: %v", err))
		metrics.Get().RecordWSError()
		return
	}
	// The poller and client handlers may outlive the hub loop briefly
	// during shutdown; never let them hang on a dead channel.
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// BroadcastState pushes the current derived view to all watchers.
func (h *Hub) BroadcastState(now time.Time) {
	view := h.session.View(context.Background(), now)
	h.Broadcast(ServerMessage{Type: "STATE", Payload: map[string]interface{}{
		"snapshot":  view.Snapshot,
		"mood":      view.Mood,
		"mood_line": view.MoodLine,
		"avatar":    view.Avatar,
		"trait":     view.Trait,
	}})
}

// StartEventPoller polls the journal and pushes new entries to clients.
// Runs independently of the heartbeat while seeing the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				all := eventLog.Replay()
				if len(all) > lastProcessed {
					for _, event := range all[lastProcessed:] {
						h.Broadcast(ServerMessage{Type: "JOURNAL", Payload: event})
					}
					lastProcessed = len(all)
				}
			}
		}
	}()
}

// ServeWS upgrades an HTTP request and attaches the client to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(fmt.Sprintf("WebSocket upgrade failed: %v", err))
		metrics.Get().RecordWSError()
		return
	}

	client := NewClient(h, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
