package network

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nebulazenith/sanctuary/internal/chat"
	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/domain/item"
	"github.com/nebulazenith/sanctuary/internal/engine"
	"github.com/nebulazenith/sanctuary/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Minimum interval between steward actions from one client.
	actionCooldown = time.Second
)

// Client represents an active WebSocket connection.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	lastActionTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// StewardAction represents an incoming command from the observatory.
type StewardAction struct {
	Type    string          `json:"type"` // "FEED", "BUY", "SLEEP", "WAKE", "CHAT", ...
	Payload json.RawMessage `json:"payload"`
}

// ReadPump pumps messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error(fmt.Sprintf("WebSocket read error: %v", err))
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action StewardAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse StewardAction from WebSocket: " + err.Error())
			continue
		}

		c.handleStewardAction(action)
	}
}

func (c *Client) handleStewardAction(action StewardAction) {
	now := time.Now()
	ctx := context.Background()

	// STATE requests are read-only and exempt from the cooldown.
	if action.Type == "STATE" {
		c.hub.BroadcastState(now)
		return
	}

	if now.Sub(c.lastActionTime) < actionCooldown {
		c.hub.logger.Warn("Rate limit exceeded for steward action " + action.Type)
		return
	}
	c.lastActionTime = now

	switch action.Type {
	case "FEED":
		c.handleFeed(ctx, action.Payload, now)
	case "BUY":
		c.handleBuy(ctx, action.Payload, now)
	case "SLEEP":
		c.result(string(c.hub.session.DeepSleep(ctx, now)))
		c.hub.BroadcastState(now)
	case "WAKE":
		c.result(string(c.hub.session.Wake(ctx, now)))
		c.hub.BroadcastState(now)
	case "CHAT":
		c.handleChat(ctx, action.Payload, now)
	case "EXPEDITION_LAUNCH":
		c.handleExpeditionLaunch(ctx, action.Payload, now)
	case "EXPEDITION_COLLECT":
		c.handleExpeditionCollect(ctx, now)
	case "ARCADE_DUEL":
		c.handleArcadeDuel(ctx, action.Payload, now)
	case "ARCADE_PULSE":
		c.handleArcadePulse(ctx, action.Payload, now)
	default:
		c.hub.logger.Warn("Unknown StewardAction type: " + action.Type)
	}
}

func (c *Client) handleFeed(ctx context.Context, rawPayload []byte, now time.Time) {
	var parsed struct {
		Item string `json:"item"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("Failed to parse feed payload")
		return
	}

	id := item.ID(parsed.Item)
	res := c.hub.session.Feed(ctx, id, now)
	if res == companion.ResultOK && c.hub.chat != nil {
		mood := c.hub.session.View(ctx, now).Mood
		c.hub.chat.QueueEventContext(chat.FeedingContext(id, mood))
	}
	c.result(string(res))
	c.hub.BroadcastState(now)
}

func (c *Client) handleBuy(ctx context.Context, rawPayload []byte, now time.Time) {
	var parsed struct {
		Item string `json:"item"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("Failed to parse buy payload")
		return
	}

	res := c.hub.session.Purchase(ctx, item.ID(parsed.Item), now)
	c.result(string(res))
	c.hub.BroadcastState(now)
}

func (c *Client) handleChat(ctx context.Context, rawPayload []byte, now time.Time) {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil || parsed.Text == "" {
		c.hub.logger.Warn("Failed to parse chat payload")
		return
	}

	snap := c.hub.session.Companion()
	comp := companion.FromSnapshot(snap)
	reply := c.hub.chat.Send(ctx, comp, parsed.Text, now)
	if reply.FellBack {
		metrics.Get().RecordLLMFallback()
	}

	c.send <- mustMarshal(ServerMessage{Type: "CHAT", Payload: map[string]interface{}{
		"text":      reply.Text,
		"fell_back": reply.FellBack,
		"reason":    string(reply.Reason),
	}})
}

func (c *Client) handleExpeditionLaunch(ctx context.Context, rawPayload []byte, now time.Time) {
	var parsed struct {
		Sector string `json:"sector"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("Failed to parse expedition payload")
		return
	}

	if err := c.hub.expedition.Launch(ctx, parsed.Sector, now); err != nil {
		c.result(err.Error())
		return
	}
	c.result("OK")
	c.hub.BroadcastState(now)
}

func (c *Client) handleExpeditionCollect(ctx context.Context, now time.Time) {
	sector, found, xp, err := c.hub.expedition.Collect(ctx, now)
	if err != nil {
		c.result(err.Error())
		return
	}
	if c.hub.chat != nil {
		mood := c.hub.session.View(ctx, now).Mood
		c.hub.chat.QueueEventContext(chat.ExpeditionContext(sector, mood, found))
	}
	c.send <- mustMarshal(ServerMessage{Type: "RESULT", Payload: map[string]interface{}{
		"status": "OK",
		"sector": sector,
		"item":   string(found),
		"xp":     xp,
	}})
	c.hub.BroadcastState(now)
}

func (c *Client) handleArcadeDuel(ctx context.Context, rawPayload []byte, now time.Time) {
	var parsed struct {
		Signal string `json:"signal"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("Failed to parse duel payload")
		return
	}

	out := c.hub.arcade.PlaySignalDuel(ctx, engine.Signal(parsed.Signal), now)
	c.send <- mustMarshal(ServerMessage{Type: "RESULT", Payload: out})
	c.hub.BroadcastState(now)
}

func (c *Client) handleArcadePulse(ctx context.Context, rawPayload []byte, now time.Time) {
	var parsed struct {
		Guess int `json:"guess"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("Failed to parse pulse payload")
		return
	}

	out := c.hub.arcade.PlayNumberPulse(ctx, parsed.Guess, now)
	c.send <- mustMarshal(ServerMessage{Type: "RESULT", Payload: out})
	c.hub.BroadcastState(now)
}

func (c *Client) result(status string) {
	c.send <- mustMarshal(ServerMessage{Type: "RESULT", Payload: map[string]string{"status": status}})
}

func mustMarshal(msg ServerMessage) []byte {
	b, err := json.Marshal(msg)
	if err != nil {
		return []byte(`{"type":"RESULT","payload":{"status":"encode_error"}}`)
	}
	return b
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
