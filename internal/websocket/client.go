package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// sendBuffer is the number of frames queued per client before events
	// for it are dropped
	sendBuffer = 256
)

// Client is one connected dashboard or candidate page. It only ever sends
// subscription changes; everything else flows from the hub to the page.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a client for an upgraded connection. It logs through
// the hub's logger.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Serve runs the connection until the peer goes away. The caller must have
// registered the client with the hub.
func (c *Client) Serve() {
	go c.writeFrames()
	c.readRequests()
}

func (c *Client) readRequests() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.debug("subscriber connection lost", slog.Any("error", err))
			}
			return
		}
		c.handleMessage(data)
	}
}

// writeFrames forwards queued frames and keeps the connection alive with
// pings. It exits when the hub closes send or a write fails.
func (c *Client) writeFrames() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind    = websocket.TextMessage
			payload []byte
		)
		select {
		case frame, open := <-c.send:
			if !open {
				c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			payload = frame
		case <-ping.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, payload); err != nil {
			c.hub.debug("subscriber write failed", slog.Any("error", err))
			return
		}
	}
}

// handleMessage applies one subscription request
func (c *Client) handleMessage(data []byte) {
	var req WSMessage
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply("invalid message format")
		return
	}

	var apply func(*Client, uint)
	switch req.Type {
	case MessageTypeSubscribe:
		apply = c.hub.Subscribe
	case MessageTypeUnsubscribe:
		apply = c.hub.Unsubscribe
	default:
		c.reply("unknown message type")
		return
	}

	if req.ApplicationID == nil {
		c.reply("application_id is required")
		return
	}
	apply(c, *req.ApplicationID)
}

// reply queues an error frame. Clients the hub has already dropped get
// nothing, since their send channel is closed.
func (c *Client) reply(errMsg string) {
	data, err := json.Marshal(WSMessage{Type: MessageTypeError, Error: errMsg})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}

	select {
	case c.send <- data:
	default:
		c.hub.debug("subscriber queue full, error reply dropped", slog.String("error", errMsg))
	}
}
