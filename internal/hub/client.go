package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is one websocket subscriber to a classroom's event stream.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	code   string
	userID uint
	send   chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, code string, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		code:   code,
		userID: userID,
		send:   make(chan []byte, 64),
	}
}

func (c *Client) Code() string { return c.code }

func (c *Client) UserID() uint { return c.userID }

// CloseConn closes the underlying connection without going through the hub.
// Used when registration itself fails.
func (c *Client) CloseConn() {
	_ = c.conn.Close()
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump drains the connection so close frames and pongs are processed.
// Subscribers don't send application messages; anything inbound beyond
// control traffic is discarded.
func (c *Client) ReadPump() {
	defer func() {
		unregisterMsg := HubMessage{Type: "unregister", Client: c}
		select {
		case c.hub.messageChan <- unregisterMsg:
		case <-time.After(1 * time.Second):
			logrus.WithFields(logrus.Fields{"user_id": c.userID, "code": c.code}).
				Warn("Timeout sending unregister message to hub channel")
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "code": c.code})
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			return
		}
	}
}

// WritePump pushes queued events to the peer and keeps the connection alive
// with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": c.userID, "code": c.code}).
					WithError(err).Debug("WebSocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
