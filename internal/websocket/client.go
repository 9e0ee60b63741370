package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
	sendBufferSize = 256
)

// Client is one change-feed connection belonging to a user
type Client struct {
	id        string
	userID    int32
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, userID int32, hub *Hub) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// UserID returns the user the connection was authenticated as
func (c *Client) UserID() int32 {
	return c.userID
}

// Send queues data for the write loop. A full buffer drops the message
// and reports the client as closed.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close closes the connection. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// IsClosed reports whether Close has been called
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Run registers the client and blocks until the connection ends
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writeLoop()
	c.readLoop()
}

// readLoop only services control frames; the feed is server to client
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Int32("user_id", c.userID).Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Int32("user_id", c.userID).Msg("WebSocket write error")
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
