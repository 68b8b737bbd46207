package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/registry"
)

// client is one websocket connection. Frames are queued on send and written
// by writePump; a full queue closes the connection.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	writeWait time.Duration
	pongWait  time.Duration
	logger    *slog.Logger

	mu       sync.RWMutex
	joined   bool
	roomCode string
	member   registry.Member
}

func newClient(conn *websocket.Conn, cfg *Config, logger *slog.Logger) *client {
	return &client{
		conn:      conn,
		send:      make(chan []byte, cfg.SendBufferSize),
		done:      make(chan struct{}),
		writeWait: cfg.WriteWait,
		pongWait:  cfg.PongWait,
		logger:    logger,
	}
}

func (c *client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn("send buffer is full, closing connection", "room_code", c.getRoomCode())
		c.Close()
		return false
	}
}

func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *client) setJoined(roomCode string, member registry.Member) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.joined = true
	c.roomCode = roomCode
	c.member = member
}

func (c *client) isJoined() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.joined
}

func (c *client) getRoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.roomCode
}

func (c *client) getMember() registry.Member {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.member
}

func (c *client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// writePump owns all writes to the connection and pings it every
// pongWait*9/10. It closes the socket on exit.
func (c *client) writePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("failed to write frame", "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to write ping", "error", err)
				c.Close()
				return
			}
		case <-c.done:
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump reads frames until the connection fails, is closed, or stays
// silent for longer than pongWait. handle runs for every frame in order.
func (c *client) readPump(ctx context.Context, maxMessageSize int64, handle func(context.Context, []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.InfoContext(ctx, "websocket read failed", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

		handle(ctx, data)
	}
}
