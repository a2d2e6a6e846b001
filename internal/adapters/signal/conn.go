package signal

import (
	"errors"
	"sync"
	"time"
)

var ErrBackpressure = errors.New("backpressure")

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Conn wraps one websocket with a buffered outbound queue. TrySend never
// blocks; a full queue is a backpressure error the room treats as a
// delivery failure.
type Conn struct {
	conn WSConn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewConn(ws WSConn, buffer int) *Conn {
	return &Conn{
		conn: ws,
		send: make(chan []byte, buffer),
	}
}

func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
