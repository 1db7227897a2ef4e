package live

import (
	"context"
	"errors"
	"live-poll/contract"
	"live-poll/domain"
	domainerrors "live-poll/errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

var _ contract.Connection = (*Connection)(nil)

// transport is the subset of *websocket.Conn a Connection drives.
type transport interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Connection wraps one websocket with a bounded outbound queue.
// Send never blocks: a full queue means the client is too slow and the
// connection is closed instead of stalling the broadcaster.
type Connection struct {
	id           string
	userID       domain.UserID
	log          *slog.Logger
	conn         transport
	outbound     chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration

	mu      sync.Mutex
	onClose []func()
}

func NewConnection(log *slog.Logger, conn transport, userID domain.UserID, bufferSize int, writeTimeout time.Duration) *Connection {
	id := uuid.NewString()
	return &Connection{
		id:           id,
		userID:       userID,
		log:          log.With("connection_id", id),
		conn:         conn,
		outbound:     make(chan []byte, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

func (c *Connection) ID() string { return c.id }

// UserID reports the identity bound at connect time; false for anonymous viewers.
func (c *Connection) UserID() (domain.UserID, bool) {
	return c.userID, c.userID != ""
}

// OnClose registers a callback run once when the connection closes, whatever the cause.
func (c *Connection) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = append(c.onClose, fn)
}

func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return domainerrors.ErrConnectionClosed
	default:
	}

	select {
	case c.outbound <- payload:
		return nil
	case <-c.done:
		return domainerrors.ErrConnectionClosed
	default:
		c.Close(websocket.StatusPolicyViolation, "client too slow")
		return domainerrors.ErrConnectionSaturated
	}
}

func (c *Connection) Done() <-chan struct{} { return c.done }

// Close is idempotent. Callbacks registered with OnClose run on the first call,
// before it returns. The close handshake with the peer runs in the background
// and can take several seconds against a client that stopped reading.
func (c *Connection) Close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		callbacks := c.onClose
		c.mu.Unlock()
		for _, fn := range callbacks {
			fn()
		}
		go func() {
			if err := c.conn.Close(code, reason); err != nil {
				c.log.Debug("Websocket close", "error", err)
			}
		}()
	})
}

// WriteLoop drains the outbound queue until ctx ends or the connection closes.
func (c *Connection) WriteLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
			return nil
		case <-c.done:
			return nil
		case msg := <-c.outbound:
			writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.log.Warn("Write failed, closing connection", "error", err)
				c.Close(websocket.StatusInternalError, "write failed")
				return err
			}
		}
	}
}

// ReadLoop hands every inbound message to handle until the peer goes away.
// A normal closure by the client is not an error.
func (c *Connection) ReadLoop(ctx context.Context, handle func(ctx context.Context, payload []byte)) error {
	defer c.Close(websocket.StatusNormalClosure, "")
	for {
		_, payload, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		handle(ctx, payload)
	}
}
