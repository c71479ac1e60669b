package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub tracks all live client connections, one per account email.
type ConnectionHub struct {
	clients map[string]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[string]*Conn),
		l:       l,
	}
}

// Add registers a connection. An existing connection for the same email is
// closed first, so a reconnecting client replaces its stale socket.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.email]; ok {
		h.l.Warn(ctx,
			"replacing existing connection",
			"email", existing.email,
		)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx,
				"failed to close existing conn",
				"email", existing.email,
				"err", err.Error(),
			)
		}
	}

	h.clients[newConn.email] = newConn
	h.wg.Add(1)

	return nil
}

// Delete closes and removes the connection for the given email.
func (h *ConnectionHub) Delete(email string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	conn, ok := h.clients[email]
	if !ok {
		h.l.Warn(ctx,
			"delete called for unknown client",
			"email", email,
		)
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"email", conn.email,
			"err", err.Error(),
		)
	}

	delete(h.clients, email)
	h.wg.Done()

	return nil
}

// SendTo delivers a message to one client.
func (h *ConnectionHub) SendTo(email string, msg map[string]any) error {
	h.mu.Lock()
	conn, ok := h.clients[email]
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}
	return conn.Send(msg)
}

// Close shuts every connection down and waits for them to drain.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()

	for _, conn := range clients {
		_ = h.Delete(conn.email)
	}

	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

// GetConn returns the connection for the given email.
func (h *ConnectionHub) GetConn(email string) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[email]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}
