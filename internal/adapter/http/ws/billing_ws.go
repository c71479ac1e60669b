package wshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/metrics"
	ws "github.com/arman-qz/parking-system/pkg/wsHub"
)

type SessionStatusProvider interface {
	GetActiveSession(ctx context.Context, driverEmail string) (*models.ActiveSessionStatus, error)
}

// BillingFeed streams the driver's live billing status over a websocket.
// The client gets a fresh charge figure every interval while its session
// runs; stopping the session ends the stream.
type BillingFeed struct {
	connections *ws.ConnectionHub
	sessions    SessionStatusProvider
	interval    time.Duration
	upgrader    websocket.Upgrader

	l logger.Logger
}

func NewBillingFeed(connections *ws.ConnectionHub, sessions SessionStatusProvider, interval time.Duration, log logger.Logger) *BillingFeed {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &BillingFeed{
		connections: connections,
		sessions:    sessions,
		interval:    interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: log,
	}
}

// HandleWS upgrades the request and starts streaming billing updates for
// the authenticated driver.
func (h *BillingFeed) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_billing_feed")

	principal := models.PrincipalFromContext(ctx)
	if principal.IsAnonymous() {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(ctx, "failed to upgrade websocket", err)
		return
	}

	conn := ws.NewConn(context.Background(), principal.Email, sock)
	if err := h.connections.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register websocket connection", err)
		_ = conn.Close()
		return
	}
	metrics.WebSocketConnectionsGauge.WithLabelValues(string(types.DriverService)).Inc()

	h.l.Info(ctx, "billing feed connected", "driver", principal.Email)

	// The feed is push-only; the read loop just keeps the connection's
	// close state current.
	go func() {
		_ = conn.Listen(func(any) error { return nil })
		h.disconnect(conn)
	}()

	go h.stream(conn)
}

func (h *BillingFeed) stream(conn *ws.Conn) {
	ctx := wrap.WithAction(context.Background(), "ws_billing_stream")
	ctx = wrap.WithUserEmail(ctx, conn.Email())

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer h.disconnect(conn)

	for {
		select {
		case <-conn.Done():
			return
		case <-ticker.C:
			status, err := h.sessions.GetActiveSession(ctx, conn.Email())
			if err != nil {
				if errors.Is(err, types.ErrSessionNotFound) {
					if sendErr := conn.Send(map[string]any{"type": "no_active_session"}); sendErr != nil {
						return
					}
					continue
				}
				h.l.Error(ctx, "failed to load active session for feed", err)
				continue
			}

			msg, err := toMessage(status)
			if err != nil {
				h.l.Error(ctx, "failed to encode billing update", err)
				continue
			}
			msg["type"] = "billing_update"

			if err := conn.Send(msg); err != nil {
				return
			}
		}
	}
}

func (h *BillingFeed) disconnect(conn *ws.Conn) {
	if err := h.connections.Delete(conn.Email()); err == nil {
		metrics.WebSocketConnectionsGauge.WithLabelValues(string(types.DriverService)).Dec()
	}
}

func toMessage(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}
