package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arman-qz/parking-system/config"
	"github.com/arman-qz/parking-system/internal/adapter/http/handler"
	"github.com/arman-qz/parking-system/internal/adapter/http/middleware"
	wshandler "github.com/arman-qz/parking-system/internal/adapter/http/ws"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	ws "github.com/arman-qz/parking-system/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health  *handler.Health
	auth    *handler.Auth
	driver  *handler.Driver
	owner   *handler.Owner
	billing *wshandler.BillingFeed
}

func New(
	cfg config.Config,
	authService handler.AuthService,
	parkingService handler.ParkingService,
	ownerService handler.OwnerService,
	tokens middleware.TokenValidator,
	connHub *ws.ConnectionHub,
	log logger.Logger,
) (*API, error) {
	if authService == nil {
		return nil, errors.New("auth service is required")
	}

	var addr string
	routes := &handlers{
		health: handler.NewHealth(string(cfg.Mode), log),
	}

	switch cfg.Mode {
	case types.DriverService:
		if parkingService == nil {
			return nil, errors.New("parking service is required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.DriverService)
		routes.auth = handler.NewAuth(authService, types.DriverRole, log)
		routes.driver = handler.NewDriver(parkingService, log)
		routes.billing = wshandler.NewBillingFeed(connHub, parkingService, cfg.WebSocket.BillingInterval, log)
	case types.OwnerService:
		if ownerService == nil {
			return nil, errors.New("owner service is required")
		}
		addr = fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Services.OwnerService)
		routes.auth = handler.NewAuth(authService, types.OwnerRole, log)
		routes.owner = handler.NewOwner(ownerService, log)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	mid := middleware.NewMiddleware(tokens, log)

	api := &API{
		mode: cfg.Mode,

		mux:    http.NewServeMux(),
		routes: routes,
		m:      mid,
		addr:   addr,
		cfg:    cfg,
		log:    log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies the shared middleware chain to the mux.
func (a *API) withMiddleware() http.Handler {
	chain := a.m.Auth(a.mux)
	chain = a.m.Metrics(string(a.mode))(chain)
	chain = a.m.Logging(chain)
	chain = a.m.RequestID(chain)
	return a.m.Recover(chain)
}
