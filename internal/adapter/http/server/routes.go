package server

import (
	"context"

	"github.com/arman-qz/parking-system/internal/domain/types"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	a.setupSwaggerRoutes()
	a.setupMetricsRoute()

	switch a.mode {
	case types.DriverService:
		a.setupDriverRoutes()
	case types.OwnerService:
		a.setupOwnerRoutes()
	}
}

// setupDriverRoutes setups routes for the driver service
func (a *API) setupDriverRoutes() {
	a.mux.HandleFunc("POST /driver/signup", a.routes.auth.Signup)
	a.mux.HandleFunc("POST /driver/login", a.routes.auth.Login)

	a.mux.Handle("GET /driver/balance", a.m.RequireRoles(a.routes.driver.Balance, types.DriverRole))

	a.mux.Handle("POST /sessions/start", a.m.RequireRoles(a.routes.driver.StartSession, types.DriverRole))    // Open a session at a lot
	a.mux.Handle("POST /sessions/{id}/stop", a.m.RequireRoles(a.routes.driver.StopSession, types.DriverRole)) // End the active session
	a.mux.Handle("POST /sessions/{id}/pay", a.m.RequireRoles(a.routes.driver.PaySession, types.DriverRole))   // Settle an ended session
	a.mux.Handle("GET /sessions/active", a.m.RequireRoles(a.routes.driver.ActiveSession, types.DriverRole))   // Live view of the running session

	a.mux.Handle("GET /ws/billing", a.m.RequireRoles(a.routes.billing.HandleWS, types.DriverRole)) // WebSocket live billing feed
}

// setupOwnerRoutes setups routes for the owner service
func (a *API) setupOwnerRoutes() {
	a.mux.HandleFunc("POST /owner/signup", a.routes.auth.Signup)
	a.mux.HandleFunc("POST /owner/login", a.routes.auth.Login)

	a.mux.Handle("GET /owner/profile", a.m.RequireRoles(a.routes.owner.Profile, types.OwnerRole))
	a.mux.Handle("GET /owner/balance", a.m.RequireRoles(a.routes.owner.Balance, types.OwnerRole))
	a.mux.Handle("GET /owner/location", a.m.RequireRoles(a.routes.owner.Location, types.OwnerRole))
	a.mux.Handle("PUT /owner/location", a.m.RequireRoles(a.routes.owner.SetLocation, types.OwnerRole))
	a.mux.Handle("GET /owner/policy", a.m.RequireRoles(a.routes.owner.Policy, types.OwnerRole))
	a.mux.Handle("PUT /owner/policy", a.m.RequireRoles(a.routes.owner.SetPolicy, types.OwnerRole))

	a.mux.Handle("GET /sessions/{id}/payment", a.m.RequireRoles(a.routes.owner.VerifyPayment, types.OwnerRole)) // Check settlement of a session
}

// setupSwaggerRoutes configures the Swagger UI endpoint for the mode
func (a *API) setupSwaggerRoutes() {
	var instanceName string

	switch a.mode {
	case types.DriverService:
		instanceName = "driver"
	case types.OwnerService:
		instanceName = "owner"
	default:
		a.log.Warn(wrap.WithAction(context.Background(), "setup_swagger_routes"), "unknown service mode for swagger setup", "mode", a.mode)
		return
	}

	swaggerURL := httpSwagger.InstanceName(instanceName)
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func (a *API) setupMetricsRoute() {
	a.mux.Handle("/metrics", promhttp.Handler())
}
