package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arman-qz/parking-system/config"
	httpserver "github.com/arman-qz/parking-system/internal/adapter/http/server"
	repo "github.com/arman-qz/parking-system/internal/adapter/postgres"
	"github.com/arman-qz/parking-system/internal/adapter/rabbit"
	"github.com/arman-qz/parking-system/internal/service/auth"
	"github.com/arman-qz/parking-system/internal/service/parking"
	"github.com/arman-qz/parking-system/pkg/logger"
	postgresclient "github.com/arman-qz/parking-system/pkg/postgres"
	rabbitclient "github.com/arman-qz/parking-system/pkg/rabbit"
	"github.com/arman-qz/parking-system/pkg/trm"
	ws "github.com/arman-qz/parking-system/pkg/wsHub"
)

// DriverService runs the driver-facing side: accounts, the session
// lifecycle and the live billing feed.
type DriverService struct {
	postgresDB *postgresclient.PostgreDB
	rabbitMQ   *rabbitclient.RabbitMQ
	connHub    *ws.ConnectionHub
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewDriver(ctx context.Context, cfg config.Config, log logger.Logger) (*DriverService, error) {
	db, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}

	// Events are best-effort: a broker outage must not stop sessions.
	var broker *rabbit.SessionBroker
	rabbitMQ, err := rabbitclient.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Warn(ctx, "rabbitmq unavailable, session events disabled", "error", err.Error())
	} else {
		broker = rabbit.NewSessionBroker(rabbitMQ, log)
	}

	// repositories
	sessionRepo := repo.NewSessionRepo(db.Pool)
	driverRepo := repo.NewDriverRepo(db.Pool)
	ownerRepo := repo.NewOwnerRepo(db.Pool)

	txManager := trm.New(db.Pool)

	// services
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authSvc := auth.NewAuthService(driverRepo, ownerRepo, tokenSvc, log)

	var events parking.EventPublisher
	if broker != nil {
		events = broker
	}
	parkingSvc := parking.NewService(sessionRepo, driverRepo, ownerRepo, events, txManager, log)

	connHub := ws.NewConnHub(log)

	server, err := httpserver.New(cfg, authSvc, parkingSvc, nil, tokenSvc, connHub, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		return nil, err
	}

	return &DriverService{
		postgresDB: db,
		rabbitMQ:   rabbitMQ,
		connHub:    connHub,
		httpServer: server,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *DriverService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "driver service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "driver service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *DriverService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.connHub != nil {
		s.connHub.Close()
	}

	if s.rabbitMQ != nil {
		if err := s.rabbitMQ.Close(ctx); err != nil {
			s.log.Warn(ctx, "failed to close rabbitmq connection", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}
