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
	"github.com/arman-qz/parking-system/internal/service/auth"
	"github.com/arman-qz/parking-system/internal/service/owner"
	"github.com/arman-qz/parking-system/pkg/logger"
	postgresclient "github.com/arman-qz/parking-system/pkg/postgres"
)

// OwnerService runs the parking-owner side: accounts, billing policies,
// lot locations and payment verification.
type OwnerService struct {
	postgresDB *postgresclient.PostgreDB
	httpServer *httpserver.API

	cfg config.Config
	log logger.Logger
}

func NewOwner(ctx context.Context, cfg config.Config, log logger.Logger) (*OwnerService, error) {
	db, err := postgresclient.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}

	// repositories
	ownerRepo := repo.NewOwnerRepo(db.Pool)
	driverRepo := repo.NewDriverRepo(db.Pool)
	sessionRepo := repo.NewSessionRepo(db.Pool)

	// services
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authSvc := auth.NewAuthService(driverRepo, ownerRepo, tokenSvc, log)
	ownerSvc := owner.NewService(ownerRepo, sessionRepo, log)

	server, err := httpserver.New(cfg, authSvc, nil, ownerSvc, tokenSvc, nil, log)
	if err != nil {
		log.Error(ctx, "failed to setup http server", err)
		return nil, err
	}

	return &OwnerService{
		postgresDB: db,
		httpServer: server,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *OwnerService) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "owner service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	s.log.Info(ctx, "owner service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (s *OwnerService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.postgresDB != nil && s.postgresDB.Pool != nil {
		s.postgresDB.Pool.Close()
	}
}
