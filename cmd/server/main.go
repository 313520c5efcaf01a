package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/relocity/relocation-backend/internal/auth"
	"github.com/relocity/relocation-backend/internal/conf"
	"github.com/relocity/relocation-backend/internal/data"
	"github.com/relocity/relocation-backend/internal/pkg/features"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/server"
	userbiz "github.com/relocity/relocation-backend/internal/user/biz"
	userdata "github.com/relocity/relocation-backend/internal/user/data"

	relocationbiz "github.com/relocity/relocation-backend/internal/relocation/biz"
	"github.com/relocity/relocation-backend/internal/relocation/blob"
	relocationdata "github.com/relocity/relocation-backend/internal/relocation/data"
	relocationservice "github.com/relocity/relocation-backend/internal/relocation/service"
	"github.com/relocity/relocation-backend/internal/relocation/sweeper"
)

var configPath = flag.String("config", "configs/config.yaml", "path to config file")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := conf.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	d, cleanup, err := data.NewData(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// Repositories and storage
	userRepo := userdata.NewUserRepo(d.DB)
	relocationRepo := relocationdata.NewRelocationRepo(d.DB)
	objectStorage := relocationdata.NewObjectStorage(d.MinIO)

	blobStore, err := blob.NewStore(objectStorage, blob.Config{
		MaxFileSize:  cfg.Upload.MaxFileSize,
		MaxBlobCount: cfg.Upload.MaxBlobCount,
	}, log)
	if err != nil {
		return err
	}

	// Business layer
	userUC := userbiz.NewUserUseCase(userRepo)
	relocationUC := relocationbiz.NewRelocationUseCase(
		relocationRepo,
		userUC,
		blobStore,
		cfg.Upload.Timeout,
		log,
	)

	// HTTP layer
	gate := features.NewGate(d.Redis, log.Logger)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	relocationSvc := relocationservice.NewRelocationService(relocationUC, gate, log)

	httpServer := server.NewHTTPServer(cfg, jwtManager, relocationSvc, log)

	// Background orphan sweeper
	sweeperCfg := &sweeper.Config{
		Interval:    cfg.Sweeper.Interval,
		GracePeriod: cfg.Sweeper.GracePeriod,
		Workers:     cfg.Sweeper.Workers,
	}
	sw, err := sweeper.New(objectStorage, relocationRepo, sweeperCfg, log.Named("sweeper"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw.Start(ctx)
	defer sw.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
