package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/meetgrid/meet-service/config"
	"github.com/meetgrid/meet-service/internal/postgres"
	"github.com/meetgrid/meet-service/internal/security"
	"github.com/meetgrid/meet-service/internal/service"
	"github.com/meetgrid/meet-service/internal/storage"
	httpx "github.com/meetgrid/meet-service/internal/transport/http"
	"github.com/meetgrid/meet-service/internal/transport/ws"
	"github.com/meetgrid/meet-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting meet-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- postgres ---
	db, err := postgres.New(ctx, postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// --- blob storage ---
	blobs, err := storage.NewDisk(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// --- repos ---
	userRepo := postgres.NewUserRepository(db.Pool)
	roomRepo := postgres.NewRoomRepository(db.Pool)
	partRepo := postgres.NewParticipantRepository(db.Pool)
	msgRepo := postgres.NewMessageRepository(db.Pool)
	fileRepo := postgres.NewFileRepository(db.Pool)

	// --- auth ---
	tokens := security.NewTokenManager(
		cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience,
		cfg.Auth.TTL(), cfg.Auth.Skew(),
	)

	// --- services ---
	authSvc := service.NewAuthService(userRepo, tokens)
	roomSvc := service.NewRoomService(roomRepo)
	memberSvc := service.NewMemberService(roomRepo, partRepo)
	chatSvc := service.NewChatService(msgRepo, partRepo, cfg.Storage.MaxMessageChars)
	fileSvc := service.NewFileService(fileRepo, partRepo, blobs)
	signalSvc := service.NewSignalService(roomRepo, partRepo, cfg.Storage.MaxSignalBytes)

	// --- WS hub & server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, memberSvc, chatSvc, signalSvc, tokens, cfg.WS.PingInterval())

	// --- HTTP ---
	handler := httpx.NewHandler(authSvc, roomSvc, memberSvc, chatSvc, fileSvc, signalSvc, hub, cfg.Storage.MaxUploadBytes)
	router := httpx.NewRouter(handler, memberSvc, wsServer, tokens)
	srv := httpx.NewServer(httpx.ServerConfig{Addr: cfg.HTTP.Addr}, router)

	slog.Info("http listen", "addr", cfg.HTTP.Addr)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "err", err)
	}
	slog.Info("stopped")
}
