package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aiforce/intelliops-console/internal/api"
	"github.com/aiforce/intelliops-console/internal/core/service"
	"github.com/aiforce/intelliops-console/internal/infrastructure/bus"
	"github.com/aiforce/intelliops-console/internal/infrastructure/client"
	"github.com/aiforce/intelliops-console/internal/infrastructure/config"
	mongodb "github.com/aiforce/intelliops-console/internal/infrastructure/db/mongo"
	redisdb "github.com/aiforce/intelliops-console/internal/infrastructure/db/redis"
	"github.com/aiforce/intelliops-console/internal/infrastructure/queue"
	"github.com/aiforce/intelliops-console/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting console gateway")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	store := redisdb.NewProfileStore(rdb)
	eventBus := bus.New(log.With().Str("component", "bus").Logger())

	// --- External backends ---
	authAPI := client.NewAuthClient(cfg.AuthAPIURL, cfg.APITimeout, log.With().Str("client", "auth").Logger())
	chatAPI := client.NewChatClient(cfg.ChatAPIURL, log.With().Str("client", "chat").Logger())
	promptAPI := client.NewPromptClient(cfg.PromptAPIURL, cfg.APITimeout, log.With().Str("client", "prompt").Logger())

	// --- Trace pipeline ---
	traceRepo := mongodb.NewTraceRepository(db)
	traceService := service.NewTraceService(traceRepo, log.With().Str("service", "trace").Logger())
	dispatcher := queue.NewDispatcher(cfg.TraceWorkers, traceService, log.With().Str("component", "dispatcher").Logger())
	dispatcher.Start(ctx)

	// --- Core services ---
	authService := service.NewAuthService(authAPI, store, eventBus, log.With().Str("service", "auth").Logger(), cfg.SessionGrace)
	threadService := service.NewThreadService(store, log.With().Str("service", "threads").Logger())
	providerService := service.NewProviderService(store, eventBus, log.With().Str("service", "provider").Logger())
	continuityService := service.NewContinuityService(threadService, store, providerService, eventBus, log.With().Str("service", "continuity").Logger())
	chatService := service.NewChatService(threadService, chatAPI, authService, dispatcher, log.With().Str("service", "chat").Logger(), cfg.ChatTimeout)
	promptService := service.NewPromptService(promptAPI, authService, store, log.With().Str("service", "prompts").Logger())

	e := api.NewRouter(api.Services{
		Auth:       authService,
		Chat:       chatService,
		Continuity: continuityService,
		Threads:    threadService,
		Providers:  providerService,
		Prompts:    promptService,
		Traces:     traceService,
		Bus:        eventBus,
	}, db, rdb, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
		// Reads are short; writes must outlast a full chat turn.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("stopped")
}
