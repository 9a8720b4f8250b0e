package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/hyeonlab/moneyflow/backend/internal/auth"
	"github.com/hyeonlab/moneyflow/backend/internal/chat"
	"github.com/hyeonlab/moneyflow/backend/internal/config"
	"github.com/hyeonlab/moneyflow/backend/internal/logging"
	"github.com/hyeonlab/moneyflow/backend/internal/scheduler"
	"github.com/hyeonlab/moneyflow/backend/internal/server"
	"github.com/hyeonlab/moneyflow/backend/internal/service"
	"github.com/hyeonlab/moneyflow/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	var verifier server.TokenVerifier

	if cfg.UseMemoryStore {
		logger.Info().Msg("using in-memory store")
		st = store.NewMemoryStore()
	} else {
		if cfg.GoogleCloudProject == "" {
			logger.Fatal().Msg("GOOGLE_CLOUD_PROJECT is required unless USE_MEMORY_STORE is set")
		}
		client, err := firestore.NewClient(ctx, cfg.GoogleCloudProject)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create Firestore client")
		}
		defer client.Close()
		st = store.NewFirestoreStore(client)
	}

	skipAuth := cfg.SkipAuth || cfg.UseMemoryStore
	if skipAuth {
		logger.Warn().Msg("authentication disabled, trusting debug user header")
	} else {
		fa, err := auth.NewFirebaseAuth(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize Firebase auth")
		}
		verifier = fa
	}

	svc := service.NewFinanceService(st, logger, loc)

	var advisor server.ChatAdvisor
	if cfg.GeminiAPIKey != "" {
		a, err := chat.NewAdvisor(ctx, cfg.GeminiAPIKey, svc, logger,
			chat.WithModel(cfg.GeminiModel),
			chat.WithTimeout(cfg.ChatTimeout),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize advisor")
		}
		advisor = a
	} else {
		logger.Info().Msg("GEMINI_API_KEY not set, chat disabled")
	}

	if cfg.SchedulerEnabled {
		sched := scheduler.New(svc, logger, loc, cfg.SchedulerInterval, cfg.SettlementDay)
		go sched.Run(ctx)
	}

	handler := server.NewHandler(svc, advisor, logger, loc)
	router := server.NewRouter(server.RouterConfig{
		Handler:  handler,
		Verifier: verifier,
		SkipAuth: skipAuth,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
