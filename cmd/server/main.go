package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/auth"
	"github.com/hongminglow/garage-be/internal/config"
	"github.com/hongminglow/garage-be/internal/logging"
	"github.com/hongminglow/garage-be/internal/server"
	postgres "github.com/hongminglow/garage-be/internal/storage/postgres"
)

func main() {
	envLoaded := loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", logging.FormatJSON)
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if !envLoaded {
		logger.Info().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := postgres.NewAccountStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init database")
	}
	defer store.Close()

	tokens, err := auth.NewTokenCodec(auth.TokenConfig{Secret: cfg.Secret, MinID: cfg.MinID, MaxID: cfg.MaxID})
	if err != nil {
		logger.Fatal().Err(err).Msg("init token codec")
	}
	hasher := auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	service := auth.NewService(store, hasher, tokens, logger.With().Str("component", "auth").Logger())
	resolver := auth.NewStatusResolver(store, logger.With().Str("component", "guard").Logger())

	if cfg.Bootstrap.Enabled() {
		provisionAdmin(ctx, logger, service, cfg.Bootstrap)
	}

	srv := server.New(cfg, server.Deps{
		Pinger:   store,
		Tokens:   tokens,
		Service:  service,
		Resolver: resolver,
		Log:      logger,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("garage backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

func provisionAdmin(ctx context.Context, logger zerolog.Logger, service *auth.Service, seed config.BootstrapAdmin) {
	created, err := service.ProvisionAdmin(ctx, auth.AdminSeed{
		Username: seed.Username,
		Password: seed.Password,
		Name:     seed.Name,
		Surname:  seed.Surname,
		Email:    seed.Email,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("provision admin")
	}
	if created {
		logger.Info().Str("username", seed.Username).Msg("bootstrap admin created")
	}
}

func loadLocalEnv() bool {
	return godotenv.Load() == nil
}
