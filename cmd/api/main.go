package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brgysanroque/registry/internal/auth"
	"github.com/brgysanroque/registry/internal/config"
	"github.com/brgysanroque/registry/internal/db"
	internalhttp "github.com/brgysanroque/registry/internal/http"
	"github.com/brgysanroque/registry/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api terminated with error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	if err := db.Migrate(ctx, cfg.DBDSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	var revocations auth.RevocationList = auth.NoopRevocationList{}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		revocations = auth.NewRedisRevocationList(redisClient)
	}

	var archiver storage.Uploader = storage.NoopUploader{}
	switch cfg.Storage.Provider {
	case "", "noop":
		// backup archival disabled
	case "s3", "r2":
		archiver, err = storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	default:
		return fmt.Errorf("storage: unknown provider %q", cfg.Storage.Provider)
	}

	handler := internalhttp.NewRouter(cfg, pool, revocations, archiver)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API listening on :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
