package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/api/handlers/graphics"
	"github.com/aliskhannn/image-converter/internal/api/router"
	"github.com/aliskhannn/image-converter/internal/api/server"
	"github.com/aliskhannn/image-converter/internal/config"
	"github.com/aliskhannn/image-converter/internal/infra/kafka/consumer"
	rendermsg "github.com/aliskhannn/image-converter/internal/kafka/handlers/render"
	"github.com/aliskhannn/image-converter/internal/lock"
	"github.com/aliskhannn/image-converter/internal/processor"
	graphicssvc "github.com/aliskhannn/image-converter/internal/service/graphics"
	"github.com/aliskhannn/image-converter/internal/storage/file"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config/config.yml")

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Render lock: shared through Redis when configured, in-process otherwise.
	var (
		locker lock.Locker = lock.NewLocal()
		rdb    *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		locker = lock.NewRedis(rdb, cfg.Redis.LockTTL)
	}

	// Initialize file storage (MinIO).
	storage, err := file.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// Initialize processor and service layer.
	p, err := processor.New(processor.Options{
		Executable: cfg.Graphics.Executable,
		Backend:    cfg.Graphics.Backend,
		Background: cfg.Graphics.Background,
		Quality:    cfg.Graphics.Quality,
		Optimize:   cfg.Graphics.Optimize,
		Timeout:    cfg.Graphics.Timeout,
		Tools:      cfg.Graphics.Optimizers,
	}, locker)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create processor")
	}
	service := graphicssvc.NewService(p, storage, cfg.Graphics.RootDir, cfg.Graphics.CacheDir, cfg.Graphics.WorkDir)

	// Kafka consumer for queued render requests.
	c := consumer.New(&cfg.Kafka, strategy, rendermsg.NewHandler(service))

	// Start Kafka consumer in a separate goroutine.
	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Start HTTP server in a separate goroutine.
	r := router.Setup(graphics.NewHandler(service))
	s := server.New(":"+cfg.Server.HTTPPort, r, cfg.Graphics.Timeout)
	go func() {
		zlog.Logger.Info().Str("addr", s.Addr).Str("backend", cfg.Graphics.Backend).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for Kafka consumer goroutine to finish.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close Kafka consumer and Redis clients.
	if err = c.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}
	if rdb != nil {
		if err = rdb.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
