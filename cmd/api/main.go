package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neuromediai/site/internal/application"
	appdetection "github.com/neuromediai/site/internal/application/detection"
	appinquiry "github.com/neuromediai/site/internal/application/inquiry"
	"github.com/neuromediai/site/internal/config"
	domain "github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/infra/httpserver"
	"github.com/neuromediai/site/internal/infra/storage"
	"github.com/neuromediai/site/internal/infra/toast"
	"github.com/neuromediai/site/internal/logger"
	"github.com/neuromediai/site/internal/middleware"
)

const (
	shutdownTimeout   = 10 * time.Second
	limiterSweepEvery = 5 * time.Minute
	limiterIdle       = 10 * time.Minute
	toastSweepEvery   = 30 * time.Second
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("config load error")
	}
	logger.Init(logger.Options{
		Environment: logger.ParseEnvironment(cfg.Log.Environment),
		Level:       cfg.Log.Level,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("bye")
}

func run(ctx context.Context, cfg *config.Config) error {
	clock := application.SystemClock()

	previews, err := openPreviewStore(ctx, cfg.Preview)
	if err != nil {
		return err
	}

	var rnd domain.Random
	if cfg.Detection.Seed != 0 {
		rnd = appdetection.NewRandom(cfg.Detection.Seed)
	}
	detections := appdetection.NewService(appdetection.Options{
		Store:         previews,
		Clock:         clock,
		Random:        rnd,
		AnalysisDelay: cfg.Detection.AnalysisDelay,
		SessionTTL:    cfg.Detection.SessionTTL,
	})

	toasts := toast.NewStore(clock, cfg.Notify.TTL)
	inquiries := &appinquiry.Service{
		Clock:    clock,
		Delay:    cfg.Inquiry.SubmitDelay,
		Notifier: toasts,
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Capacity > 0 {
		limiter = middleware.NewRateLimiter(clock, cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpserver.NewRouter(httpserver.Deps{
			Detection:      detections,
			Inquiry:        inquiries,
			Toasts:         toasts,
			Previews:       previews,
			Limiter:        limiter,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxUploadBytes: cfg.Detection.MaxUploadBytes,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("previews", cfg.Preview.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return detections.Run(gctx, cfg.Detection.SweepInterval) })
	g.Go(func() error { return toasts.Run(gctx, toastSweepEvery) })
	if limiter != nil {
		g.Go(func() error { return limiter.Run(gctx, limiterSweepEvery, limiterIdle) })
	}

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		if cerr := detections.Shutdown(sctx); cerr != nil {
			logger.Warn().Err(cerr).Msg("release previews on shutdown")
		}
		return err
	})

	return g.Wait()
}

func openPreviewStore(ctx context.Context, cfg config.Preview) (domain.PreviewStore, error) {
	if cfg.Driver != "minio" {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewMinio(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		return nil, err
	}
	return store, nil
}
