package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/api/handlers"
	"github.com/zaintech991/ReguLens/internal/metrics"
	"github.com/zaintech991/ReguLens/internal/middleware/ratelimit"
	"github.com/zaintech991/ReguLens/internal/middleware/security"
	"github.com/zaintech991/ReguLens/internal/middleware/validation"
	appLogger "github.com/zaintech991/ReguLens/pkg/logger"
)

func cmdServe(opts *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the HTTP API server",
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			return serve(rt)
		},
	}
}

func serve(rt *runtime) error {
	cfg := rt.cfg

	appLogger.Info("Starting ReguLens API Server", zap.String("version", version))

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		Immutable:    true,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
		Skip: func(c *fiber.Ctx) bool {
			path := c.Path()
			return path == "/metrics" || path == "/api/v1/health" || path == "/api/v1/ready"
		},
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.CORS.AllowOrigins,
		IsDevelopment:  cfg.Server.IsDevelopment,
	}))
	app.Use(limiter.Middleware())

	uploadCfg := validation.Config{
		MaxUploadBytes: cfg.Server.BodyLimit,
		Categories:     cfg.Analytics.Categories,
		Logger:         appLogger.GetLogger(),
	}
	app.Use(validation.Middleware(uploadCfg))

	handlers.Register(app, rt.repo, rt.processor, handlers.RouteConfig{
		TrendWindowDays:  cfg.Analytics.TrendWindowDays,
		RecentLimit:      cfg.Analytics.RecentLimit,
		DefaultDocuments: cfg.Pipeline.DefaultDocuments,
		DefaultLogs:      cfg.Pipeline.DefaultLogs,
		Upload:           uploadCfg,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Warn("Shutdown did not complete cleanly", zap.Error(err))
	}
	appLogger.Info("Server stopped")
	return nil
}
