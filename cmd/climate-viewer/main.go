package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/climate-viewer/internal/api/http"
	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/config"
	"github.com/i474232898/climate-viewer/internal/dataset"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
	"github.com/i474232898/climate-viewer/internal/render"
	"github.com/i474232898/climate-viewer/internal/scheduler"
	"github.com/i474232898/climate-viewer/internal/store"
	"github.com/i474232898/climate-viewer/internal/viewer"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.New("error", "").Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistent per-table period cache.
	var cache climate.Store
	switch cfg.Cache.Driver {
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
			Version:  cfg.Cache.Version,
			Timeout:  cfg.Cache.Redis.Timeout,
		}, log)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer rs.Close()
		cache = rs
	default:
		cache = store.NewMemoryStore()
	}

	// Shared HTTP client for dataset downloads.
	httpClient := &http.Client{
		Timeout: cfg.Dataset.Timeout,
	}
	source := dataset.NewHTTPSource(httpClient, cfg.Dataset.BaseURL, log)
	gateway := climate.NewGateway(cache, source, log)

	charts := render.DefaultConfig()
	charts.Defaults.Width = cfg.Chart.Width
	charts.Defaults.Height = cfg.Chart.Height

	sessions := viewer.NewManager(gateway, charts, cfg.Period.Borders(), log)
	defer sessions.Close()

	// Cache warm-up and idle session eviction.
	sched := scheduler.New(scheduler.Config{
		WarmInterval:  cfg.Scheduler.WarmInterval,
		WarmTimeout:   cfg.Dataset.Timeout,
		SweepInterval: cfg.Scheduler.SweepInterval,
		SessionTTL:    cfg.Scheduler.SessionTTL,
	}, climate.Tables, gateway, sessions, log)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
		})
	})

	// The raw dataset can be hosted by this service.
	if cfg.Dataset.Dir != "" {
		app.Static("/data", cfg.Dataset.Dir)
	}

	httpapi.RegisterRoutes(app, gateway, sessions, charts)

	go func() {
		log.Infof("listening on :%s", cfg.App.Port)
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
