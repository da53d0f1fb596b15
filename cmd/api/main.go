package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketapi/docs"
	"marketapi/internal/app"
	"marketapi/internal/config"
	"marketapi/internal/database/migration"
	handlers "marketapi/internal/http/handler"
	"marketapi/internal/http/middleware"
	"marketapi/internal/jobs"
	"marketapi/internal/logger"
	"marketapi/internal/otel"
)

const shutdownTimeout = 20 * time.Second

// @title						Experience Marketplace API
// @version					1.0
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger.Component(log, "otel"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, reg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	mg, err := migration.New(a.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare migrations")
	}
	if err := mg.Up(ctx, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	server := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger.Component(log, "http")),
		BodyLimit:    12 * 1024 * 1024,
	})

	// RequestID must run first so every later log line and error carries it.
	server.Use(middleware.RequestID())
	server.Use(otelfiber.Middleware())
	server.Use(middleware.Logger(logger.Component(log, "http")))
	server.Use(promMW.Handler())
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger.Component(log, "ratelimit"))
		server.Use(limiter.Handler())
	}

	// Registered before the API groups so their prefix middleware never sees these paths.
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Audience, a.Services.Profiles, logger.Component(log, "auth"))
	handlers.RegisterRoutes(server, a.DB, a.Services, auth)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.New(a.Services.Bookings, cfg.Jobs, a.Metrics, logger.Component(log, "jobs"))
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start job scheduler")
		}
	}

	addr := ":" + cfg.Port
	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("event", "server_start").Str("addr", addr).Send()
		listenErr <- server.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Str("event", "server_shutdown").Msg("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("job scheduler did not stop in time")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}
