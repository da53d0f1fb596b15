// Package app wires configuration, infrastructure clients and services together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"marketapi/internal/cache"
	"marketapi/internal/config"
	"marketapi/internal/database"
	handlers "marketapi/internal/http/handler"
	"marketapi/internal/logger"
	"marketapi/internal/mailer"
	"marketapi/internal/metrics"
	"marketapi/internal/payment"
	"marketapi/internal/repository/postgres"
	"marketapi/internal/service"
	"marketapi/internal/storage"
)

// App holds the long-lived dependencies shared by the API server and the CLI.
type App struct {
	Config   *config.AppConfig
	DB       *sql.DB
	Cache    cache.Cache
	Metrics  *metrics.Metrics
	Services handlers.Services

	closers []func() error
}

// New connects to every backing service and builds the service layer.
// Redis is optional: when it is not configured or unreachable, caching is disabled.
func New(ctx context.Context, cfg *config.AppConfig, reg prometheus.Registerer, log zerolog.Logger) (*App, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a := &App{Config: cfg, DB: db, Cache: cache.Noop{}}
	a.closers = append(a.closers, db.Close)

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("event", "cache_disabled").Str("addr", cfg.Redis.Addr).Msg("redis unavailable, running without cache")
		} else {
			a.Cache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	gateway, err := payment.NewStripe(cfg.Stripe)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init payment gateway: %w", err)
	}

	renderer, err := mailer.NewRenderer()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	sender, err := mailer.New(cfg.SMTP, logger.Component(log, "mailer"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	if reg != nil {
		a.Metrics, err = metrics.New(reg)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	profilesRepo := postgres.NewProfilePostgres(db)
	experiencesRepo := postgres.NewExperiencePostgres(db)
	bookingsRepo := postgres.NewBookingPostgres(db)
	reviewsRepo := postgres.NewReviewPostgres(db)
	transactionsRepo := postgres.NewTransactionPostgres(db)

	svcLog := logger.Component(log, "service")
	signer := service.NewURLSigner(store, cfg.MinIO.URLExpiry, svcLog)
	settings := service.NewSettingsService(postgres.NewSettingsPostgres(db), a.Cache, svcLog)
	notifications := service.NewNotificationService(postgres.NewNotificationPostgres(db), profilesRepo, renderer, sender, cfg.AppBaseURL, svcLog)
	bookings := service.NewBookingService(service.BookingDeps{
		Bookings:     bookingsRepo,
		Experiences:  experiencesRepo,
		Profiles:     profilesRepo,
		Transactions: transactionsRepo,
		Settings:     settings,
		Gateway:      gateway,
		Notifier:     notifications,
		Metrics:      a.Metrics,
	}, logger.Component(log, "booking"))

	a.Services = handlers.Services{
		Profiles:      service.NewProfileService(profilesRepo, store, gateway, signer, svcLog),
		Categories:    service.NewCategoryService(postgres.NewCategoryPostgres(db), a.Cache, svcLog),
		Experiences:   service.NewExperienceService(experiencesRepo, bookingsRepo, settings, store, signer, svcLog),
		Bookings:      bookings,
		Reviews:       service.NewReviewService(reviewsRepo, bookingsRepo, experiencesRepo, notifications, svcLog),
		Messaging:     service.NewMessagingService(postgres.NewConversationPostgres(db), postgres.NewMessagePostgres(db), experiencesRepo, bookingsRepo, profilesRepo, notifications, svcLog),
		Notifications: notifications,
		Settings:      settings,
		Dashboard:     service.NewDashboardService(profilesRepo, experiencesRepo, bookingsRepo, reviewsRepo, transactionsRepo, svcLog),
		Webhooks:      service.NewWebhookService(gateway, postgres.NewWebhookEventPostgres(db), bookings, profilesRepo, a.Metrics, logger.Component(log, "webhook")),
	}
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
