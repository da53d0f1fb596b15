package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"marketapi/internal/logger"
	"marketapi/internal/metrics"
	"marketapi/internal/payment"
	"marketapi/internal/repository"
)

// Webhook handling results, used as metric labels.
const (
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
	WebhookIgnored   = "ignored"
)

// WebhookService applies verified gateway events.
type WebhookService interface {
	// Handle verifies the payload and applies it once. It returns payment.ErrInvalidSignature
	// for payloads that fail verification.
	Handle(ctx context.Context, payload []byte, signature string) (string, error)
}

type webhookService struct {
	gateway  payment.Gateway
	events   repository.WebhookEventRepository
	bookings BookingService
	profiles repository.ProfileRepository
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewWebhookService constructs a WebhookService.
func NewWebhookService(gateway payment.Gateway, events repository.WebhookEventRepository, bookings BookingService, profiles repository.ProfileRepository, m *metrics.Metrics, log zerolog.Logger) WebhookService {
	return &webhookService{gateway: gateway, events: events, bookings: bookings, profiles: profiles, metrics: m, log: log}
}

func (s *webhookService) Handle(ctx context.Context, payload []byte, signature string) (string, error) {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return "", err
	}
	log := logger.Ctx(ctx, s.log).With().Str("event_id", ev.ID).Str("type", ev.Type).Logger()

	seen, err := s.events.Exists(ctx, ev.ID)
	if err != nil {
		return "", fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		s.metrics.WebhookEvent(ev.Type, WebhookDuplicate)
		log.Debug().Str("event", "webhook_duplicate").Msg("webhook already processed")
		return WebhookDuplicate, nil
	}

	result, err := s.dispatch(ctx, ev)
	if err != nil {
		s.metrics.WebhookEvent(ev.Type, metrics.OutcomeError)
		log.Error().Err(err).Str("event", "webhook_failed").Msg("webhook handling failed")
		return "", err
	}
	if err := s.events.Record(ctx, ev.ID, ev.Type); err != nil {
		return "", fmt.Errorf("record webhook event: %w", err)
	}
	s.metrics.WebhookEvent(ev.Type, result)
	log.Info().Str("event", "webhook_handled").Str("result", result).Msg("webhook handled")
	return result, nil
}

func (s *webhookService) dispatch(ctx context.Context, ev *payment.WebhookEvent) (string, error) {
	var err error
	switch ev.Type {
	case payment.EventAmountCapturable:
		_, err = s.bookings.MarkAuthorized(ctx, ev.PaymentIntentID)
	case payment.EventPaymentFailed, payment.EventPaymentCanceled:
		_, err = s.bookings.MarkPaymentFailed(ctx, ev.PaymentIntentID)
	case payment.EventAccountUpdated:
		err = s.accountUpdated(ctx, ev.AccountID)
	default:
		return WebhookIgnored, nil
	}
	switch {
	case err == nil:
		return WebhookProcessed, nil
	// Events for bookings we do not know or that already moved on are acknowledged.
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidTransition):
		return WebhookIgnored, nil
	case errors.Is(err, ErrPaymentFailed):
		// The booking was cancelled by the capture failure path; nothing to retry.
		return WebhookProcessed, nil
	default:
		return "", err
	}
}

func (s *webhookService) accountUpdated(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ErrNotFound
	}
	p, err := s.profiles.FindByPayoutAccount(ctx, accountID)
	if err != nil {
		return notFound(err, "find profile by payout account")
	}
	enabled, err := s.gateway.AccountPayoutsEnabled(ctx, accountID)
	s.metrics.PaymentOperation("account_status", err)
	if err != nil {
		return fmt.Errorf("account payout status: %w", err)
	}
	if enabled == p.PayoutsEnabled {
		return nil
	}
	return s.profiles.SetPayoutAccount(ctx, p.ID, accountID, enabled)
}
