package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketapi/internal/metrics"
	"marketapi/internal/model"
	"marketapi/internal/payment"
	payMocks "marketapi/internal/payment/mocks"
	repoMocks "marketapi/internal/repository/mocks"
)

// stubBookings records the intent ids the webhook dispatches.
type stubBookings struct {
	BookingService
	authorized []string
	failed     []string
	err        error
}

func (s *stubBookings) MarkAuthorized(_ context.Context, intentID string) (*model.Booking, error) {
	s.authorized = append(s.authorized, intentID)
	return nil, s.err
}

func (s *stubBookings) MarkPaymentFailed(_ context.Context, intentID string) (*model.Booking, error) {
	s.failed = append(s.failed, intentID)
	return nil, s.err
}

func TestWebhookService_Handle(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)

	tests := []struct {
		name       string
		event      *payment.WebhookEvent
		parseErr   error
		seen       bool
		bookingErr error
		setupMocks func(gw *payMocks.MockGateway, events *repoMocks.MockWebhookEventRepository, profiles *repoMocks.MockProfileRepository)
		wantResult string
		wantErr    error
		check      func(t *testing.T, b *stubBookings)
	}{
		{
			name:       "authorized payment",
			event:      &payment.WebhookEvent{ID: "evt_1", Type: payment.EventAmountCapturable, PaymentIntentID: "pi_1"},
			wantResult: WebhookProcessed,
			check: func(t *testing.T, b *stubBookings) {
				assert.Equal(t, []string{"pi_1"}, b.authorized)
			},
		},
		{
			name:       "failed payment",
			event:      &payment.WebhookEvent{ID: "evt_1", Type: payment.EventPaymentFailed, PaymentIntentID: "pi_1"},
			wantResult: WebhookProcessed,
			check: func(t *testing.T, b *stubBookings) {
				assert.Equal(t, []string{"pi_1"}, b.failed)
			},
		},
		{
			name:       "booking already moved on",
			event:      &payment.WebhookEvent{ID: "evt_1", Type: payment.EventPaymentCanceled, PaymentIntentID: "pi_1"},
			bookingErr: ErrInvalidTransition,
			wantResult: WebhookIgnored,
		},
		{
			name:       "unknown type is acknowledged",
			event:      &payment.WebhookEvent{ID: "evt_1", Type: "customer.created"},
			wantResult: WebhookIgnored,
		},
		{
			name:       "duplicate event",
			event:      &payment.WebhookEvent{ID: "evt_1", Type: payment.EventAmountCapturable, PaymentIntentID: "pi_1"},
			seen:       true,
			wantResult: WebhookDuplicate,
			check: func(t *testing.T, b *stubBookings) {
				assert.Empty(t, b.authorized)
			},
		},
		{
			name:     "bad signature",
			parseErr: payment.ErrInvalidSignature,
			wantErr:  payment.ErrInvalidSignature,
		},
		{
			name:       "database failure is retried by the gateway",
			event:      &payment.WebhookEvent{ID: "evt_1", Type: payment.EventAmountCapturable, PaymentIntentID: "pi_1"},
			bookingErr: errors.New("connection refused"),
			wantErr:    errors.New("connection refused"),
		},
		{
			name:  "account update enables payouts",
			event: &payment.WebhookEvent{ID: "evt_1", Type: payment.EventAccountUpdated, AccountID: "acct_1"},
			setupMocks: func(gw *payMocks.MockGateway, events *repoMocks.MockWebhookEventRepository, profiles *repoMocks.MockProfileRepository) {
				profiles.On("FindByPayoutAccount", mock.Anything, "acct_1").Return(&model.Profile{ID: "host-1"}, nil)
				gw.On("AccountPayoutsEnabled", mock.Anything, "acct_1").Return(true, nil)
				profiles.On("SetPayoutAccount", mock.Anything, "host-1", "acct_1", true).Return(nil)
			},
			wantResult: WebhookProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(payMocks.MockGateway)
			events := new(repoMocks.MockWebhookEventRepository)
			profiles := new(repoMocks.MockProfileRepository)
			bookings := &stubBookings{err: tt.bookingErr}

			if tt.parseErr != nil {
				gw.On("ParseWebhook", payload, "sig").Return(nil, tt.parseErr)
			} else {
				gw.On("ParseWebhook", payload, "sig").Return(tt.event, nil)
				events.On("Exists", mock.Anything, "evt_1").Return(tt.seen, nil)
				if !tt.seen && tt.wantErr == nil {
					events.On("Record", mock.Anything, "evt_1", tt.event.Type).Return(nil)
				}
			}
			if tt.setupMocks != nil {
				tt.setupMocks(gw, events, profiles)
			}
			m, err := metrics.New(prometheus.NewRegistry())
			require.NoError(t, err)
			svc := NewWebhookService(gw, events, bookings, profiles, m, zerolog.Nop())

			result, err := svc.Handle(context.Background(), payload, "sig")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantResult, result)
			}
			if tt.check != nil {
				tt.check(t, bookings)
			}
			gw.AssertExpectations(t)
			events.AssertExpectations(t)
			profiles.AssertExpectations(t)
		})
	}
}
