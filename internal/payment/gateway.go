package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// IntentStatus mirrors the gateway's payment intent lifecycle.
type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentRequiresCapture       IntentStatus = "requires_capture"
	IntentCanceled              IntentStatus = "canceled"
	IntentSucceeded             IntentStatus = "succeeded"
)

// Webhook event types the service reacts to.
const (
	EventAmountCapturable = "payment_intent.amount_capturable_updated"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentCanceled  = "payment_intent.canceled"
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventAccountUpdated   = "account.updated"
)

// Intent is a pre-authorization held on the guest's card.
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	AmountCents  int64
}

// AuthorizeRequest describes a manual-capture charge.
type AuthorizeRequest struct {
	AmountCents    int64
	Currency       string
	BookingID      string
	Description    string
	ReceiptEmail   string
	IdempotencyKey string
}

// TransferRequest moves funds to a host's connected account.
type TransferRequest struct {
	AmountCents    int64
	Currency       string
	Destination    string
	BookingID      string
	IdempotencyKey string
}

// WebhookEvent is the part of a gateway event the service needs.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	BookingID       string
	AccountID       string
}

// Gateway is the payment provider boundary.
type Gateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	Capture(ctx context.Context, intentID string) error
	// Void releases an uncaptured authorization.
	Void(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string, amountCents int64, idempotencyKey string) (string, error)
	Transfer(ctx context.Context, req TransferRequest) (string, error)
	CreateConnectedAccount(ctx context.Context, email string) (string, error)
	OnboardingLink(ctx context.Context, accountID string) (string, error)
	AccountPayoutsEnabled(ctx context.Context, accountID string) (bool, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
