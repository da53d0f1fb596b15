package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending             BookingStatus = "pending"
	BookingPendingHostApproval BookingStatus = "pending_host_approval"
	BookingConfirmed           BookingStatus = "confirmed"
	BookingCancelled           BookingStatus = "cancelled"
	BookingCompleted           BookingStatus = "completed"
	BookingPaidOut             BookingStatus = "paid_out"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:             {BookingPendingHostApproval, BookingConfirmed, BookingCancelled},
	BookingPendingHostApproval: {BookingConfirmed, BookingCancelled},
	BookingConfirmed:           {BookingCancelled, BookingCompleted},
	BookingCompleted:           {BookingPaidOut},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingPendingHostApproval, BookingConfirmed,
		BookingCancelled, BookingCompleted, BookingPaidOut:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, to := range bookingTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// HoldsCapacity reports whether a booking in status s occupies seats on its date.
func (s BookingStatus) HoldsCapacity() bool {
	return s == BookingPending || s == BookingPendingHostApproval || s == BookingConfirmed
}

// CapacityStatuses lists the statuses that occupy seats.
func CapacityStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingPendingHostApproval, BookingConfirmed}
}

// SourcesOf returns every status that may transition into target.
func SourcesOf(target BookingStatus) []BookingStatus {
	var out []BookingStatus
	for _, from := range []BookingStatus{BookingPending, BookingPendingHostApproval, BookingConfirmed, BookingCompleted} {
		if from.CanTransitionTo(target) {
			out = append(out, from)
		}
	}
	return out
}

// PaymentStatus mirrors the state of the booking's payment at the gateway.
type PaymentStatus string

const (
	PaymentNone              PaymentStatus = "none"
	PaymentRequiresPayment   PaymentStatus = "requires_payment"
	PaymentAuthorized        PaymentStatus = "authorized"
	PaymentCaptured          PaymentStatus = "captured"
	PaymentVoided            PaymentStatus = "voided"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentFailed            PaymentStatus = "failed"
)

// CancelledBy records who cancelled a booking.
type CancelledBy string

const (
	CancelledByGuest  CancelledBy = "guest"
	CancelledByHost   CancelledBy = "host"
	CancelledBySystem CancelledBy = "system"
)

// Booking is a guest's reservation of seats on an experience for one date.
// Money fields are in minor currency units.
type Booking struct {
	ID                 string        `json:"id"`
	ExperienceID       string        `json:"experience_id"`
	GuestID            string        `json:"guest_id"`
	HostID             string        `json:"host_id"`
	ExperienceDate     time.Time     `json:"experience_date"`
	StartTime          time.Time     `json:"start_time"`
	Guests             int           `json:"guests"`
	UnitPriceCents     int64         `json:"unit_price_cents"`
	TotalCents         int64         `json:"total_cents"`
	PlatformFeeCents   int64         `json:"platform_fee_cents"`
	HostPayoutCents    int64         `json:"host_payout_cents"`
	Currency           string        `json:"currency"`
	Status             BookingStatus `json:"status"`
	PaymentIntentID    string        `json:"payment_intent_id,omitempty"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	RefundCents        int64         `json:"refund_cents"`
	GuestMessage       string        `json:"guest_message,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledBy        CancelledBy   `json:"cancelled_by,omitempty"`
	IdempotencyKey     string        `json:"-"`
	AuthorizedAt       *time.Time    `json:"authorized_at,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	PaidOutAt          *time.Time    `json:"paid_out_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// IsParticipant reports whether userID is the guest or the host of the booking.
func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (b.GuestID == userID || b.HostID == userID)
}

// CapturedCents is the amount still held by the platform after refunds.
func (b *Booking) CapturedCents() int64 {
	if b.RefundCents >= b.TotalCents {
		return 0
	}
	return b.TotalCents - b.RefundCents
}
