package repository

import (
	"context"
	"time"

	"marketapi/internal/model"
)

// BookingFilter narrows booking listings. Empty fields are ignored.
type BookingFilter struct {
	GuestID string
	HostID  string
	Status  model.BookingStatus
}

// BookingTransition describes a status change and the fields that change with it.
// Empty strings leave the stored value untouched; RefundCents is added to the stored amount.
type BookingTransition struct {
	To                 model.BookingStatus
	PaymentStatus      model.PaymentStatus
	RefundCents        int64
	CancellationReason string
	CancelledBy        model.CancelledBy
	At                 time.Time
}

// DueColumn selects the timestamp a sweep compares against.
type DueColumn string

const (
	DueByCreatedAt    DueColumn = "created_at"
	DueByAuthorizedAt DueColumn = "authorized_at"
	DueByStartTime    DueColumn = "start_time"
)

// BookingRepository persists bookings.
type BookingRepository interface {
	// CreateWithCapacity inserts the booking inside a transaction that locks the experience row
	// and returns ErrCapacityExceeded when the date has fewer free seats than requested.
	CreateWithCapacity(ctx context.Context, b *model.Booking) (*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error)
	FindByIdempotencyKey(ctx context.Context, guestID, key string) (*model.Booking, error)
	SetPaymentIntent(ctx context.Context, id, intentID string, ps model.PaymentStatus) error
	// Transition applies t only if the booking is currently in one of from.
	// It returns ErrStaleStatus when the booking moved on concurrently.
	Transition(ctx context.Context, id string, from []model.BookingStatus, t BookingTransition) (*model.Booking, error)
	List(ctx context.Context, f BookingFilter, pq PageQuery) (*PageResult[model.Booking], error)
	// ListDue returns up to limit bookings in status whose column is older than before.
	ListDue(ctx context.Context, status model.BookingStatus, column DueColumn, before time.Time, limit int) ([]model.Booking, error)
	ReservedSeats(ctx context.Context, experienceID string, date time.Time) (int, error)
	// CountForExperience returns the number of seat-holding bookings and of all bookings.
	CountForExperience(ctx context.Context, experienceID string) (active, total int, err error)
	CountByStatus(ctx context.Context, hostID string) (map[model.BookingStatus]int, error)
	// SumHostPayouts totals host_payout_cents of the host's bookings in statuses.
	SumHostPayouts(ctx context.Context, hostID string, statuses []model.BookingStatus) (int64, error)
	CountUpcoming(ctx context.Context, hostID string, now time.Time) (int, error)
}
