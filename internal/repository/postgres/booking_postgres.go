package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"marketapi/internal/database"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const bookingColumns = `id, experience_id, guest_id, host_id, experience_date, start_time, guests,
	unit_price_cents, total_cents, platform_fee_cents, host_payout_cents, currency, status,
	payment_intent_id, payment_status, refund_cents, guest_message, cancellation_reason, cancelled_by,
	idempotency_key, authorized_at, confirmed_at, cancelled_at, completed_at, paid_out_at,
	created_at, updated_at`

// BookingPostgres is a PostgreSQL implementation of repository.BookingRepository.
type BookingPostgres struct {
	db *sql.DB
}

// NewBookingPostgres creates a new BookingPostgres repository.
func NewBookingPostgres(db *sql.DB) *BookingPostgres {
	return &BookingPostgres{db: db}
}

var _ repository.BookingRepository = (*BookingPostgres)(nil)

func scanBooking(s scanner) (*model.Booking, error) {
	var b model.Booking
	var status, paymentStatus, cancelledBy string
	var idemKey sql.NullString
	var authorizedAt, confirmedAt, cancelledAt, completedAt, paidOutAt sql.NullTime
	if err := s.Scan(
		&b.ID,
		&b.ExperienceID,
		&b.GuestID,
		&b.HostID,
		&b.ExperienceDate,
		&b.StartTime,
		&b.Guests,
		&b.UnitPriceCents,
		&b.TotalCents,
		&b.PlatformFeeCents,
		&b.HostPayoutCents,
		&b.Currency,
		&status,
		&b.PaymentIntentID,
		&paymentStatus,
		&b.RefundCents,
		&b.GuestMessage,
		&b.CancellationReason,
		&cancelledBy,
		&idemKey,
		&authorizedAt,
		&confirmedAt,
		&cancelledAt,
		&completedAt,
		&paidOutAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	b.Status = model.BookingStatus(status)
	b.PaymentStatus = model.PaymentStatus(paymentStatus)
	b.CancelledBy = model.CancelledBy(cancelledBy)
	b.IdempotencyKey = idemKey.String
	b.AuthorizedAt = timePtr(authorizedAt)
	b.ConfirmedAt = timePtr(confirmedAt)
	b.CancelledAt = timePtr(cancelledAt)
	b.CompletedAt = timePtr(completedAt)
	b.PaidOutAt = timePtr(paidOutAt)
	return &b, nil
}

func statusArray(statuses []model.BookingStatus) any {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return pq.Array(out)
}

const reservedSeatsQuery = `
	SELECT COALESCE(SUM(guests), 0)
	FROM bookings
	WHERE experience_id = $1 AND experience_date = $2 AND status = ANY($3)
`

// CreateWithCapacity inserts the booking while holding a row lock on its experience,
// so concurrent requests for the same experience check capacity one at a time.
func (r *BookingPostgres) CreateWithCapacity(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	var out *model.Booking
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var maxGuests int
		if err := tx.QueryRowContext(ctx, `SELECT max_guests FROM experiences WHERE id = $1 FOR UPDATE`, b.ExperienceID).
			Scan(&maxGuests); err != nil {
			return mapError(err)
		}

		var reserved int
		if err := tx.QueryRowContext(ctx, reservedSeatsQuery, b.ExperienceID, b.ExperienceDate, statusArray(model.CapacityStatuses())).
			Scan(&reserved); err != nil {
			return err
		}
		if reserved+b.Guests > maxGuests {
			return repository.ErrCapacityExceeded
		}

		const q = `
			INSERT INTO bookings (id, experience_id, guest_id, host_id, experience_date, start_time, guests,
				unit_price_cents, total_cents, platform_fee_cents, host_payout_cents, currency, status,
				payment_status, guest_message, idempotency_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
			RETURNING ` + bookingColumns
		row := tx.QueryRowContext(ctx, q,
			b.ID,
			b.ExperienceID,
			b.GuestID,
			b.HostID,
			b.ExperienceDate,
			b.StartTime,
			b.Guests,
			b.UnitPriceCents,
			b.TotalCents,
			b.PlatformFeeCents,
			b.HostPayoutCents,
			b.Currency,
			string(b.Status),
			string(b.PaymentStatus),
			b.GuestMessage,
			nullString(b.IdempotencyKey),
			b.CreatedAt,
		)
		created, err := scanBooking(row)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single booking by its ID.
func (r *BookingPostgres) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, q, id))
}

// FindByPaymentIntent fetches the booking paid by the given payment intent.
func (r *BookingPostgres) FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, q, intentID))
}

// FindByIdempotencyKey fetches a guest's booking created with the given client key.
func (r *BookingPostgres) FindByIdempotencyKey(ctx context.Context, guestID, key string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE guest_id = $1 AND idempotency_key = $2`
	return scanBooking(r.db.QueryRowContext(ctx, q, guestID, key))
}

// SetPaymentIntent attaches the gateway payment intent to a booking.
func (r *BookingPostgres) SetPaymentIntent(ctx context.Context, id, intentID string, ps model.PaymentStatus) error {
	const q = `UPDATE bookings SET payment_intent_id = $2, payment_status = $3, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, intentID, string(ps))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Transition performs a compare-and-set status update.
func (r *BookingPostgres) Transition(ctx context.Context, id string, from []model.BookingStatus, t repository.BookingTransition) (*model.Booking, error) {
	const q = `
		UPDATE bookings SET
			status = $2,
			payment_status = CASE WHEN $3 = '' THEN payment_status ELSE $3 END,
			refund_cents = refund_cents + $4,
			cancellation_reason = CASE WHEN $5 = '' THEN cancellation_reason ELSE $5 END,
			cancelled_by = CASE WHEN $6 = '' THEN cancelled_by ELSE $6 END,
			authorized_at = COALESCE(authorized_at, CASE WHEN $3 IN ('authorized', 'captured') THEN $7::timestamptz END),
			confirmed_at = CASE WHEN $2 = 'confirmed' THEN $7 ELSE confirmed_at END,
			cancelled_at = CASE WHEN $2 = 'cancelled' THEN $7 ELSE cancelled_at END,
			completed_at = CASE WHEN $2 = 'completed' THEN $7 ELSE completed_at END,
			paid_out_at = CASE WHEN $2 = 'paid_out' THEN $7 ELSE paid_out_at END,
			updated_at = $7
		WHERE id = $1 AND status = ANY($8)
		RETURNING ` + bookingColumns
	at := t.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, q,
		id,
		string(t.To),
		string(t.PaymentStatus),
		t.RefundCents,
		t.CancellationReason,
		string(t.CancelledBy),
		at,
		statusArray(from),
	)
	b, err := scanBooking(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrStaleStatus
	}
	return b, err
}

// List returns bookings matching the filter, newest first.
func (r *BookingPostgres) List(ctx context.Context, f repository.BookingFilter, page repository.PageQuery) (*repository.PageResult[model.Booking], error) {
	page = normalizePage(page)
	const where = `($1 = '' OR guest_id::text = $1) AND ($2 = '' OR host_id::text = $2) AND ($3 = '' OR status = $3)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE `+where, f.GuestID, f.HostID, string(f.Status)).
		Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.db.QueryContext(ctx, q, f.GuestID, f.HostID, string(f.Status), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Booking]{Items: items, Total: total}, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	items := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListDue returns bookings in status whose column timestamp is before the cutoff, oldest first.
func (r *BookingPostgres) ListDue(ctx context.Context, status model.BookingStatus, column repository.DueColumn, before time.Time, limit int) ([]model.Booking, error) {
	switch column {
	case repository.DueByCreatedAt, repository.DueByAuthorizedAt, repository.DueByStartTime:
	default:
		return nil, fmt.Errorf("unsupported due column %q", column)
	}
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf(`SELECT %s FROM bookings WHERE status = $1 AND %s < $2 ORDER BY %s LIMIT $3`,
		bookingColumns, column, column)
	rows, err := r.db.QueryContext(ctx, q, string(status), before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ReservedSeats sums guests of capacity-holding bookings for an experience date.
func (r *BookingPostgres) ReservedSeats(ctx context.Context, experienceID string, date time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, reservedSeatsQuery, experienceID, date, statusArray(model.CapacityStatuses())).Scan(&n)
	return n, err
}

// CountForExperience counts the experience's seat-holding bookings and all of its bookings.
func (r *BookingPostgres) CountForExperience(ctx context.Context, experienceID string) (int, int, error) {
	const q = `SELECT COUNT(*) FILTER (WHERE status = ANY($2)), COUNT(*) FROM bookings WHERE experience_id = $1`
	var active, total int
	err := r.db.QueryRowContext(ctx, q, experienceID, statusArray(model.CapacityStatuses())).Scan(&active, &total)
	return active, total, err
}

// CountByStatus returns booking counts per status, optionally for one host.
func (r *BookingPostgres) CountByStatus(ctx context.Context, hostID string) (map[model.BookingStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM bookings WHERE ($1 = '' OR host_id::text = $1) GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.BookingStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.BookingStatus(status)] = n
	}
	return out, rows.Err()
}

// SumHostPayouts totals host payouts of the host's bookings in the given statuses.
func (r *BookingPostgres) SumHostPayouts(ctx context.Context, hostID string, statuses []model.BookingStatus) (int64, error) {
	const q = `SELECT COALESCE(SUM(host_payout_cents), 0) FROM bookings WHERE host_id = $1 AND status = ANY($2)`
	var sum int64
	err := r.db.QueryRowContext(ctx, q, hostID, statusArray(statuses)).Scan(&sum)
	return sum, err
}

// CountUpcoming counts the host's confirmed bookings that have not started yet.
func (r *BookingPostgres) CountUpcoming(ctx context.Context, hostID string, now time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE host_id = $1 AND status = 'confirmed' AND start_time > $2`
	var n int
	err := r.db.QueryRowContext(ctx, q, hostID, now).Scan(&n)
	return n, err
}
