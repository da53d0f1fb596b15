package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/logger"
	"marketapi/internal/mailer"
	"marketapi/internal/metrics"
	"marketapi/internal/model"
	"marketapi/internal/payment"
	"marketapi/internal/repository"
)

const (
	defaultStartTime = "09:00"
	sweepBatch       = 100
)

// BookingRequest is a guest's request to book an experience.
type BookingRequest struct {
	ExperienceID   string
	Date           time.Time
	StartTime      string
	Guests         int
	Message        string
	IdempotencyKey string
}

// Checkout is a booking plus the client secret the guest uses to confirm the card.
type Checkout struct {
	Booking      *model.Booking `json:"booking"`
	ClientSecret string         `json:"client_secret,omitempty"`
}

// SweepResult summarizes one run of a lifecycle job.
type SweepResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// BookingService owns the booking state machine and the payment calls tied to it.
type BookingService interface {
	Create(ctx context.Context, guestID string, req BookingRequest) (*Checkout, error)
	// ConfirmPayment asks the gateway for the intent status and applies it. Used when the client
	// returns from card confirmation before the webhook arrives.
	ConfirmPayment(ctx context.Context, guestID, bookingID string) (*model.Booking, error)
	MarkAuthorized(ctx context.Context, intentID string) (*model.Booking, error)
	MarkPaymentFailed(ctx context.Context, intentID string) (*model.Booking, error)
	Approve(ctx context.Context, actor Actor, bookingID string) (*model.Booking, error)
	Decline(ctx context.Context, actor Actor, bookingID, reason string) (*model.Booking, error)
	Cancel(ctx context.Context, actor Actor, bookingID, reason string) (*model.Booking, error)
	Complete(ctx context.Context, bookingID string) (*model.Booking, error)
	Payout(ctx context.Context, bookingID string) (*model.Booking, error)

	ExpireStale(ctx context.Context, now time.Time) (SweepResult, error)
	CompleteDue(ctx context.Context, now time.Time) (SweepResult, error)
	PayoutDue(ctx context.Context, now time.Time) (SweepResult, error)

	Get(ctx context.Context, actor Actor, id string) (*model.Booking, error)
	ListForGuest(ctx context.Context, guestID string, status model.BookingStatus, limit, offset int) (*ListResult[model.Booking], error)
	ListForHost(ctx context.Context, hostID string, status model.BookingStatus, limit, offset int) (*ListResult[model.Booking], error)
	List(ctx context.Context, f repository.BookingFilter, limit, offset int) (*ListResult[model.Booking], error)
}

type bookingService struct {
	bookings     repository.BookingRepository
	experiences  repository.ExperienceRepository
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
	settings     SettingsService
	gateway      payment.Gateway
	notifier     Notifier
	metrics      *metrics.Metrics
	log          zerolog.Logger
	now          func() time.Time
}

// BookingDeps groups the collaborators of the booking service.
type BookingDeps struct {
	Bookings     repository.BookingRepository
	Experiences  repository.ExperienceRepository
	Profiles     repository.ProfileRepository
	Transactions repository.TransactionRepository
	Settings     SettingsService
	Gateway      payment.Gateway
	Notifier     Notifier
	Metrics      *metrics.Metrics
}

// NewBookingService constructs a BookingService. A nil Metrics disables counting.
func NewBookingService(d BookingDeps, log zerolog.Logger) BookingService {
	return &bookingService{
		bookings:     d.Bookings,
		experiences:  d.Experiences,
		profiles:     d.Profiles,
		transactions: d.Transactions,
		settings:     d.Settings,
		gateway:      d.Gateway,
		notifier:     d.Notifier,
		metrics:      d.Metrics,
		log:          log,
		now:          utcNow,
	}
}

// platformFee rounds half up to the nearest minor unit.
func platformFee(total int64, percent int) int64 {
	return (total*int64(percent) + 50) / 100
}

func parseStartTime(day time.Time, hhmm string) (time.Time, error) {
	if strings.TrimSpace(hhmm) == "" {
		hhmm = defaultStartTime
	}
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, invalid("start_time", "must be HH:MM")
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

func (s *bookingService) Create(ctx context.Context, guestID string, req BookingRequest) (*Checkout, error) {
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.IdempotencyKey != "" {
		existing, err := s.bookings.FindByIdempotencyKey(ctx, guestID, req.IdempotencyKey)
		switch {
		case err == nil:
			return s.resume(ctx, existing)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("find booking by idempotency key: %w", err)
		}
	}

	if len([]rune(req.Message)) > 1000 {
		return nil, invalid("message", "must be at most 1000 characters")
	}
	exp, err := s.experiences.FindByID(ctx, req.ExperienceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("experience_id", "experience not found")
		}
		return nil, fmt.Errorf("get experience: %w", err)
	}
	if exp.Status != model.ExperienceActive {
		return nil, invalid("experience_id", "experience is not open for booking")
	}
	if exp.HostID == guestID {
		return nil, invalid("experience_id", "hosts cannot book their own experience")
	}
	if req.Guests < exp.MinGuests || req.Guests > exp.MaxGuests {
		return nil, invalid("guests", fmt.Sprintf("must be between %d and %d", exp.MinGuests, exp.MaxGuests))
	}
	now := s.now()
	day := truncateDay(req.Date)
	if !day.After(truncateDay(now)) {
		return nil, invalid("date", "must be after today")
	}
	start, err := parseStartTime(day, req.StartTime)
	if err != nil {
		return nil, err
	}

	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	total := exp.PriceCents * int64(req.Guests)
	fee := platformFee(total, st.PlatformFeePercent)

	b := &model.Booking{
		ID:               uuid.NewString(),
		ExperienceID:     exp.ID,
		GuestID:          guestID,
		HostID:           exp.HostID,
		ExperienceDate:   day,
		StartTime:        start,
		Guests:           req.Guests,
		UnitPriceCents:   exp.PriceCents,
		TotalCents:       total,
		PlatformFeeCents: fee,
		HostPayoutCents:  total - fee,
		Currency:         exp.Currency,
		Status:           model.BookingPending,
		PaymentStatus:    model.PaymentNone,
		GuestMessage:     strings.TrimSpace(req.Message),
		IdempotencyKey:   req.IdempotencyKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := s.bookings.CreateWithCapacity(ctx, b)
	switch {
	case errors.Is(err, repository.ErrCapacityExceeded):
		return nil, ErrCapacityExceeded
	case errors.Is(err, repository.ErrConflict) && req.IdempotencyKey != "":
		// A concurrent request with the same key won the insert.
		existing, findErr := s.bookings.FindByIdempotencyKey(ctx, guestID, req.IdempotencyKey)
		if findErr != nil {
			return nil, fmt.Errorf("find booking by idempotency key: %w", findErr)
		}
		return s.resume(ctx, existing)
	case errors.Is(err, repository.ErrNotFound):
		return nil, invalid("experience_id", "experience not found")
	case err != nil:
		return nil, fmt.Errorf("create booking: %w", err)
	}

	log := logger.Ctx(ctx, s.log).With().Str("booking_id", created.ID).Logger()
	log.Info().Str("event", "booking_created").Int64("total_cents", total).Int("guests", req.Guests).Msg("booking created")

	var receipt string
	if guest, err := s.profiles.FindByID(ctx, guestID); err == nil {
		receipt = guest.Email
	}
	intent, err := s.gateway.Authorize(ctx, payment.AuthorizeRequest{
		AmountCents:    total,
		Currency:       created.Currency,
		BookingID:      created.ID,
		Description:    exp.Title,
		ReceiptEmail:   receipt,
		IdempotencyKey: created.ID,
	})
	s.metrics.PaymentOperation("authorize", err)
	if err != nil {
		log.Error().Err(err).Str("event", "authorize_failed").Msg("payment authorization failed")
		if _, cerr := s.transition(ctx, created, repository.BookingTransition{
			To:                 model.BookingCancelled,
			PaymentStatus:      model.PaymentFailed,
			CancelledBy:        model.CancelledBySystem,
			CancellationReason: "payment authorization failed",
		}); cerr != nil {
			log.Error().Err(cerr).Str("event", "cancel_failed").Msg("could not cancel booking after failed authorization")
		}
		return nil, &PaymentError{Op: "authorize", Err: err}
	}
	if err := s.bookings.SetPaymentIntent(ctx, created.ID, intent.ID, model.PaymentRequiresPayment); err != nil {
		return nil, fmt.Errorf("store payment intent: %w", err)
	}
	created.PaymentIntentID = intent.ID
	created.PaymentStatus = model.PaymentRequiresPayment
	return &Checkout{Booking: created, ClientSecret: intent.ClientSecret}, nil
}

// resume returns an existing booking for a repeated create. The client secret is only
// handed out again while the card still needs confirming.
func (s *bookingService) resume(ctx context.Context, b *model.Booking) (*Checkout, error) {
	out := &Checkout{Booking: b}
	if b.Status != model.BookingPending || b.PaymentIntentID == "" {
		return out, nil
	}
	intent, err := s.gateway.GetIntent(ctx, b.PaymentIntentID)
	s.metrics.PaymentOperation("get_intent", err)
	if err != nil {
		return nil, &PaymentError{Op: "get_intent", Err: err}
	}
	out.ClientSecret = intent.ClientSecret
	return out, nil
}

// transition moves b from its observed status to t.To. Losing a race maps to ErrInvalidTransition.
func (s *bookingService) transition(ctx context.Context, b *model.Booking, t repository.BookingTransition) (*model.Booking, error) {
	if !b.Status.CanTransitionTo(t.To) {
		return nil, ErrInvalidTransition
	}
	if t.At.IsZero() {
		t.At = s.now()
	}
	updated, err := s.bookings.Transition(ctx, b.ID, []model.BookingStatus{b.Status}, t)
	if errors.Is(err, repository.ErrStaleStatus) {
		lg := logger.Ctx(ctx, s.log)
		lg.Warn().Str("event", "transition_stale").Str("booking_id", b.ID).
			Str("from", string(b.Status)).Str("to", string(t.To)).Msg("booking changed concurrently")
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("transition booking: %w", err)
	}
	s.metrics.BookingTransition(string(b.Status), string(t.To))
	lg := logger.Ctx(ctx, s.log)
	lg.Info().Str("event", "booking_transition").Str("booking_id", b.ID).
		Str("from", string(b.Status)).Str("to", string(t.To)).Msg("booking status changed")
	return updated, nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, guestID, bookingID string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	if b.GuestID != guestID {
		return nil, ErrNotFound
	}
	if b.Status != model.BookingPending || b.PaymentIntentID == "" {
		return b, nil
	}
	intent, err := s.gateway.GetIntent(ctx, b.PaymentIntentID)
	s.metrics.PaymentOperation("get_intent", err)
	if err != nil {
		return nil, &PaymentError{Op: "get_intent", Err: err}
	}
	var settled *model.Booking
	switch intent.Status {
	case payment.IntentRequiresCapture, payment.IntentSucceeded:
		settled, err = s.authorized(ctx, b)
	case payment.IntentCanceled:
		settled, err = s.paymentFailed(ctx, b)
	default:
		return b, nil
	}
	if errors.Is(err, ErrInvalidTransition) {
		// The webhook moved the booking first; report where it ended up.
		current, ferr := s.bookings.FindByID(ctx, bookingID)
		if ferr != nil {
			return nil, notFound(ferr, "get booking")
		}
		return current, nil
	}
	return settled, err
}

func (s *bookingService) MarkAuthorized(ctx context.Context, intentID string) (*model.Booking, error) {
	b, err := s.bookings.FindByPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, notFound(err, "find booking by intent")
	}
	return s.authorized(ctx, b)
}

func (s *bookingService) authorized(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	if b.Status != model.BookingPending {
		return nil, ErrInvalidTransition
	}
	exp, err := s.experiences.FindByID(ctx, b.ExperienceID)
	if err != nil {
		return nil, fmt.Errorf("get experience: %w", err)
	}

	if exp.InstantBooking {
		claimed, err := s.transition(ctx, b, repository.BookingTransition{
			To:            model.BookingConfirmed,
			PaymentStatus: model.PaymentAuthorized,
		})
		if err != nil {
			return nil, err
		}
		return s.capture(ctx, claimed, exp)
	}

	updated, err := s.transition(ctx, b, repository.BookingTransition{
		To:            model.BookingPendingHostApproval,
		PaymentStatus: model.PaymentAuthorized,
	})
	if err != nil {
		return nil, err
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		st = model.DefaultSettings()
	}
	s.notify(ctx, updated, exp, updated.HostID, updated.GuestID, model.NotifyBookingRequest,
		"New booking request",
		fmt.Sprintf("%s on %s for %d guest(s) is waiting for your approval.", exp.Title, updated.ExperienceDate.Format(dateLayout), updated.Guests),
		"/host/bookings/"+updated.ID,
		func(d *mailer.Data) {
			d.Hours = st.HostApprovalHours
			d.Note = updated.GuestMessage
		})
	return updated, nil
}

// capture charges a booking that was already moved to confirmed. On failure the
// authorization is voided and the booking cancelled by the system.
func (s *bookingService) capture(ctx context.Context, b *model.Booking, exp *model.Experience) (*model.Booking, error) {
	log := logger.Ctx(ctx, s.log).With().Str("booking_id", b.ID).Logger()
	err := s.gateway.Capture(ctx, b.PaymentIntentID)
	s.metrics.PaymentOperation("capture", err)
	if err != nil {
		log.Error().Err(err).Str("event", "capture_failed").Msg("payment capture failed")
		voidErr := s.gateway.Void(ctx, b.PaymentIntentID)
		s.metrics.PaymentOperation("void", voidErr)
		if voidErr != nil {
			log.Error().Err(voidErr).Str("event", "void_failed").Msg("could not void authorization")
		}
		cancelled, cerr := s.transition(ctx, b, repository.BookingTransition{
			To:                 model.BookingCancelled,
			PaymentStatus:      model.PaymentFailed,
			CancelledBy:        model.CancelledBySystem,
			CancellationReason: "payment capture failed",
		})
		if cerr != nil {
			log.Error().Err(cerr).Str("event", "cancel_failed").Msg("could not cancel booking after failed capture")
		} else {
			s.notify(ctx, cancelled, exp, cancelled.GuestID, cancelled.HostID, model.NotifyBookingCancelled,
				"Booking cancelled", "Your payment could not be completed, so the booking was cancelled.",
				"/bookings/"+cancelled.ID, nil)
		}
		return nil, &PaymentError{Op: "capture", Err: err}
	}

	if err := s.bookings.SetPaymentIntent(ctx, b.ID, b.PaymentIntentID, model.PaymentCaptured); err != nil {
		log.Error().Err(err).Str("event", "payment_status_failed").Msg("could not store captured status")
	}
	b.PaymentStatus = model.PaymentCaptured
	s.record(ctx, &model.FinancialTransaction{
		BookingID:   b.ID,
		UserID:      b.GuestID,
		Type:        model.TxCharge,
		AmountCents: b.TotalCents,
		Currency:    b.Currency,
		ExternalID:  b.PaymentIntentID,
	})
	s.notify(ctx, b, exp, b.GuestID, b.HostID, model.NotifyBookingConfirmed,
		"Booking confirmed",
		fmt.Sprintf("%s on %s is confirmed.", exp.Title, b.ExperienceDate.Format(dateLayout)),
		"/bookings/"+b.ID, nil)
	return b, nil
}

func (s *bookingService) MarkPaymentFailed(ctx context.Context, intentID string) (*model.Booking, error) {
	b, err := s.bookings.FindByPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, notFound(err, "find booking by intent")
	}
	return s.paymentFailed(ctx, b)
}

func (s *bookingService) paymentFailed(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	if b.Status != model.BookingPending {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, b, repository.BookingTransition{
		To:                 model.BookingCancelled,
		PaymentStatus:      model.PaymentFailed,
		CancelledBy:        model.CancelledBySystem,
		CancellationReason: "payment failed",
	})
}

// hosted loads a booking the actor hosts.
func (s *bookingService) hosted(ctx context.Context, actor Actor, id string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	if b.HostID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *bookingService) Approve(ctx context.Context, actor Actor, bookingID string) (*model.Booking, error) {
	b, err := s.hosted(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingPendingHostApproval {
		return nil, ErrInvalidTransition
	}
	exp, err := s.experiences.FindByID(ctx, b.ExperienceID)
	if err != nil {
		return nil, fmt.Errorf("get experience: %w", err)
	}
	claimed, err := s.transition(ctx, b, repository.BookingTransition{To: model.BookingConfirmed})
	if err != nil {
		return nil, err
	}
	return s.capture(ctx, claimed, exp)
}

func (s *bookingService) Decline(ctx context.Context, actor Actor, bookingID, reason string) (*model.Booking, error) {
	b, err := s.hosted(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingPendingHostApproval {
		return nil, ErrInvalidTransition
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > 500 {
		return nil, invalid("reason", "must be at most 500 characters")
	}
	if reason == "" {
		reason = "declined by host"
	}
	declined, err := s.transition(ctx, b, repository.BookingTransition{
		To:                 model.BookingCancelled,
		PaymentStatus:      model.PaymentVoided,
		CancelledBy:        model.CancelledByHost,
		CancellationReason: reason,
	})
	if err != nil {
		return nil, err
	}
	s.void(ctx, declined)
	s.notify(ctx, declined, nil, declined.GuestID, declined.HostID, model.NotifyBookingDeclined,
		"Booking declined", "The host could not accept your request. Your card was not charged.",
		"/bookings/"+declined.ID, func(d *mailer.Data) { d.Note = reason })
	return declined, nil
}

// void releases an authorization after the booking was already cancelled. Failures are logged;
// uncaptured authorizations lapse at the gateway on their own.
func (s *bookingService) void(ctx context.Context, b *model.Booking) {
	if b.PaymentIntentID == "" {
		return
	}
	err := s.gateway.Void(ctx, b.PaymentIntentID)
	s.metrics.PaymentOperation("void", err)
	if err != nil {
		lg := logger.Ctx(ctx, s.log)
		lg.Error().Err(err).Str("event", "void_failed").Str("booking_id", b.ID).Msg("could not void authorization")
	}
}

// refundAmount applies the cancellation policy to a confirmed booking.
func refundAmount(b *model.Booking, by model.CancelledBy, st model.Settings, now time.Time) int64 {
	captured := b.CapturedCents()
	if by != model.CancelledByGuest {
		return captured
	}
	if b.StartTime.Sub(now) >= time.Duration(st.FreeCancellationHours)*time.Hour {
		return captured
	}
	amount := b.TotalCents * int64(st.LateCancellationRefundPercent) / 100
	if amount > captured {
		amount = captured
	}
	return amount
}

func (s *bookingService) Cancel(ctx context.Context, actor Actor, bookingID, reason string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	var by model.CancelledBy
	switch actor.ID {
	case b.GuestID:
		by = model.CancelledByGuest
	case b.HostID:
		by = model.CancelledByHost
	default:
		if !actor.IsAdmin() {
			return nil, ErrNotFound
		}
		by = model.CancelledBySystem
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > 500 {
		return nil, invalid("reason", "must be at most 500 characters")
	}

	var cancelled *model.Booking
	switch b.Status {
	case model.BookingPending, model.BookingPendingHostApproval:
		t := repository.BookingTransition{
			To:                 model.BookingCancelled,
			CancelledBy:        by,
			CancellationReason: reason,
		}
		if b.PaymentIntentID != "" {
			t.PaymentStatus = model.PaymentVoided
		}
		cancelled, err = s.transition(ctx, b, t)
		if err != nil {
			return nil, err
		}
		s.void(ctx, cancelled)
	case model.BookingConfirmed:
		now := s.now()
		if !now.Before(b.StartTime) {
			return nil, ErrInvalidTransition
		}
		st, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		amount := refundAmount(b, by, st, now)
		t := repository.BookingTransition{
			To:                 model.BookingCancelled,
			CancelledBy:        by,
			CancellationReason: reason,
			RefundCents:        amount,
			At:                 now,
		}
		var refundID string
		if amount > 0 {
			refundID, err = s.gateway.Refund(ctx, b.PaymentIntentID, amount, "refund-"+b.ID)
			s.metrics.PaymentOperation("refund", err)
			if err != nil {
				return nil, &PaymentError{Op: "refund", Err: err}
			}
			t.PaymentStatus = model.PaymentPartiallyRefunded
			if amount >= b.CapturedCents() {
				t.PaymentStatus = model.PaymentRefunded
			}
		}
		cancelled, err = s.transition(ctx, b, t)
		if err != nil {
			if refundID != "" {
				lg := logger.Ctx(ctx, s.log)
				lg.Error().Err(err).Str("event", "refund_orphaned").Str("booking_id", b.ID).
					Str("refund_id", refundID).Msg("refund issued but booking not cancelled")
			}
			return nil, err
		}
		if amount > 0 {
			s.record(ctx, &model.FinancialTransaction{
				BookingID:   b.ID,
				UserID:      b.GuestID,
				Type:        model.TxRefund,
				AmountCents: amount,
				Currency:    b.Currency,
				ExternalID:  refundID,
			})
		}
	default:
		return nil, ErrInvalidTransition
	}

	// Tell the other side.
	recipient, counterpart := cancelled.HostID, cancelled.GuestID
	if by == model.CancelledByHost {
		recipient, counterpart = cancelled.GuestID, cancelled.HostID
	}
	body := "A booking was cancelled."
	if cancelled.RefundCents > 0 {
		body = fmt.Sprintf("A booking was cancelled. %s will be refunded.", formatMoney(cancelled.RefundCents, cancelled.Currency))
	}
	s.notify(ctx, cancelled, nil, recipient, counterpart, model.NotifyBookingCancelled,
		"Booking cancelled", body, "/bookings/"+cancelled.ID, func(d *mailer.Data) {
			d.Note = reason
			if cancelled.RefundCents > 0 {
				d.Amount = formatMoney(cancelled.RefundCents, cancelled.Currency)
			}
		})
	if by == model.CancelledBySystem {
		s.notify(ctx, cancelled, nil, cancelled.GuestID, cancelled.HostID, model.NotifyBookingCancelled,
			"Booking cancelled", body, "/bookings/"+cancelled.ID, nil)
	}
	return cancelled, nil
}

func (s *bookingService) Complete(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	return s.complete(ctx, b)
}

func (s *bookingService) complete(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	if b.Status != model.BookingConfirmed || !b.StartTime.Before(s.now()) {
		return nil, ErrInvalidTransition
	}
	done, err := s.transition(ctx, b, repository.BookingTransition{To: model.BookingCompleted})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, done, nil, done.GuestID, done.HostID, model.NotifyReviewReminder,
		"How was your experience?", "Leave a review to help other guests.",
		"/bookings/"+done.ID+"/review", nil)
	return done, nil
}

func (s *bookingService) Payout(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	return s.payout(ctx, b)
}

// payoutAmount is the host payout minus the host's proportional share of refunds.
func payoutAmount(b *model.Booking) int64 {
	if b.TotalCents <= 0 {
		return 0
	}
	share := b.RefundCents * b.HostPayoutCents / b.TotalCents
	if share > b.HostPayoutCents {
		return 0
	}
	return b.HostPayoutCents - share
}

func (s *bookingService) payout(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	if b.Status != model.BookingCompleted {
		return nil, ErrInvalidTransition
	}
	host, err := s.profiles.FindByID(ctx, b.HostID)
	if err != nil {
		return nil, fmt.Errorf("get host: %w", err)
	}
	if !host.PayoutsEnabled || host.StripeAccountID == "" {
		return nil, ErrPayoutsDisabled
	}

	amount := payoutAmount(b)
	var transferID string
	if amount > 0 {
		transferID, err = s.gateway.Transfer(ctx, payment.TransferRequest{
			AmountCents:    amount,
			Currency:       b.Currency,
			Destination:    host.StripeAccountID,
			BookingID:      b.ID,
			IdempotencyKey: b.ID,
		})
		s.metrics.PaymentOperation("transfer", err)
		if err != nil {
			return nil, &PaymentError{Op: "transfer", Err: err}
		}
	}
	paid, err := s.transition(ctx, b, repository.BookingTransition{To: model.BookingPaidOut})
	if err != nil {
		return nil, err
	}
	if amount > 0 {
		s.record(ctx, &model.FinancialTransaction{
			BookingID:   b.ID,
			UserID:      b.HostID,
			Type:        model.TxPayout,
			AmountCents: amount,
			Currency:    b.Currency,
			ExternalID:  transferID,
		})
	}
	if fee := b.CapturedCents() - amount; fee > 0 {
		s.record(ctx, &model.FinancialTransaction{
			BookingID:   b.ID,
			Type:        model.TxPlatformFee,
			AmountCents: fee,
			Currency:    b.Currency,
		})
	}
	s.notify(ctx, paid, nil, paid.HostID, paid.GuestID, model.NotifyPayoutSent,
		"Payout sent", fmt.Sprintf("%s is on its way to your account.", formatMoney(amount, paid.Currency)),
		"/host/bookings/"+paid.ID, func(d *mailer.Data) { d.Amount = formatMoney(amount, paid.Currency) })
	return paid, nil
}

func (s *bookingService) ExpireStale(ctx context.Context, now time.Time) (SweepResult, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	var res SweepResult

	unpaid, err := s.bookings.ListDue(ctx, model.BookingPending, repository.DueByCreatedAt,
		now.Add(-time.Duration(st.PaymentWindowMinutes)*time.Minute), sweepBatch)
	if err != nil {
		return res, fmt.Errorf("list unpaid bookings: %w", err)
	}
	for i := range unpaid {
		s.sweep(ctx, &res, "expire", &unpaid[i], func(b *model.Booking) error {
			return s.expire(ctx, b, "payment not completed in time")
		})
	}

	unanswered, err := s.bookings.ListDue(ctx, model.BookingPendingHostApproval, repository.DueByAuthorizedAt,
		now.Add(-time.Duration(st.HostApprovalHours)*time.Hour), sweepBatch)
	if err != nil {
		return res, fmt.Errorf("list unanswered bookings: %w", err)
	}
	for i := range unanswered {
		s.sweep(ctx, &res, "expire", &unanswered[i], func(b *model.Booking) error {
			return s.expire(ctx, b, "host did not respond in time")
		})
	}
	return res, nil
}

func (s *bookingService) expire(ctx context.Context, b *model.Booking, reason string) error {
	t := repository.BookingTransition{
		To:                 model.BookingCancelled,
		CancelledBy:        model.CancelledBySystem,
		CancellationReason: reason,
	}
	if b.PaymentIntentID != "" {
		t.PaymentStatus = model.PaymentVoided
	}
	expired, err := s.transition(ctx, b, t)
	if err != nil {
		return err
	}
	s.void(ctx, expired)
	if b.Status == model.BookingPendingHostApproval {
		s.notify(ctx, expired, nil, expired.GuestID, expired.HostID, model.NotifyBookingCancelled,
			"Booking request expired", "The host did not respond in time. Your card was not charged.",
			"/bookings/"+expired.ID, func(d *mailer.Data) { d.Note = reason })
	}
	return nil
}

func (s *bookingService) CompleteDue(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult
	due, err := s.bookings.ListDue(ctx, model.BookingConfirmed, repository.DueByStartTime, now, sweepBatch)
	if err != nil {
		return res, fmt.Errorf("list bookings to complete: %w", err)
	}
	for i := range due {
		s.sweep(ctx, &res, "complete", &due[i], func(b *model.Booking) error {
			_, err := s.complete(ctx, b)
			return err
		})
	}
	return res, nil
}

func (s *bookingService) PayoutDue(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult
	due, err := s.bookings.ListDue(ctx, model.BookingCompleted, repository.DueByStartTime, now, sweepBatch)
	if err != nil {
		return res, fmt.Errorf("list bookings to pay out: %w", err)
	}
	for i := range due {
		s.sweep(ctx, &res, "payout", &due[i], func(b *model.Booking) error {
			_, err := s.payout(ctx, b)
			return err
		})
	}
	return res, nil
}

// sweep runs fn for one booking of a batch. A failing booking is counted and logged, never fatal.
func (s *bookingService) sweep(ctx context.Context, res *SweepResult, job string, b *model.Booking, fn func(*model.Booking) error) {
	if ctx.Err() != nil {
		res.Skipped++
		return
	}
	err := fn(b)
	switch {
	case err == nil:
		res.Processed++
	case errors.Is(err, ErrPayoutsDisabled), errors.Is(err, ErrInvalidTransition):
		res.Skipped++
		lg := logger.Ctx(ctx, s.log)
		lg.Debug().Err(err).Str("event", "sweep_skipped").Str("job", job).Str("booking_id", b.ID).Msg("booking skipped")
	default:
		res.Failed++
		lg := logger.Ctx(ctx, s.log)
		lg.Error().Err(err).Str("event", "sweep_failed").Str("job", job).Str("booking_id", b.ID).Msg("booking sweep failed")
	}
}

func (s *bookingService) Get(ctx context.Context, actor Actor, id string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	if !b.IsParticipant(actor.ID) && !actor.IsAdmin() {
		return nil, ErrNotFound
	}
	return b, nil
}

func validStatusFilter(status model.BookingStatus) error {
	if status != "" && !status.Valid() {
		return invalid("status", "unknown booking status")
	}
	return nil
}

func (s *bookingService) ListForGuest(ctx context.Context, guestID string, status model.BookingStatus, limit, offset int) (*ListResult[model.Booking], error) {
	return s.List(ctx, repository.BookingFilter{GuestID: guestID, Status: status}, limit, offset)
}

func (s *bookingService) ListForHost(ctx context.Context, hostID string, status model.BookingStatus, limit, offset int) (*ListResult[model.Booking], error) {
	return s.List(ctx, repository.BookingFilter{HostID: hostID, Status: status}, limit, offset)
}

func (s *bookingService) List(ctx context.Context, f repository.BookingFilter, limit, offset int) (*ListResult[model.Booking], error) {
	if err := validStatusFilter(f.Status); err != nil {
		return nil, err
	}
	res, err := s.bookings.List(ctx, f, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return listResult(res), nil
}

// record appends a ledger entry. The money already moved, so a failed insert is logged loudly
// instead of failing the request.
func (s *bookingService) record(ctx context.Context, t *model.FinancialTransaction) {
	t.ID = uuid.NewString()
	t.Status = "succeeded"
	t.CreatedAt = s.now()
	if _, err := s.transactions.Create(ctx, t); err != nil {
		lg := logger.Ctx(ctx, s.log)
		lg.Error().Err(err).Str("event", "ledger_write_failed").Str("booking_id", t.BookingID).
			Str("type", string(t.Type)).Int64("amount_cents", t.AmountCents).Msg("could not record transaction")
	}
}

// notify sends a booking notice to recipient. counterpartID names the other side in the email.
// exp may be nil and is then loaded.
func (s *bookingService) notify(ctx context.Context, b *model.Booking, exp *model.Experience, recipient, counterpartID string,
	kind model.NotificationType, title, body, link string, extra func(*mailer.Data)) {
	if s.notifier == nil {
		return
	}
	if exp == nil {
		if e, err := s.experiences.FindByID(ctx, b.ExperienceID); err == nil {
			exp = e
		}
	}
	data := &mailer.Data{
		Date:   b.StartTime.Format("Mon, 02 Jan 2006 15:04 MST"),
		Guests: b.Guests,
		Amount: formatMoney(b.TotalCents, b.Currency),
	}
	if exp != nil {
		data.ExperienceTitle = exp.Title
	}
	if p, err := s.profiles.FindByID(ctx, counterpartID); err == nil {
		data.Counterpart = p.FullName
	}
	if extra != nil {
		extra(data)
	}
	s.notifier.Notify(ctx, Notice{
		UserID: recipient,
		Type:   kind,
		Title:  title,
		Body:   body,
		Link:   link,
		Email:  data,
	})
}
