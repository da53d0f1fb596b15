package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/repository"
	"marketapi/internal/service"
)

// IdempotencyKeyHeader may carry the booking idempotency key instead of the body field.
const IdempotencyKeyHeader = "Idempotency-Key"

type createBookingRequest struct {
	ExperienceID   string `json:"experience_id" validate:"required,uuid"`
	Date           string `json:"date" validate:"required"`
	StartTime      string `json:"start_time" validate:"omitempty,len=5"`
	Guests         int    `json:"guests" validate:"min=1"`
	Message        string `json:"message" validate:"max=1000"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=100"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// CreateBooking reserves seats and starts the card pre-authorization.
//
//	@Summary		Book an experience
//	@Description	Returns the pending booking and the client secret used to confirm the card.
//	@Tags			bookings
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body			body		createBookingRequest	true	"booking"
//	@Param			Idempotency-Key	header		string					false	"retry key"
//	@Success		201				{object}	service.Checkout
//	@Failure		402				{object}	errorPayload
//	@Failure		409				{object}	errorPayload
//	@Failure		422				{object}	errorPayload
//	@Router			/bookings [post]
func CreateBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// A body field overrides the header; either way the key goes through validation.
		req := createBookingRequest{IdempotencyKey: c.Get(IdempotencyKeyHeader)}
		if !bind(c, &req) {
			return nil
		}
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "date must be YYYY-MM-DD")
		}
		out, err := svc.Create(c.UserContext(), middleware.UserID(c), service.BookingRequest{
			ExperienceID:   req.ExperienceID,
			Date:           date,
			StartTime:      req.StartTime,
			Guests:         req.Guests,
			Message:        req.Message,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

func ListGuestBookings(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListForGuest(c.UserContext(), middleware.UserID(c), bookingStatus(c), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

func ListHostBookings(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListForHost(c.UserContext(), middleware.UserID(c), bookingStatus(c), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListAllBookings is the admin listing, filterable by guest_id, host_id and status.
func ListAllBookings(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		f := repository.BookingFilter{
			GuestID: c.Query("guest_id"),
			HostID:  c.Query("host_id"),
			Status:  bookingStatus(c),
		}
		res, err := svc.List(c.UserContext(), f, pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetBooking is visible to the booking's guest and host, and to admins.
func GetBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		b, err := svc.Get(c.UserContext(), actor(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

// ConfirmPayment lets the client report a finished card confirmation before the webhook lands.
func ConfirmPayment(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		b, err := svc.ConfirmPayment(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

func CancelBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req reasonRequest
		if !bind(c, &req) {
			return nil
		}
		b, err := svc.Cancel(c.UserContext(), actor(c), id, req.Reason)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

func ApproveBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		b, err := svc.Approve(c.UserContext(), actor(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

func DeclineBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req reasonRequest
		if !bind(c, &req) {
			return nil
		}
		b, err := svc.Decline(c.UserContext(), actor(c), id, req.Reason)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}
