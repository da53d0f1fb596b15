package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/service"
)

type createReviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type replyRequest struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}

// CreateReview reviews a finished booking.
//
//	@Summary	Review a booking
//	@Tags		reviews
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"booking id"
//	@Param		body	body		createReviewRequest	true	"review"
//	@Success	201		{object}	map[string]any
//	@Failure	409		{object}	errorPayload
//	@Router		/bookings/{id}/review [post]
func CreateReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req createReviewRequest
		if !bind(c, &req) {
			return nil
		}
		r, err := svc.Create(c.UserContext(), middleware.UserID(c), id, req.Rating, req.Comment)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func ReplyToReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req replyRequest
		if !bind(c, &req) {
			return nil
		}
		r, err := svc.Reply(c.UserContext(), middleware.UserID(c), id, req.Reply)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(r)
	}
}

func ListExperienceReviews(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListForExperience(c.UserContext(), id, pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

func ListHostReviews(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListForHost(c.UserContext(), middleware.UserID(c), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}
