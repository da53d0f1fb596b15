package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"
)

const dateLayout = "2006-01-02"

// experienceRequest replaces every editable field on update.
type experienceRequest struct {
	CategoryID      string   `json:"category_id" validate:"omitempty,uuid"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	Location        string   `json:"location" validate:"required"`
	MeetingPoint    string   `json:"meeting_point"`
	PriceCents      int64    `json:"price_cents" validate:"gt=0"`
	Currency        string   `json:"currency" validate:"omitempty,alpha,len=3"`
	DurationMinutes int      `json:"duration_minutes" validate:"gt=0"`
	MinGuests       int      `json:"min_guests" validate:"min=1"`
	MaxGuests       int      `json:"max_guests" validate:"min=1"`
	InstantBooking  bool     `json:"instant_booking"`
	Highlights      []string `json:"highlights"`
}

func (r experienceRequest) input() service.ExperienceInput {
	return service.ExperienceInput{
		CategoryID:      r.CategoryID,
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		MeetingPoint:    r.MeetingPoint,
		PriceCents:      r.PriceCents,
		Currency:        r.Currency,
		DurationMinutes: r.DurationMinutes,
		MinGuests:       r.MinGuests,
		MaxGuests:       r.MaxGuests,
		InstantBooking:  r.InstantBooking,
		Highlights:      r.Highlights,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SearchExperiences lists active experiences.
//
//	@Summary	Search experiences
//	@Tags		experiences
//	@Produce	json
//	@Param		category	query		string	false	"category slug"
//	@Param		location	query		string	false	"location substring"
//	@Param		q			query		string	false	"free text"
//	@Param		min_price	query		int		false	"minimum price in cents"
//	@Param		max_price	query		int		false	"maximum price in cents"
//	@Param		guests		query		int		false	"party size"
//	@Param		sort		query		string	false	"newest|price_asc|price_desc|rating"
//	@Param		limit		query		int		false	"page size (default 12, max 50)"
//	@Param		offset		query		int		false	"offset"
//	@Success	200			{object}	map[string]any
//	@Failure	422			{object}	errorPayload
//	@Router		/experiences [get]
func SearchExperiences(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		minPrice, ok := queryInt(c, "min_price")
		if !ok {
			return nil
		}
		maxPrice, ok := queryInt(c, "max_price")
		if !ok {
			return nil
		}
		guests, ok := queryInt(c, "guests")
		if !ok {
			return nil
		}
		res, err := svc.Search(c.UserContext(), service.SearchQuery{
			CategorySlug:  c.Query("category"),
			Location:      c.Query("location"),
			Query:         c.Query("q"),
			MinPriceCents: int64(minPrice),
			MaxPriceCents: int64(maxPrice),
			Guests:        guests,
			Sort:          model.ExperienceSort(c.Query("sort")),
			Limit:         pq.limit,
			Offset:        pq.offset,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetExperience returns an experience by ID.
//
//	@Summary	Get experience
//	@Tags		experiences
//	@Produce	json
//	@Param		id	path		string	true	"experience id"
//	@Success	200	{object}	map[string]any
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/experiences/{id} [get]
func GetExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		e, err := svc.Get(c.UserContext(), actor(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(e)
	}
}

// GetExperienceImage streams one photo through the API for clients that cannot follow presigned URLs.
func GetExperienceImage(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil || index < 0 {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid image index")
		}
		rc, info, err := svc.Image(c.UserContext(), actor(c), id, index)
		if err != nil {
			return serviceError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
		}
		c.Set(fiber.HeaderCacheControl, "private, max-age=300")
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(rc, size)
	}
}

// GetAvailability reports remaining seats on ?date=YYYY-MM-DD.
func GetAvailability(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		date, err := time.Parse(dateLayout, c.Query("date"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "date must be YYYY-MM-DD")
		}
		a, err := svc.Availability(c.UserContext(), id, date)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(a)
	}
}

func ListMyExperiences(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListMine(c.UserContext(), middleware.UserID(c), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateExperience creates a draft owned by the caller.
//
//	@Summary	Create experience
//	@Tags		host
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		experienceRequest	true	"experience"
//	@Success	201		{object}	map[string]any
//	@Failure	422		{object}	errorPayload
//	@Router		/host/experiences [post]
func CreateExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req experienceRequest
		if !bind(c, &req) {
			return nil
		}
		e, err := svc.Create(c.UserContext(), middleware.UserID(c), req.input())
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

func UpdateExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req experienceRequest
		if !bind(c, &req) {
			return nil
		}
		e, err := svc.Update(c.UserContext(), actor(c), id, req.input())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(e)
	}
}

func DeleteExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), actor(c), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetExperienceStatus serves both the host route and the admin moderation route;
// the service decides which statuses the caller may set.
func SetExperienceStatus(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req statusRequest
		if !bind(c, &req) {
			return nil
		}
		e, err := svc.SetStatus(c.UserContext(), actor(c), id, model.ExperienceStatus(req.Status))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(e)
	}
}

func AddExperienceImage(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		up, ok := formImage(c)
		if !ok {
			return nil
		}
		defer up.file.Close()

		e, err := svc.AddImage(c.UserContext(), actor(c), id, up.file, up.contentType, up.size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

func RemoveExperienceImage(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil || index < 0 {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid image index")
		}
		e, err := svc.RemoveImage(c.UserContext(), actor(c), id, index)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(e)
	}
}
