package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/service"
)

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Location *string `json:"location" validate:"omitempty,max=200"`
}

// GetMe returns the caller's full profile.
//
//	@Summary	Current profile
//	@Tags		profiles
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/me [get]
func GetMe(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetMe(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateMe changes the fields present in the body.
//
//	@Summary	Update current profile
//	@Tags		profiles
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		updateProfileRequest	true	"fields to change"
//	@Success	200		{object}	map[string]any
//	@Failure	422		{object}	errorPayload
//	@Router		/me [patch]
func UpdateMe(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateProfileRequest
		if !bind(c, &req) {
			return nil
		}
		p, err := svc.UpdateMe(c.UserContext(), middleware.UserID(c), service.ProfileUpdate{
			FullName: req.FullName,
			Bio:      req.Bio,
			Phone:    req.Phone,
			Location: req.Location,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UploadAvatar replaces the caller's avatar (multipart field "file").
func UploadAvatar(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		up, ok := formImage(c)
		if !ok {
			return nil
		}
		defer up.file.Close()

		p, err := svc.UploadAvatar(c.UserContext(), middleware.UserID(c), up.file, up.contentType, up.size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// BecomeHost upgrades a guest to host.
func BecomeHost(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.BecomeHost(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// StartPayoutOnboarding returns the gateway onboarding link for the host.
func StartPayoutOnboarding(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.StartPayoutOnboarding(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

func RefreshPayoutStatus(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.RefreshPayoutStatus(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// GetProfile returns the public view of any user.
func GetProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}
