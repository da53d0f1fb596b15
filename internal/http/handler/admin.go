package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"
)

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=guest host admin"`
}

func HostDashboard(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.HostDashboard(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(d)
	}
}

// PlatformStats returns marketplace totals for the admin console.
//
//	@Summary	Platform statistics
//	@Tags		admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	service.PlatformStats
//	@Failure	403	{object}	errorPayload
//	@Router		/admin/stats [get]
func PlatformStats(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Stats(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s)
	}
}

func ListUsers(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListUsers(c.UserContext(), model.Role(c.Query("role")), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

func SetUserRole(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req roleRequest
		if !bind(c, &req) {
			return nil
		}
		if err := svc.SetUserRole(c.UserContext(), middleware.UserID(c), id, model.Role(req.Role)); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListTransactions(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListTransactions(c.UserContext(), model.TransactionType(c.Query("type")), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

func GetSettings(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Get(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(st)
	}
}

// UpdateSettings accepts a flat object of setting keys. Values may be JSON strings or numbers.
func UpdateSettings(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := c.BodyParser(&body); err != nil || len(body) == 0 {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "expected a JSON object of settings")
		}
		kv := make(map[string]string, len(body))
		for k, v := range body {
			switch val := v.(type) {
			case string:
				kv[k] = val
			case float64:
				kv[k] = strconv.FormatFloat(val, 'f', -1, 64)
			default:
				return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", fmt.Sprintf("%s must be a string or number", k))
			}
		}
		st, err := svc.Update(c.UserContext(), kv)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(st)
	}
}
