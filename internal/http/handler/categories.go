package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/service"
)

type createCategoryRequest struct {
	Slug      string `json:"slug" validate:"required,max=60"`
	Name      string `json:"name" validate:"required,max=100"`
	Icon      string `json:"icon" validate:"max=60"`
	SortOrder int    `json:"sort_order" validate:"min=0"`
}

// ListCategories returns every category in display order.
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/categories [get]
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(list(items))
	}
}

func CreateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCategoryRequest
		if !bind(c, &req) {
			return nil
		}
		cat, err := svc.Create(c.UserContext(), service.CategoryInput{
			Slug:      req.Slug,
			Name:      req.Name,
			Icon:      req.Icon,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

func DeleteCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
