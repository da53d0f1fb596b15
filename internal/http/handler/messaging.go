package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/service"
)

type startConversationRequest struct {
	HostID       string `json:"host_id" validate:"omitempty,uuid"`
	ExperienceID string `json:"experience_id" validate:"omitempty,uuid"`
	BookingID    string `json:"booking_id" validate:"omitempty,uuid"`
}

type sendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

func ListConversations(svc service.MessagingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListConversations(c.UserContext(), middleware.UserID(c), pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// StartConversation returns the existing thread between the caller and the host, or opens one.
func StartConversation(svc service.MessagingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req startConversationRequest
		if !bind(c, &req) {
			return nil
		}
		conv, err := svc.StartConversation(c.UserContext(), middleware.UserID(c), service.ConversationRequest{
			HostID:       req.HostID,
			ExperienceID: req.ExperienceID,
			BookingID:    req.BookingID,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(conv)
	}
}

func ListMessages(svc service.MessagingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		pq, ok := page(c)
		if !ok {
			return nil
		}
		res, err := svc.ListMessages(c.UserContext(), middleware.UserID(c), id, pq.limit, pq.offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

func SendMessage(svc service.MessagingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		var req sendMessageRequest
		if !bind(c, &req) {
			return nil
		}
		msg, err := svc.Send(c.UserContext(), middleware.UserID(c), id, req.Body)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}

func MarkConversationRead(svc service.MessagingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return nil
		}
		n, err := svc.MarkRead(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"updated": n})
	}
}

func UnreadMessages(svc service.MessagingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadCount(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}
