package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/service"
)

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// StripeWebhook applies a payment gateway event. Unknown and duplicate events answer 200;
// processing failures answer 500 so the gateway redelivers.
//
//	@Summary	Payment gateway webhook
//	@Tags		webhooks
//	@Accept		json
//	@Produce	json
//	@Param		Stripe-Signature	header		string	true	"signature"
//	@Success	200					{object}	map[string]string
//	@Failure	400					{object}	errorPayload
//	@Router		/webhooks/stripe [post]
func StripeWebhook(svc service.WebhookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Body() is reused by fasthttp after the handler returns.
		payload := append([]byte(nil), c.Body()...)
		result, err := svc.Handle(c.UserContext(), payload, c.Get(StripeSignatureHeader))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"result": result})
	}
}
