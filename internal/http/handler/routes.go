package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Profiles      service.ProfileService
	Categories    service.CategoryService
	Experiences   service.ExperienceService
	Bookings      service.BookingService
	Reviews       service.ReviewService
	Messaging     service.MessagingService
	Notifications service.NotificationService
	Settings      service.SettingsService
	Dashboard     service.DashboardService
	Webhooks      service.WebhookService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, auth *middleware.Authenticator) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/webhooks/stripe", StripeWebhook(svc.Webhooks))

	app.Get("/categories", ListCategories(svc.Categories))
	app.Get("/experiences", SearchExperiences(svc.Experiences))
	// Optional auth lets hosts and admins see experiences that are not active.
	app.Get("/experiences/:id", auth.Optional(), GetExperience(svc.Experiences))
	app.Get("/experiences/:id/images/:index", auth.Optional(), GetExperienceImage(svc.Experiences))
	app.Get("/experiences/:id/availability", GetAvailability(svc.Experiences))
	app.Get("/experiences/:id/reviews", ListExperienceReviews(svc.Reviews))
	app.Get("/profiles/:id", GetProfile(svc.Profiles))

	me := app.Group("/me", auth.Required())
	me.Get("", GetMe(svc.Profiles))
	me.Patch("", UpdateMe(svc.Profiles))
	me.Post("/avatar", UploadAvatar(svc.Profiles))
	me.Post("/host", BecomeHost(svc.Profiles))
	me.Post("/payouts/onboard", StartPayoutOnboarding(svc.Profiles))
	me.Post("/payouts/refresh", RefreshPayoutStatus(svc.Profiles))
	me.Get("/notifications", ListNotifications(svc.Notifications))
	me.Get("/notifications/unread-count", UnreadNotifications(svc.Notifications))
	me.Post("/notifications/read-all", MarkAllNotificationsRead(svc.Notifications))
	me.Post("/notifications/:id/read", MarkNotificationRead(svc.Notifications))

	bookings := app.Group("/bookings", auth.Required())
	bookings.Post("", CreateBooking(svc.Bookings))
	bookings.Get("", ListGuestBookings(svc.Bookings))
	bookings.Get("/:id", GetBooking(svc.Bookings))
	bookings.Post("/:id/confirm-payment", ConfirmPayment(svc.Bookings))
	bookings.Post("/:id/cancel", CancelBooking(svc.Bookings))
	bookings.Post("/:id/review", CreateReview(svc.Reviews))

	conversations := app.Group("/conversations", auth.Required())
	conversations.Get("", ListConversations(svc.Messaging))
	conversations.Post("", StartConversation(svc.Messaging))
	conversations.Get("/unread-count", UnreadMessages(svc.Messaging))
	conversations.Get("/:id/messages", ListMessages(svc.Messaging))
	conversations.Post("/:id/messages", SendMessage(svc.Messaging))
	conversations.Post("/:id/read", MarkConversationRead(svc.Messaging))

	host := app.Group("/host", auth.Required(), middleware.RequireRole(model.RoleHost))
	host.Get("/experiences", ListMyExperiences(svc.Experiences))
	host.Post("/experiences", CreateExperience(svc.Experiences))
	host.Patch("/experiences/:id", UpdateExperience(svc.Experiences))
	host.Delete("/experiences/:id", DeleteExperience(svc.Experiences))
	host.Post("/experiences/:id/status", SetExperienceStatus(svc.Experiences))
	host.Post("/experiences/:id/images", AddExperienceImage(svc.Experiences))
	host.Delete("/experiences/:id/images/:index", RemoveExperienceImage(svc.Experiences))
	host.Get("/bookings", ListHostBookings(svc.Bookings))
	host.Post("/bookings/:id/approve", ApproveBooking(svc.Bookings))
	host.Post("/bookings/:id/decline", DeclineBooking(svc.Bookings))
	host.Get("/dashboard", HostDashboard(svc.Dashboard))
	host.Get("/reviews", ListHostReviews(svc.Reviews))

	reviews := app.Group("/reviews", auth.Required(), middleware.RequireRole(model.RoleHost))
	reviews.Post("/:id/reply", ReplyToReview(svc.Reviews))

	admin := app.Group("/admin", auth.Required(), middleware.RequireRole(model.RoleAdmin))
	admin.Get("/stats", PlatformStats(svc.Dashboard))
	admin.Get("/users", ListUsers(svc.Dashboard))
	admin.Patch("/users/:id/role", SetUserRole(svc.Dashboard))
	admin.Get("/transactions", ListTransactions(svc.Dashboard))
	admin.Get("/bookings", ListAllBookings(svc.Bookings))
	admin.Patch("/experiences/:id/status", SetExperienceStatus(svc.Experiences))
	admin.Get("/settings", GetSettings(svc.Settings))
	admin.Patch("/settings", UpdateSettings(svc.Settings))
	admin.Post("/categories", CreateCategory(svc.Categories))
	admin.Delete("/categories/:id", DeleteCategory(svc.Categories))
}
