package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/NinjaGame428/church-management-sub001/internal/api/http/handlers"
	"github.com/NinjaGame428/church-management-sub001/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Services       *handlers.ServicesHandler
	Assignments    *handlers.AssignmentsHandler
	Swaps          *handlers.SwapsHandler
	Availability   *handlers.AvailabilityHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Get("/me", cfg.Users.Me)

	protected.Get("/services", cfg.Services.ListServices)
	protected.Get("/services/:id", cfg.Services.GetService)

	protected.Get("/assignments", cfg.Assignments.ListMine)
	protected.Post("/assignments/:id/respond", cfg.Assignments.Respond)

	protected.Post("/swaps", cfg.Swaps.Create)
	protected.Get("/swaps", cfg.Swaps.ListMine)
	protected.Post("/swaps/:id/respond", cfg.Swaps.Respond)

	protected.Post("/availability", cfg.Availability.Upsert)
	protected.Get("/availability", cfg.Availability.ListMine)
	protected.Put("/availability/:id", cfg.Availability.Update)
	protected.Delete("/availability/:id", cfg.Availability.Delete)

	protected.Get("/notifications", cfg.Notifications.List)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Post("/services", cfg.Services.CreateService)
	admin.Put("/services/:id", cfg.Services.UpdateService)
	admin.Post("/services/:id/publish", cfg.Services.PublishService)
	admin.Post("/services/:id/cancel", cfg.Services.CancelService)
	admin.Delete("/services/:id", cfg.Services.DeleteService)
	admin.Post("/services/:id/assignments", cfg.Services.ScheduleAssignment)
	admin.Get("/services/:id/assignments", cfg.Services.ListServiceAssignments)
	admin.Get("/swaps", cfg.Swaps.ListAccepted)
	admin.Get("/availability", cfg.Availability.ListForDate)
}
