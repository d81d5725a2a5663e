package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nucares/booking-gateway/controllers"
	"github.com/nucares/booking-gateway/middleware"
)

// SetupFlowRoutes configures all booking-flow related routes.
func SetupFlowRoutes(app *fiber.App, h *controllers.FlowHandler) {
	flow := app.Group("/booking-flow", middleware.Protected())
	flow.Post("/", h.StartFlow)
	flow.Get("/:id", h.GetFlow)
	flow.Put("/:id/service", h.SetService)
	flow.Post("/:id/recheck", h.Recheck)
	flow.Put("/:id/date", h.SetDate)
	flow.Put("/:id/time", h.SetTime)
	flow.Put("/:id/reason", h.SetReason)
	flow.Post("/:id/submit", h.Submit)
}
