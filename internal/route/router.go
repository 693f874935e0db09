package router

import (
	"ticketing-service/internal/module/booking/handler"
	"ticketing-service/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func Initialize(app *fiber.App, handlerBooking *handler.BookingHandler, m *middleware.Middleware) *fiber.App {

	// health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("OK")
	})

	Api := app.Group("/api")

	v1 := Api.Group("/v1")
	v1.Post("/orders", m.ValidateToken, handlerBooking.CreateOrder)
	v1.Get("/orders/:order_id", m.ValidateToken, handlerBooking.GetOrder)
	v1.Post("/payments/verify", m.ValidateToken, handlerBooking.VerifyPayment)
	v1.Get("/bookings", m.ValidateToken, handlerBooking.ShowBookings)
	v1.Get("/tickets/:code", m.ValidateToken, m.RequireStaff, handlerBooking.VerifyTicket)
	v1.Post("/tickets/check-in", m.ValidateToken, m.RequireStaff, handlerBooking.CheckInTicket)

	// signed by the gateway, not by a user token
	v1.Post("/webhooks/payment", handlerBooking.GatewayWebhook)

	private := Api.Group("/private")
	private.Get("/payments/pending", handlerBooking.CountPendingPayment)

	return app

}
