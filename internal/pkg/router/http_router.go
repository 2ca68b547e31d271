package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/323network/platform/app/controllers"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Initialize checkout controller with gateway and repositories
	controllers.InitializeCheckoutController()

	// Initialize export controller with the optional document archive
	controllers.InitializeExportController()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"service": "323network-platform",
			"status":  "ok",
		})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
