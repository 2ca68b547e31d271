package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes onto the app
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// Install HttpRouter first so controllers are initialized before the
	// API routes that depend on them are registered.
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
