package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/323network/platform/app/controllers"
	"github.com/323network/platform/internal/pkg/middleware"
)

// Pong is the ping endpoint response
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the public v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// PostParcelowCheckout creates a Parcelow order for a pending payment.
// Security is enforced via the token middleware attached in RegisterHandlers.
func (s *APIServer) PostParcelowCheckout(c *fiber.Ctx) error {
	return controllers.HandleCreateParcelowCheckout(c)
}

// PostParcelowWebhook receives gateway status notifications. The route
// is unauthenticated; events dedupe on their provider id.
func (s *APIServer) PostParcelowWebhook(c *fiber.Ctx) error {
	return controllers.HandleParcelowWebhook(c)
}

// PostConnection sends a connection request to another user
func (s *APIServer) PostConnection(c *fiber.Ctx) error {
	return controllers.HandleCreateConnection(c)
}

// GetPendingConnections lists incoming pending requests
func (s *APIServer) GetPendingConnections(c *fiber.Ctx) error {
	return controllers.HandleListPendingConnections(c)
}

// PutConnection answers a pending request (responder only)
func (s *APIServer) PutConnection(c *fiber.Ctx) error {
	return controllers.HandleRespondConnection(c)
}

// GetConnectionStatus returns the state between caller and another user
func (s *APIServer) GetConnectionStatus(c *fiber.Ctx) error {
	return controllers.HandleConnectionStatus(c)
}

// GetUserConnectionCount returns the accepted connection count for a user
func (s *APIServer) GetUserConnectionCount(c *fiber.Ctx) error {
	return controllers.HandleConnectionCount(c)
}

// GetPayments lists the caller's payments
func (s *APIServer) GetPayments(c *fiber.Ctx) error {
	return controllers.HandleListPayments(c)
}

// PostEnrollmentExport renders an enrollment record as PDF or CSV (admin)
func (s *APIServer) PostEnrollmentExport(c *fiber.Ctx) error {
	return controllers.HandleExportEnrollment(c)
}

// PostProof renders a term-acceptance or payment proof PDF
func (s *APIServer) PostProof(c *fiber.Ctx) error {
	return controllers.HandleGenerateProof(c)
}

// RegisterHandlers wires the v1 routes onto the given router group.
// The webhook and ping endpoints stay public; everything else requires
// a valid API token.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Post("/webhooks/parcelow", s.PostParcelowWebhook)

	protected := router.Group("", middleware.TokenAuthMiddleware())
	protected.Post("/checkout/parcelow", s.PostParcelowCheckout)
	protected.Post("/connections", s.PostConnection)
	protected.Get("/connections/pending", s.GetPendingConnections)
	protected.Get("/connections/status", s.GetConnectionStatus)
	protected.Put("/connections/:id", s.PutConnection)
	protected.Get("/users/:id/connections/count", s.GetUserConnectionCount)
	protected.Get("/payments", s.GetPayments)
	protected.Post("/admin/enrollments/export", s.PostEnrollmentExport)
	protected.Post("/proofs", s.PostProof)
}
