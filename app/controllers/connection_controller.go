package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/323network/platform/app/models"
	"github.com/323network/platform/internal/pkg/mail"
	"github.com/323network/platform/internal/pkg/usercontext"
)

type createConnectionRequest struct {
	ResponderID uint `json:"responder_id"`
}

// HandleCreateConnection sends a connection request to another user and
// notifies them by email.
func HandleCreateConnection(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req createConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.ResponderID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "responder_id is required"})
	}
	if req.ResponderID == userCtx.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Cannot send a connection request to yourself"})
	}

	repos := getRepos()

	responder, err := repos.User.GetByID(req.ResponderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load user"})
	}

	connRepo := repos.Connection
	if existing, err := connRepo.GetBetween(userCtx.UserID, req.ResponderID); err == nil && existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Request already exists"})
	}

	conn := &models.Connection{
		RequesterID: userCtx.UserID,
		ResponderID: req.ResponderID,
		Status:      models.ConnectionStatusPending,
	}
	if err := connRepo.Create(conn); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to create connection request"})
	}

	// The request exists either way; a failed notification is only logged.
	if err := mail.SendConnectionRequestEmail(responder.Email, responder.Name, userCtx.Username); err != nil {
		log.Warnf("[Connection] failed to notify %s about request %s: %v", responder.Email, conn.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"connection": conn,
	})
}

// HandleListPendingConnections lists open requests awaiting the
// authenticated user's response.
func HandleListPendingConnections(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	pending, err := getRepos().Connection.GetPendingForResponder(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load connection requests"})
	}

	return c.JSON(fiber.Map{"success": true, "connections": pending})
}

type respondConnectionRequest struct {
	Status string `json:"status"`
}

// HandleRespondConnection accepts or rejects a pending request. Only the
// responder may answer it.
func HandleRespondConnection(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	connectionID := c.Params("id")

	var req respondConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Status != models.ConnectionStatusAccepted && req.Status != models.ConnectionStatusRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "status must be accepted or rejected"})
	}

	connRepo := getRepos().Connection
	conn, err := connRepo.GetByID(connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Connection request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load connection request"})
	}

	if conn.ResponderID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}
	if !conn.IsPending() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": "Request was already answered"})
	}

	if err := connRepo.UpdateStatus(conn.ID, req.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to update connection request"})
	}

	conn.Status = req.Status
	return c.JSON(fiber.Map{"success": true, "connection": conn})
}

// HandleConnectionCount returns the number of accepted connections for
// the user in the path.
func HandleConnectionCount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid user id"})
	}

	count, err := getRepos().Connection.CountAcceptedForUser(uint(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to count connections"})
	}

	return c.JSON(fiber.Map{"success": true, "count": count})
}

// HandleConnectionStatus returns the connection state between the
// authenticated user and the user given in the query, in either
// direction. Status is null when no request exists.
func HandleConnectionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	otherID := c.QueryInt("user_id")
	if otherID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "user_id is required"})
	}

	conn, err := getRepos().Connection.GetBetween(userCtx.UserID, uint(otherID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": true, "status": nil})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load connection"})
	}

	return c.JSON(fiber.Map{"success": true, "status": conn.Status, "connection": conn})
}
