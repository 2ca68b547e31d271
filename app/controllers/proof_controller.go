package controllers

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/323network/platform/internal/pkg/export"
	"github.com/323network/platform/internal/pkg/usercontext"
)

const proofPermissionError = "You do not have permission to access this document"

const (
	proofTypeTermAcceptance = "term_acceptance"
	proofTypePaymentProof   = "payment_proof"
)

type generateProofRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// HandleGenerateProof renders a proof PDF for a term acceptance or a
// paid enrollment. Documents are available to their owner and to admins.
func HandleGenerateProof(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req generateProofRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if strings.TrimSpace(req.ID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "id is required"})
	}

	switch req.Type {
	case proofTypeTermAcceptance:
		return termAcceptanceProof(c, userCtx, req.ID)
	case proofTypePaymentProof:
		return paymentProof(c, userCtx, req.ID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "type must be term_acceptance or payment_proof"})
	}
}

func termAcceptanceProof(c *fiber.Ctx, userCtx usercontext.UserContext, acceptanceID string) error {
	acceptance, err := getRepos().Enrollment.GetTermAcceptanceByID(acceptanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Acceptance not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load acceptance"})
	}

	if acceptance.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": proofPermissionError})
	}

	doc, err := export.TermAcceptanceProofPDF(acceptance)
	if err != nil {
		log.Errorf("[Proof] failed to render acceptance %s: %v", acceptanceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to generate proof"})
	}

	return proofResponse(c, doc)
}

func paymentProof(c *fiber.Ctx, userCtx usercontext.UserContext, enrollmentID string) error {
	enrollment, payment, err := getRepos().Enrollment.GetPaymentProofData(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Enrollment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load enrollment"})
	}

	if enrollment.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": proofPermissionError})
	}

	doc, err := export.PaymentProofPDF(enrollment, payment)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return proofResponse(c, doc)
}

func proofResponse(c *fiber.Ctx, doc *export.Document) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"pdf":      base64.StdEncoding.EncodeToString(doc.Data),
		"filename": doc.Filename,
	})
}
