package controllers

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/323network/platform/internal/pkg/export"
	"github.com/323network/platform/internal/pkg/storage"
	"github.com/323network/platform/internal/pkg/usercontext"
)

var documentArchive *storage.Archive

// InitializeExportController sets up the optional document archive.
// Exports keep working without it.
func InitializeExportController() {
	cfg, err := storage.LoadConfig()
	if err != nil {
		log.Errorf("[Export] invalid archive configuration: %v", err)
		return
	}
	if !cfg.IsEnabled() {
		return
	}
	archive, err := storage.NewArchive(cfg)
	if err != nil {
		log.Errorf("[Export] failed to initialize document archive: %v", err)
		return
	}
	documentArchive = archive
}

type exportEnrollmentRequest struct {
	EnrollmentID string `json:"enrollment_id"`
	Format       string `json:"format"`
}

// HandleExportEnrollment exports the complete enrollment record as PDF
// or CSV. Admin only.
func HandleExportEnrollment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if !userCtx.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only admins can export enrollment data"})
	}

	var req exportEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if strings.TrimSpace(req.EnrollmentID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "enrollment_id is required"})
	}
	if req.Format == "" {
		req.Format = "pdf"
	}
	if req.Format != "pdf" && req.Format != "csv" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "format must be pdf or csv"})
	}

	repos := getRepos()
	enrollment, payment, err := repos.Enrollment.GetPaymentProofData(req.EnrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Enrollment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load enrollment"})
	}

	acceptedTerms, err := repos.Enrollment.GetAcceptedTermsForUser(enrollment.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to load accepted terms"})
	}

	data := export.BuildEnrollmentData(enrollment, payment, acceptedTerms)

	var doc *export.Document
	if req.Format == "csv" {
		doc, err = export.EnrollmentCSV(data)
	} else {
		doc, err = export.EnrollmentPDF(data)
	}
	if err != nil {
		log.Errorf("[Export] failed to render enrollment %s as %s: %v", req.EnrollmentID, req.Format, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to generate export"})
	}

	archiveDocument(c.UserContext(), doc)

	return c.JSON(fiber.Map{
		"success":  true,
		req.Format: base64.StdEncoding.EncodeToString(doc.Data),
		"filename": doc.Filename,
	})
}

// archiveDocument stores a copy of the export in the configured bucket.
// Archiving failures never fail the download.
func archiveDocument(ctx context.Context, doc *export.Document) {
	if documentArchive == nil {
		return
	}
	key := storage.ExportObjectKey(doc.Filename, time.Now().UTC())
	if err := documentArchive.Put(ctx, key, doc.ContentType, doc.Data); err != nil {
		log.Warnf("[Export] failed to archive %s: %v", key, err)
	}
}
