package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-opshub/internal/config"
	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DocumentController struct {
	UploadDir       string
	DocumentService DocumentService
}

func NewDocumentController(documentService DocumentService, cfg *config.Config) *DocumentController {
	if _, err := os.Stat(cfg.DocsPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.DocsPath, 0755)
	}
	return &DocumentController{
		UploadDir:       cfg.DocsPath,
		DocumentService: documentService,
	}
}

func (ctrl *DocumentController) UploadDocument(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error retrieving file",
		})
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}

	originalName := filepath.Base(file.Filename)
	uniqueName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), originalName)
	uniqueName = strings.ReplaceAll(uniqueName, " ", "_")
	dstPath := filepath.Join(ctrl.UploadDir, uniqueName)

	if err := c.SaveFile(file, dstPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving file to disk",
		})
	}

	now := time.Now()
	doc := &Document{
		Title:       title,
		Description: c.FormValue("description"),
		ProjectID:   c.FormValue("project_id"),
		Filename:    originalName,
		StoredName:  uniqueName,
		Path:        dstPath,
		Size:        file.Size,
		MimeType:    file.Header.Get("Content-Type"),
		UploadedBy:  claims.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ctrl.DocumentService.SaveDocument(c.Context(), doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving document metadata",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (ctrl *DocumentController) ListDocuments(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	docs, total, err := ctrl.DocumentService.ListDocuments(c.Context(), claims.UserID, c.Query("project_id"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch documents",
		})
	}

	return c.JSON(fiber.Map{
		"documents": docs,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (ctrl *DocumentController) GetDocument(c *fiber.Ctx) error {
	doc, err := ctrl.DocumentService.GetDocument(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}
	return c.JSON(doc)
}

func (ctrl *DocumentController) DownloadDocument(c *fiber.Ctx) error {
	doc, err := ctrl.DocumentService.GetDocument(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}
	return c.Download(doc.Path, doc.Filename)
}

func (ctrl *DocumentController) UpdateDocument(c *fiber.Ctx) error {
	var req UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.DocumentService.UpdateDocument(c.Context(), c.Params("id"), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update document",
		})
	}

	return c.JSON(fiber.Map{"message": "Document updated"})
}

func (ctrl *DocumentController) DeleteDocument(c *fiber.Ctx) error {
	if err := ctrl.DocumentService.DeleteDocument(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete document",
		})
	}
	return c.JSON(fiber.Map{"message": "Document deleted"})
}
