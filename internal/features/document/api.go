package document

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentApi struct {
	controller *DocumentController
	config     *config.Config
	access     middleware.AccessService
}

func NewDocumentApi(controller *DocumentController, cfg *config.Config, access middleware.AccessService) *DocumentApi {
	return &DocumentApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers document routes
func (h *DocumentApi) Setup(app *fiber.App) {
	docs := app.Group("/api/documents", middleware.AuthMiddleware(h.config.SkipAuth))

	docs.Get("/", middleware.RequirePermission(h.access, models.ModuleDocuments, models.ActionRead), h.controller.ListDocuments)
	docs.Post("/upload", middleware.RequirePermission(h.access, models.ModuleDocuments, models.ActionCreate), h.controller.UploadDocument)
	docs.Get("/:id", middleware.RequirePermission(h.access, models.ModuleDocuments, models.ActionRead), h.controller.GetDocument)
	docs.Get("/:id/download", middleware.RequirePermission(h.access, models.ModuleDocuments, models.ActionRead), h.controller.DownloadDocument)
	docs.Put("/:id", middleware.RequirePermission(h.access, models.ModuleDocuments, models.ActionUpdate), h.controller.UpdateDocument)
	docs.Delete("/:id", middleware.RequirePermission(h.access, models.ModuleDocuments, models.ActionDelete), h.controller.DeleteDocument)
}
