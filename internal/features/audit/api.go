package audit

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	access     middleware.AccessService
}

func NewAuditApi(controller *AuditController, cfg *config.Config, access middleware.AccessService) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers audit routes
func (h *AuditApi) Setup(app *fiber.App) {
	logs := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth))

	logs.Get("/", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionRead), h.controller.ListLogs)
}
