package role

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller *RoleController
	config     *config.Config
	access     middleware.AccessService
}

func NewRoleApi(controller *RoleController, cfg *config.Config, access middleware.AccessService) *RoleApi {
	return &RoleApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers role routes
func (h *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/roles", middleware.AuthMiddleware(h.config.SkipAuth))

	roles.Get("/", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionRead), h.controller.ListRoles)
	roles.Post("/", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionCreate), h.controller.CreateRole)
	roles.Get("/:id", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionRead), h.controller.GetRole)
	roles.Put("/:id", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionUpdate), h.controller.UpdateRole)
	roles.Delete("/:id", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionDelete), h.controller.DeleteRole)
}
