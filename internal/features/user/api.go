package user

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	access     middleware.AccessService
}

func NewUserApi(controller *UserController, cfg *config.Config, access middleware.AccessService) *UserApi {
	return &UserApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	// User administration is part of the rbac module
	users.Post("/", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionCreate), h.controller.CreateUser)
	users.Get("/", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionRead), h.controller.ListUsers)
	users.Get("/:id", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionRead), h.controller.GetUser)
	users.Put("/:id", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionUpdate), h.controller.UpdateUser)
	users.Delete("/:id", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionDelete), h.controller.DeleteUser)

	users.Put("/:id/role", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionUpdate), h.controller.UpdateUserRole)
	users.Put("/:id/status", middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionUpdate), h.controller.UpdateUserStatus)
}
