package project

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ProjectApi struct {
	controller *ProjectController
	config     *config.Config
	access     middleware.AccessService
}

func NewProjectApi(controller *ProjectController, cfg *config.Config, access middleware.AccessService) *ProjectApi {
	return &ProjectApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers project and project-role routes. Collection routes use
// the system-level check; anything under /:id goes through the two-tier
// project check so project roles count.
func (h *ProjectApi) Setup(app *fiber.App) {
	projects := app.Group("/api/projects", middleware.AuthMiddleware(h.config.SkipAuth))

	projects.Get("/", middleware.RequirePermission(h.access, models.ModuleProjects, models.ActionRead), h.controller.ListProjects)
	projects.Post("/", middleware.RequirePermission(h.access, models.ModuleProjects, models.ActionCreate), h.controller.CreateProject)

	projects.Get("/:id", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionRead), h.controller.GetProject)
	projects.Put("/:id", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.UpdateProject)
	projects.Delete("/:id", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionDelete), h.controller.DeleteProject)

	projects.Get("/:id/my-role", h.controller.GetMyRole)

	projects.Post("/:id/members", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.AddMember)
	projects.Delete("/:id/members/:userId", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.RemoveMember)
	projects.Put("/:id/members/:userId/role", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.AssignMemberRole)

	projects.Get("/:id/roles", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionRead), h.controller.ListProjectRoles)
	projects.Post("/:id/roles", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.CreateProjectRole)
	projects.Put("/:id/roles/:roleId", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.UpdateProjectRole)
	projects.Delete("/:id/roles/:roleId", middleware.RequireProjectPermission(h.access, models.ModuleProjects, models.ActionUpdate), h.controller.DeleteProjectRole)
}
