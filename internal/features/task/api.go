package task

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TaskApi struct {
	controller *TaskController
	config     *config.Config
	access     middleware.AccessService
}

func NewTaskApi(controller *TaskController, cfg *config.Config, access middleware.AccessService) *TaskApi {
	return &TaskApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers board routes. Everything is scoped to a project, so the
// two-tier check applies throughout.
func (h *TaskApi) Setup(app *fiber.App) {
	tasks := app.Group("/api/projects/:id/tasks", middleware.AuthMiddleware(h.config.SkipAuth))

	tasks.Get("/", middleware.RequireProjectPermission(h.access, models.ModuleTasks, models.ActionRead), h.controller.ListBoard)
	tasks.Post("/", middleware.RequireProjectPermission(h.access, models.ModuleTasks, models.ActionCreate), h.controller.CreateTask)
	tasks.Get("/:taskId", middleware.RequireProjectPermission(h.access, models.ModuleTasks, models.ActionRead), h.controller.GetTask)
	tasks.Put("/:taskId", middleware.RequireProjectPermission(h.access, models.ModuleTasks, models.ActionUpdate), h.controller.UpdateTask)
	tasks.Put("/:taskId/move", middleware.RequireProjectPermission(h.access, models.ModuleTasks, models.ActionUpdate), h.controller.MoveTask)
	tasks.Delete("/:taskId", middleware.RequireProjectPermission(h.access, models.ModuleTasks, models.ActionDelete), h.controller.DeleteTask)
}
