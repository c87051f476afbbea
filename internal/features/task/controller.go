package task

import (
	"errors"

	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type TaskController struct {
	TaskService TaskService
}

func NewTaskController(taskService TaskService) *TaskController {
	return &TaskController{
		TaskService: taskService,
	}
}

func (ctrl *TaskController) CreateTask(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Task title is required",
		})
	}

	task, err := ctrl.TaskService.CreateTask(c.Context(), c.Params("id"), &req, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create task",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (ctrl *TaskController) ListBoard(c *fiber.Ctx) error {
	board, err := ctrl.TaskService.ListBoard(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tasks",
		})
	}
	return c.JSON(fiber.Map{"board": board})
}

func (ctrl *TaskController) GetTask(c *fiber.Ctx) error {
	task, err := ctrl.TaskService.GetTask(c.Context(), c.Params("taskId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}
	return c.JSON(task)
}

func (ctrl *TaskController) UpdateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.TaskService.UpdateTask(c.Context(), c.Params("taskId"), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update task",
		})
	}

	return c.JSON(fiber.Map{"message": "Task updated"})
}

func (ctrl *TaskController) MoveTask(c *fiber.Ctx) error {
	var req MoveTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.TaskService.MoveTask(c.Context(), c.Params("taskId"), &req); err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to move task",
		})
	}

	return c.JSON(fiber.Map{"message": "Task moved"})
}

func (ctrl *TaskController) DeleteTask(c *fiber.Ctx) error {
	if err := ctrl.TaskService.DeleteTask(c.Context(), c.Params("taskId")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete task",
		})
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}
