package project

import (
	"errors"
	"strconv"

	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type ProjectController struct {
	ProjectService ProjectService
}

func NewProjectController(projectService ProjectService) *ProjectController {
	return &ProjectController{
		ProjectService: projectService,
	}
}

func currentUserID(c *fiber.Ctx) (string, bool) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

func (ctrl *ProjectController) CreateProject(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Project name is required",
		})
	}

	project, err := ctrl.ProjectService.CreateProject(c.Context(), &req, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (ctrl *ProjectController) ListProjects(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

	projects, total, err := ctrl.ProjectService.ListProjects(c.Context(), userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"projects": projects,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (ctrl *ProjectController) GetProject(c *fiber.Ctx) error {
	project, err := ctrl.ProjectService.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}
	return c.JSON(project)
}

func (ctrl *ProjectController) UpdateProject(c *fiber.Ctx) error {
	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.ProjectService.UpdateProject(c.Context(), c.Params("id"), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update project",
		})
	}

	return c.JSON(fiber.Map{"message": "Project updated"})
}

func (ctrl *ProjectController) DeleteProject(c *fiber.Ctx) error {
	if err := ctrl.ProjectService.DeleteProject(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete project",
		})
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}

func (ctrl *ProjectController) AddMember(c *fiber.Ctx) error {
	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	if err := ctrl.ProjectService.AddMember(c.Context(), c.Params("id"), &req); err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add member",
		})
	}

	return c.JSON(fiber.Map{"message": "Member added"})
}

func (ctrl *ProjectController) RemoveMember(c *fiber.Ctx) error {
	if err := ctrl.ProjectService.RemoveMember(c.Context(), c.Params("id"), c.Params("userId")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove member",
		})
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}

func (ctrl *ProjectController) AssignMemberRole(c *fiber.Ctx) error {
	var req AssignMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.ProjectService.AssignMemberRole(c.Context(), c.Params("id"), c.Params("userId"), req.ProjectRoleID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Member role updated"})
}

func (ctrl *ProjectController) GetMyRole(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	role, err := ctrl.ProjectService.GetMemberRole(c.Context(), c.Params("id"), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve project role",
		})
	}

	return c.JSON(fiber.Map{"role": role})
}

func (ctrl *ProjectController) ListProjectRoles(c *fiber.Ctx) error {
	roles, err := ctrl.ProjectService.ListProjectRoles(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch project roles",
		})
	}
	return c.JSON(fiber.Map{"roles": roles})
}

func (ctrl *ProjectController) CreateProjectRole(c *fiber.Ctx) error {
	var req CreateProjectRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Role name is required",
		})
	}

	role, err := ctrl.ProjectService.CreateProjectRole(c.Context(), c.Params("id"), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create project role",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

func (ctrl *ProjectController) UpdateProjectRole(c *fiber.Ctx) error {
	var req UpdateProjectRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.ProjectService.UpdateProjectRole(c.Context(), c.Params("roleId"), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update project role",
		})
	}

	return c.JSON(fiber.Map{"message": "Project role updated"})
}

func (ctrl *ProjectController) DeleteProjectRole(c *fiber.Ctx) error {
	if err := ctrl.ProjectService.DeleteProjectRole(c.Context(), c.Params("id"), c.Params("roleId")); err != nil {
		if errors.Is(err, ErrDefaultRoleProtected) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete project role",
		})
	}

	return c.JSON(fiber.Map{"message": "Project role deleted"})
}
