package middleware

import (
	"context"

	"go-opshub/internal/common/models"
	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AccessService is the slice of the RBAC layer the middleware needs. The
// concrete implementation loads the user, their system role, and (for
// project checks) the project with its roles, then asks the resolver.
type AccessService interface {
	CheckPermission(ctx context.Context, userID string, module models.Module, action models.Action) (bool, error)
	CheckProjectPermission(ctx context.Context, userID string, projectID string, module models.Module, action models.Action) (bool, error)
}

// RequirePermission gates a route on a system-level module/action check.
func RequirePermission(access AccessService, module models.Module, action models.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		allowed, err := access.CheckPermission(c.Context(), claims.UserID, module, action)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: Insufficient permissions for this action",
			})
		}

		return c.Next()
	}
}

// RequireProjectPermission gates a project-scoped route on the additive
// two-tier check. The project ID is taken from the :id route param.
func RequireProjectPermission(access AccessService, module models.Module, action models.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		projectID := c.Params("id")
		if projectID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Project ID required",
			})
		}

		allowed, err := access.CheckProjectPermission(c.Context(), claims.UserID, projectID, module, action)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: Insufficient permissions for this project",
			})
		}

		return c.Next()
	}
}
