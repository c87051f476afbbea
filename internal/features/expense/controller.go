package expense

import (
	"context"
	"errors"
	"strconv"

	"go-opshub/internal/features/role"
	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type ExpenseController struct {
	ExpenseService ExpenseService
	Access         role.AccessService
}

func NewExpenseController(expenseService ExpenseService, access role.AccessService) *ExpenseController {
	return &ExpenseController{
		ExpenseService: expenseService,
		Access:         access,
	}
}

func (ctrl *ExpenseController) claims(c *fiber.Ctx) (*utils.UserClaims, bool) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	return claims, ok
}

func (ctrl *ExpenseController) SubmitExpense(c *fiber.Ctx) error {
	claims, ok := ctrl.claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req SubmitExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and a positive amount are required",
		})
	}

	exp, err := ctrl.ExpenseService.SubmitExpense(c.Context(), &req, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit expense",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(exp)
}

func (ctrl *ExpenseController) ListExpenses(c *fiber.Ctx) error {
	claims, ok := ctrl.claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	expenses, total, err := ctrl.ExpenseService.ListExpenses(c.Context(), claims.UserID, c.Query("status"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch expenses",
		})
	}

	return c.JSON(fiber.Map{
		"expenses": expenses,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (ctrl *ExpenseController) GetExpense(c *fiber.Ctx) error {
	exp, err := ctrl.ExpenseService.GetExpense(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Expense not found",
		})
	}
	return c.JSON(exp)
}

func (ctrl *ExpenseController) ApproveExpense(c *fiber.Ctx) error {
	return ctrl.decide(c, ctrl.ExpenseService.ApproveExpense)
}

func (ctrl *ExpenseController) RejectExpense(c *fiber.Ctx) error {
	return ctrl.decide(c, ctrl.ExpenseService.RejectExpense)
}

func (ctrl *ExpenseController) decide(c *fiber.Ctx, fn func(ctx context.Context, id, deciderID, note string) error) error {
	claims, ok := ctrl.claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req DecideExpenseRequest
	_ = c.BodyParser(&req)

	if err := fn(c.Context(), c.Params("id"), claims.UserID, req.Note); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record decision",
		})
	}

	return c.JSON(fiber.Map{"message": "Decision recorded"})
}

func (ctrl *ExpenseController) DeleteExpense(c *fiber.Ctx) error {
	if err := ctrl.ExpenseService.DeleteExpense(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete expense",
		})
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}

// ExportExpenses is restricted to roles cleared for financial data on top
// of the usual module check.
func (ctrl *ExpenseController) ExportExpenses(c *fiber.Ctx) error {
	claims, ok := ctrl.claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	user, _, err := ctrl.Access.LoadUser(c.Context(), claims.UserID)
	if err != nil || user == nil || !ctrl.Access.Resolver().CanAccessSensitiveData(user) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}

	data, filename, err := ctrl.ExpenseService.ExportExpenses(c.Context(), c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export expenses",
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func (ctrl *ExpenseController) CreatePolicy(c *fiber.Ctx) error {
	var req CreatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.Expression == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and expression are required",
		})
	}

	policy, err := ctrl.ExpenseService.CreatePolicy(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create policy",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(policy)
}

func (ctrl *ExpenseController) ListPolicies(c *fiber.Ctx) error {
	policies, err := ctrl.ExpenseService.ListPolicies(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch policies",
		})
	}
	return c.JSON(fiber.Map{"policies": policies})
}

func (ctrl *ExpenseController) UpdatePolicy(c *fiber.Ctx) error {
	var req UpdatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.ExpenseService.UpdatePolicy(c.Context(), c.Params("id"), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update policy",
		})
	}

	return c.JSON(fiber.Map{"message": "Policy updated"})
}

func (ctrl *ExpenseController) DeletePolicy(c *fiber.Ctx) error {
	if err := ctrl.ExpenseService.DeletePolicy(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete policy",
		})
	}
	return c.JSON(fiber.Map{"message": "Policy deleted"})
}
