package expense

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExpenseApi struct {
	controller *ExpenseController
	config     *config.Config
	access     middleware.AccessService
}

func NewExpenseApi(controller *ExpenseController, cfg *config.Config, access middleware.AccessService) *ExpenseApi {
	return &ExpenseApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers expense and approval-policy routes. The export handler
// layers a sensitive-data check on top of the finance read grant.
func (h *ExpenseApi) Setup(app *fiber.App) {
	expenses := app.Group("/api/expenses", middleware.AuthMiddleware(h.config.SkipAuth))

	expenses.Get("/", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionRead), h.controller.ListExpenses)
	expenses.Post("/", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionCreate), h.controller.SubmitExpense)
	expenses.Get("/export", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionRead), h.controller.ExportExpenses)

	expenses.Get("/policies", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionRead), h.controller.ListPolicies)
	expenses.Post("/policies", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionUpdate), h.controller.CreatePolicy)
	expenses.Put("/policies/:id", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionUpdate), h.controller.UpdatePolicy)
	expenses.Delete("/policies/:id", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionDelete), h.controller.DeletePolicy)

	expenses.Get("/:id", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionRead), h.controller.GetExpense)
	expenses.Delete("/:id", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionDelete), h.controller.DeleteExpense)
	expenses.Put("/:id/approve", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionUpdate), h.controller.ApproveExpense)
	expenses.Put("/:id/reject", middleware.RequirePermission(h.access, models.ModuleFinance, models.ActionUpdate), h.controller.RejectExpense)
}
