package auth

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
	access     middleware.AccessService
}

func NewAuthApi(controller *AuthController, cfg *config.Config, access middleware.AccessService) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers auth routes
func (h *AuthApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/login", h.controller.Login)

	// Registering accounts is user administration, not self-signup
	auth.Post("/register",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.access, models.ModuleRBAC, models.ActionCreate),
		h.controller.Register)

	auth.Get("/me", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Me)
}
