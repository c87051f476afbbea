package asset

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AssetApi struct {
	controller *AssetController
	config     *config.Config
	access     middleware.AccessService
}

func NewAssetApi(controller *AssetController, cfg *config.Config, access middleware.AccessService) *AssetApi {
	return &AssetApi{
		controller: controller,
		config:     cfg,
		access:     access,
	}
}

// Setup registers inventory routes
func (h *AssetApi) Setup(app *fiber.App) {
	assets := app.Group("/api/assets", middleware.AuthMiddleware(h.config.SkipAuth))

	assets.Get("/", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionRead), h.controller.ListAssets)
	assets.Post("/", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionCreate), h.controller.CreateAsset)
	assets.Get("/:id", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionRead), h.controller.GetAsset)
	assets.Put("/:id", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionUpdate), h.controller.UpdateAsset)
	assets.Delete("/:id", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionDelete), h.controller.DeleteAsset)
	assets.Put("/:id/assign", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionUpdate), h.controller.AssignAsset)
	assets.Put("/:id/release", middleware.RequirePermission(h.access, models.ModuleAssets, models.ActionUpdate), h.controller.ReleaseAsset)
}
