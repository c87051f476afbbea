package asset

import (
	"errors"
	"strconv"

	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AssetController struct {
	AssetService AssetService
}

func NewAssetController(assetService AssetService) *AssetController {
	return &AssetController{
		AssetService: assetService,
	}
}

func (ctrl *AssetController) CreateAsset(c *fiber.Ctx) error {
	var req CreateAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Tag == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Asset tag and name are required",
		})
	}

	asset, err := ctrl.AssetService.CreateAsset(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}

func (ctrl *AssetController) ListAssets(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	assets, total, err := ctrl.AssetService.ListAssets(c.Context(), claims.UserID, c.Query("category"), c.Query("status"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch assets",
		})
	}

	return c.JSON(fiber.Map{
		"assets": assets,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (ctrl *AssetController) GetAsset(c *fiber.Ctx) error {
	asset, err := ctrl.AssetService.GetAsset(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Asset not found",
		})
	}
	return c.JSON(asset)
}

func (ctrl *AssetController) UpdateAsset(c *fiber.Ctx) error {
	var req UpdateAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.AssetService.UpdateAsset(c.Context(), c.Params("id"), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Asset updated"})
}

func (ctrl *AssetController) DeleteAsset(c *fiber.Ctx) error {
	if err := ctrl.AssetService.DeleteAsset(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete asset",
		})
	}
	return c.JSON(fiber.Map{"message": "Asset deleted"})
}

func (ctrl *AssetController) AssignAsset(c *fiber.Ctx) error {
	var req AssignAssetRequest
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

	if err := ctrl.AssetService.AssignAsset(c.Context(), c.Params("id"), req.UserID); err != nil {
		if errors.Is(err, ErrNotAvailable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to assign asset",
		})
	}

	return c.JSON(fiber.Map{"message": "Asset assigned"})
}

func (ctrl *AssetController) ReleaseAsset(c *fiber.Ctx) error {
	if err := ctrl.AssetService.ReleaseAsset(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotAssigned) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to release asset",
		})
	}

	return c.JSON(fiber.Map{"message": "Asset released"})
}
