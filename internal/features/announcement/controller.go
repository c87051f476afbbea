package announcement

import (
	"errors"
	"strconv"

	"go-opshub/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AnnouncementController struct {
	AnnouncementService AnnouncementService
}

func NewAnnouncementController(announcementService AnnouncementService) *AnnouncementController {
	return &AnnouncementController{
		AnnouncementService: announcementService,
	}
}

func (ctrl *AnnouncementController) CreateAnnouncement(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" || req.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and body are required",
		})
	}

	ann, err := ctrl.AnnouncementService.CreateAnnouncement(c.Context(), &req, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create announcement",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(ann)
}

func (ctrl *AnnouncementController) ListAnnouncements(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	anns, total, err := ctrl.AnnouncementService.ListAnnouncements(c.Context(), c.Query("status"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch announcements",
		})
	}

	return c.JSON(fiber.Map{
		"announcements": anns,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

func (ctrl *AnnouncementController) GetAnnouncement(c *fiber.Ctx) error {
	ann, err := ctrl.AnnouncementService.GetAnnouncement(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Announcement not found",
		})
	}
	return c.JSON(ann)
}

func (ctrl *AnnouncementController) UpdateAnnouncement(c *fiber.Ctx) error {
	var req UpdateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.AnnouncementService.UpdateAnnouncement(c.Context(), c.Params("id"), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update announcement",
		})
	}

	return c.JSON(fiber.Map{"message": "Announcement updated"})
}

func (ctrl *AnnouncementController) PublishAnnouncement(c *fiber.Ctx) error {
	ann, err := ctrl.AnnouncementService.PublishAnnouncement(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrAlreadyPublished) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to publish announcement",
		})
	}

	return c.JSON(ann)
}

func (ctrl *AnnouncementController) DeleteAnnouncement(c *fiber.Ctx) error {
	if err := ctrl.AnnouncementService.DeleteAnnouncement(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete announcement",
		})
	}
	return c.JSON(fiber.Map{"message": "Announcement deleted"})
}
