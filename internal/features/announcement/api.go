package announcement

import (
	"go-opshub/internal/common/models"
	"go-opshub/internal/config"
	"go-opshub/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type AnnouncementApi struct {
	controller   *AnnouncementController
	wsController *WebSocketController
	config       *config.Config
	access       middleware.AccessService
}

func NewAnnouncementApi(controller *AnnouncementController, wsController *WebSocketController, cfg *config.Config, access middleware.AccessService) *AnnouncementApi {
	return &AnnouncementApi{
		controller:   controller,
		wsController: wsController,
		config:       cfg,
		access:       access,
	}
}

// Setup registers announcement routes and the live update socket.
func (h *AnnouncementApi) Setup(app *fiber.App) {
	anns := app.Group("/api/announcements", middleware.AuthMiddleware(h.config.SkipAuth))

	anns.Get("/", middleware.RequirePermission(h.access, models.ModuleAnnouncements, models.ActionRead), h.controller.ListAnnouncements)
	anns.Post("/", middleware.RequirePermission(h.access, models.ModuleAnnouncements, models.ActionCreate), h.controller.CreateAnnouncement)
	anns.Get("/:id", middleware.RequirePermission(h.access, models.ModuleAnnouncements, models.ActionRead), h.controller.GetAnnouncement)
	anns.Put("/:id", middleware.RequirePermission(h.access, models.ModuleAnnouncements, models.ActionUpdate), h.controller.UpdateAnnouncement)
	anns.Put("/:id/publish", middleware.RequirePermission(h.access, models.ModuleAnnouncements, models.ActionUpdate), h.controller.PublishAnnouncement)
	anns.Delete("/:id", middleware.RequirePermission(h.access, models.ModuleAnnouncements, models.ActionDelete), h.controller.DeleteAnnouncement)

	app.Get("/ws/announcements", websocket.New(h.wsController.HandleWebSocket))
}
