package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizduel/internal/middleware"
	"quizduel/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

// List returns the whole inbox newest first. page_size switches to a paginated envelope.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	params := getPaginationParams(c)
	unreadOnly := c.QueryBool("unread_only")
	if params.Unbounded() && !unreadOnly {
		notifications, err := h.notifService.ListForUser(c.UserContext(), userID)
		if err != nil {
			return err
		}
		return c.JSON(notifications)
	}

	result, err := h.notifService.List(c.UserContext(), userID, unreadOnly, params)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifService.CountUnread(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkRead(c.UserContext(), id, middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notifService.MarkAllRead(c.UserContext(), middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.Delete(c.UserContext(), id, middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}
