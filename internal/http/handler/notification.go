package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"metrodoc/internal/model"
	"metrodoc/internal/service"
)

// ListNotifications returns notifications newest first, optionally filtered by category and priority.
//
// @Summary  List notifications
// @Tags     notifications
// @Produce  json
// @Param    category query string false "category"
// @Param    priority query string false "low, medium or high"
// @Success  200 {object} successPayload
// @Security BearerAuth
// @Router   /api/notifications [get]
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), service.NotificationFilter{
			Category: c.Query("category"),
			Priority: model.NotificationPriority(strings.ToLower(c.Query("priority"))),
		})
		if err != nil {
			return respondError(c, err)
		}
		return writeList(c, items, len(items))
	}
}

// CurrentNotifications returns notifications inside the recent window.
func CurrentNotifications(svc service.NotificationService, clock func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Current(c.UserContext(), clock())
		if err != nil {
			return respondError(c, err)
		}
		return writeList(c, items, len(items))
	}
}

// PastNotifications returns notifications at or before the window boundary.
func PastNotifications(svc service.NotificationService, clock func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Past(c.UserContext(), clock())
		if err != nil {
			return respondError(c, err)
		}
		return writeList(c, items, len(items))
	}
}

func UnreadCount(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.UnreadCount(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, fiber.Map{"count": n})
	}
}

func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.MarkRead(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, n)
	}
}

func MarkAllNotificationsRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		changed, err := svc.MarkAllRead(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, fiber.Map{"updated": changed})
	}
}

func DeleteNotification(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return writeMessage(c, "Notification deleted successfully")
	}
}
