package handler

import "github.com/gofiber/fiber/v2"

// successPayload is the envelope every successful API response uses.
type successPayload struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(successPayload{Success: true, Data: data})
}

// writeList always renders a JSON array, never null.
func writeList[T any](c *fiber.Ctx, items []T, count int) error {
	if items == nil {
		items = []T{}
	}
	return c.Status(fiber.StatusOK).JSON(successPayload{Success: true, Data: items, Count: &count})
}

func writeMessage(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(successPayload{Success: true, Message: message})
}
