package utils

import "github.com/gofiber/fiber/v2"

// SendSuccess writes a success envelope. Payload keys are merged into the
// top level of the body next to success and message.
func SendSuccess(c *fiber.Ctx, status int, message string, payload fiber.Map) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	body := fiber.Map{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	if message != "" {
		body["message"] = message
	}

	return c.Status(status).JSON(body)
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
