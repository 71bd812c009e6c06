package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	}
	// Set on admin routes; the nav badge script reads its poll interval
	// from it.
	if ms, _ := c.Locals("BadgePollMS").(int64); ms > 0 {
		data["BadgePollMS"] = ms
	}
	return c.Render(tmpl, data)
}

// fail renders the shared error page with a friendly message.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).Render("error", fiber.Map{"Message": message})
}
