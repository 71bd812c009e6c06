package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	applog "velora/internal/log"
)

// CSRF protects every state-changing route. Browser forms carry the token in
// a csrf field; the chat widget's JSON posts echo the cookie back in an
// X-Csrf-Token header, so its endpoints are validated like any other.
func CSRF() fiber.Handler {
	return csrf.New(csrf.Config{
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok := c.FormValue("csrf"); tok != "" {
				return tok, nil
			}
			if tok := c.Get("X-Csrf-Token"); tok != "" {
				return tok, nil
			}
			return "", csrf.ErrTokenNotFound
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Please refresh and try again."})
			}
			return c.Status(fiber.StatusForbidden).Render("error", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	})
}
