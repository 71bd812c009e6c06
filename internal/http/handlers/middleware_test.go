package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"velora/internal/http/handlers"
)

func newCSRFApp(t *testing.T) *fiber.App {
	t.Helper()
	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(handlers.CSRF())

	app.Get("/token", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("csrf").(string))
	})
	app.Post("/api/chat/send", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Post("/cart", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

// issueToken fetches a token the way a page load would: the cookie plus the
// matching value handed to forms and scripts.
func issueToken(t *testing.T, app *fiber.App) (cookie *http.Cookie, token string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/token", nil))
	if err != nil {
		t.Fatal(err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "csrf_" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("no csrf cookie issued")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return cookie, string(body)
}

func TestCSRF_ChatEndpointsAreNotExempt(t *testing.T) {
	app := newCSRFApp(t)

	req := httptest.NewRequest("POST", "/api/chat/send", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("tokenless chat post: want 403, got %d", resp.StatusCode)
	}
}

func TestCSRF_HeaderTokenAcceptedOnChat(t *testing.T) {
	app := newCSRFApp(t)
	cookie, token := issueToken(t, app)

	req := httptest.NewRequest("POST", "/api/chat/send", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Csrf-Token", token)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("header token: want 200, got %d", resp.StatusCode)
	}
}

func TestCSRF_FormTokenAcceptedOnForms(t *testing.T) {
	app := newCSRFApp(t)
	cookie, token := issueToken(t, app)

	req := httptest.NewRequest("POST", "/cart", strings.NewReader("csrf="+token+"&productId=P1&qty=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("form token: want 200, got %d", resp.StatusCode)
	}

	bare := httptest.NewRequest("POST", "/cart", strings.NewReader("productId=P1&qty=1"))
	bare.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(bare)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("tokenless form post: want 403, got %d", resp.StatusCode)
	}
}
