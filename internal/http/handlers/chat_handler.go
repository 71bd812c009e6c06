package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	"velora/internal/domain"
	applog "velora/internal/log"
	"velora/internal/services"
	"velora/internal/validate"
)

// ChatHandler serves the support widget's JSON surface. The widget script
// polls Messages while open and posts through Send; everything stateful
// lives in the ChatService so a page navigation does not drop the thread.
type ChatHandler struct {
	Chat *services.ChatService
	Auth *services.AuthService
}

func (h *ChatHandler) token(c *fiber.Ctx) (string, string, error) {
	sid := ensureSID(c)
	token, err := h.Auth.Token(sid)
	return sid, token, err
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in again"})
	}
	msgs, draft := h.Chat.Snapshot(sid, token)
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return c.JSON(fiber.Map{"messages": msgs, "draft": draft})
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in again"})
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	text, ok := validate.Text(body.Text, 1000)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is empty or too long"})
	}

	if err := h.Chat.Send(c.Context(), sid, token, text); err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is empty"})
		case errors.Is(err, services.ErrSendInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Still sending your last message"})
		default:
			applog.Error(c, "chat.send", err, nil)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": backend.UserMessage(err)})
		}
	}

	msgs, draft := h.Chat.Snapshot(sid, token)
	return c.JSON(fiber.Map{"messages": msgs, "draft": draft})
}

// Draft saves typed-but-unsent text so the widget restores it on reopen.
func (h *ChatHandler) Draft(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in again"})
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	if len(body.Text) > 1000 {
		body.Text = body.Text[:1000]
	}
	h.Chat.SetDraft(sid, token, body.Text)
	return c.SendStatus(fiber.StatusNoContent)
}

// CloseWidget stops the session's reply poller. Called when the user closes
// the widget so an abandoned tab does not keep polling.
func (h *ChatHandler) CloseWidget(c *fiber.Ctx) error {
	sid := ensureSID(c)
	h.Chat.Close(sid)
	return c.SendStatus(fiber.StatusNoContent)
}
