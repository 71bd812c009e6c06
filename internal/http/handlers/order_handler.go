package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	applog "velora/internal/log"
	"velora/internal/services"
	"velora/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
	Auth   *services.AuthService
}

// History lists the user's orders with per-order cancellability.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token, err := h.Auth.Token(sid)
	if err != nil {
		return c.Redirect("/login")
	}
	orders, err := h.Orders.ListMine(c.Context(), token)
	if err != nil {
		if backend.IsAuth(err) {
			return c.Redirect("/login")
		}
		applog.Error(c, "orders.load", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "orders", fiber.Map{"Orders": orders, "Alert": c.Query("alert")})
}

// Cancel asks the backend to cancel an order. The button is only shown
// inside the advisory window, but the backend re-decides here regardless.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token, err := h.Auth.Token(sid)
	if err != nil {
		return c.Redirect("/login")
	}
	orderID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing order id")
	}
	if err := h.Orders.Cancel(c.Context(), token, orderID); err != nil {
		applog.Error(c, "order.cancel", err, map[string]any{"order_id": orderID})
		return c.Redirect("/orders?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": orderID})
	return c.Redirect("/orders?alert=Order+cancelled")
}
