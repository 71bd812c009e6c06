package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	applog "velora/internal/log"
	"velora/internal/media"
	"velora/internal/services"
	"velora/internal/validate"
	"velora/internal/ws"
)

// AdminHandler serves the back office: dashboard cards, the live order
// board, notifications, and catalog management. Every route behind it is
// gated by RequireAdmin.
type AdminHandler struct {
	API      *backend.Client
	Orders   *services.OrderService
	Notify   *services.NotifyService
	Auth     *services.AuthService
	Uploader *media.Uploader
	Feed     *ws.OrderFeed
}

func (h *AdminHandler) token(c *fiber.Ctx) (string, string, error) {
	sid := ensureSID(c)
	token, err := h.Auth.Token(sid)
	return sid, token, err
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	stats, err := h.Orders.Stats(c.Context(), token)
	if err != nil {
		applog.Error(c, "admin.stats", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "admin_dashboard", fiber.Map{"Stats": stats})
}

// OrdersPage renders the order board from the feed's reconciled snapshot,
// falling back to a direct fetch when the feed has not warmed up yet.
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	orders := h.Feed.Snapshot()
	if len(orders) == 0 {
		orders, err = h.Orders.AdminList(c.Context(), token)
		if err != nil {
			applog.Error(c, "admin.orders", err, nil)
			return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
		}
	}
	return render(c, "admin_orders", fiber.Map{
		"Orders": orders,
		"Alert":  c.Query("alert"),
	})
}

func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid order id")
	}
	status := c.FormValue("status")
	switch status {
	case "pending", "preparing", "shipped", "delivered", "cancelled":
	default:
		return fail(c, fiber.StatusBadRequest, "Invalid order status")
	}
	if err := h.Orders.UpdateStatus(c.Context(), token, id, status); err != nil {
		applog.Error(c, "admin.order.status", err, map[string]any{"order_id": id})
		return c.Redirect("/admin/orders?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.order.status", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}

func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	notifs, unread, err := h.Notify.List(c.Context(), sid, token)
	if err != nil {
		// The cached list was returned; render it with a banner instead of
		// failing the page.
		applog.Error(c, "admin.notifications", err, nil)
		return render(c, "admin_notifications", fiber.Map{
			"Notifications": notifs, "Unread": unread,
			"Alert": backend.UserMessage(err),
		})
	}
	return render(c, "admin_notifications", fiber.Map{
		"Notifications": notifs, "Unread": unread,
	})
}

// UnreadBadge backs the polled JSON badge in the admin navbar.
func (h *AdminHandler) UnreadBadge(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please log in again"})
	}
	n, err := h.Notify.Unread(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": backend.UserMessage(err)})
	}
	return c.JSON(fiber.Map{"unread": n})
}

func (h *AdminHandler) MarkRead(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	userID, ok := validate.ID(c.FormValue("userId"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if err := h.Notify.MarkRead(c.Context(), sid, token, userID); err != nil {
		applog.Error(c, "admin.notify.read", err, map[string]any{"user_id": userID})
	}
	return c.Redirect("/admin/notifications")
}

func (h *AdminHandler) MarkAllRead(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	if err := h.Notify.MarkAllRead(c.Context(), sid, token); err != nil {
		applog.Error(c, "admin.notify.readall", err, nil)
	}
	return c.Redirect("/admin/notifications")
}

// Thread shows a customer's chat history with the reply form.
func (h *AdminHandler) Thread(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	userID, ok := validate.ID(c.Params("userID"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	msgs, err := h.Notify.Thread(c.Context(), token, userID)
	if err != nil {
		applog.Error(c, "admin.thread", err, map[string]any{"user_id": userID})
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "admin_thread", fiber.Map{"UserID": userID, "Messages": msgs})
}

func (h *AdminHandler) Reply(c *fiber.Ctx) error {
	sid, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	userID, ok := validate.ID(c.Params("userID"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	text, ok := validate.Text(c.FormValue("text"), 1000)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Reply is empty or too long")
	}
	if err := h.Notify.Reply(c.Context(), token, userID, text); err != nil {
		applog.Error(c, "admin.reply", err, map[string]any{"user_id": userID})
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	applog.Audit(c, "admin.reply", map[string]any{"user_id": userID})
	// Replying implies the notification was handled.
	_ = h.Notify.MarkRead(c.Context(), sid, token, userID)
	return c.Redirect("/admin/chat/" + url.PathEscape(userID))
}
