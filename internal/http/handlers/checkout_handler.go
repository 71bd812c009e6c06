package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	"velora/internal/bus"
	"velora/internal/config"
	"velora/internal/domain"
	applog "velora/internal/log"
	"velora/internal/services"
	"velora/internal/validate"
)

type CheckoutHandler struct {
	Cart   *services.CartService
	Orders *services.OrderService
	Auth   *services.AuthService
	Bus    *bus.Bus
	Cfg    config.Config
}

// Checkout renders the quote plus shipping form. A line that the quote
// reports out of stock blocks the order buttons.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token, err := h.Auth.Token(sid)
	if err != nil {
		return c.Redirect("/login")
	}
	quote, err := h.Cart.Quote(c.Context(), token, sid)
	if err != nil {
		if backend.IsAuth(err) {
			return c.Redirect("/login")
		}
		applog.Error(c, "checkout.quote", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	if len(quote.Items) == 0 {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{
		"Quote":       quote,
		"DeliveryFee": h.Cfg.DeliveryFee,
		"GrandTotal":  quote.Total + h.Cfg.DeliveryFee,
		"OutOfStock":  anyOutOfStock(quote),
	})
}

// Place handles both payment paths. COD places the order outright; card
// fetches the gateway hash and renders the handoff page with the signed
// parameters.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token, err := h.Auth.Token(sid)
	if err != nil {
		return c.Redirect("/login")
	}

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter your name")
	}
	phone, ok := validate.Phone(c.FormValue("phone"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter a valid phone number")
	}
	address, ok := validate.Text(c.FormValue("address"), 300)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter your delivery address")
	}

	// Re-quote at placement time; payment always uses the freshest
	// authoritative figures, not whatever the page showed.
	quote, err := h.Cart.Quote(c.Context(), token, sid)
	if err != nil {
		applog.Error(c, "order.quote", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	if len(quote.Items) == 0 || quote.Total <= 0 {
		return c.Redirect("/cart")
	}
	if anyOutOfStock(quote) {
		return fail(c, fiber.StatusBadRequest, "Some items in your cart are out of stock. Please review your cart.")
	}

	req := backend.PlaceOrderRequest{
		Name:         name,
		Address:      address,
		Phone:        phone,
		Total:        quote.Total + h.Cfg.DeliveryFee,
		LabeledTotal: quote.LabeledTotal,
		Discount:     quote.Discount,
		Items:        quote.Items,
	}

	if c.FormValue("method") == "card" {
		hash, err := h.Orders.CardHandoff(c.Context(), token, req)
		if err != nil {
			applog.Error(c, "order.card.hash", err, nil)
			return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
		}
		// Older backend builds sign the hash but leave the merchant id to
		// the client config.
		merchantID := hash.MerchantID
		if merchantID == "" {
			merchantID = h.Cfg.GatewayMerchantID
		}
		applog.Audit(c, "order.card.handoff", map[string]any{"order_id": hash.OrderID})
		return render(c, "gateway", fiber.Map{
			"Hash":       hash.Hash,
			"MerchantID": merchantID,
			"OrderID":    hash.OrderID,
			"Amount":     fmt.Sprintf("%.2f", req.Total),
			"Currency":   "LKR",
			"Sandbox":    h.Cfg.GatewaySandbox,
			"Name":       name,
			"Phone":      phone,
			"Address":    address,
		})
	}

	placed, err := h.Orders.PlaceCOD(c.Context(), token, req)
	if err != nil {
		applog.Error(c, "order.cod.place", err, nil)
		return fail(c, fiber.StatusBadRequest, backend.UserMessage(err))
	}
	// The cart cleared here is only the local copy; the order now lives on
	// the backend.
	if err := h.Cart.Clear(sid); err != nil {
		applog.Error(c, "order.cart.clear", err, nil)
	}
	if h.Bus != nil {
		h.Bus.Publish(bus.Event{Topic: bus.TopicOrderPlaced, SessionID: sid, Payload: placed.OrderID})
	}
	applog.Audit(c, "order.cod.placed", map[string]any{"order_id": placed.OrderID})
	return render(c, "order_placed", fiber.Map{"OrderID": placed.OrderID})
}

func anyOutOfStock(q domain.Quote) bool {
	for _, line := range q.Items {
		if line.Stock <= 0 {
			return true
		}
	}
	return false
}
