package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	applog "velora/internal/log"
	"velora/internal/services"
	"velora/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
	Auth *services.AuthService
}

// View renders the cart. Logged-in sessions get an authoritative quote
// (prices, discounts, per-line stock); anonymous ones see bare lines and a
// login prompt.
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	lines, err := h.Cart.Lines(sid)
	if err != nil {
		applog.Error(c, "cart.load", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load your cart")
	}

	data := fiber.Map{"Lines": lines, "Alert": c.Query("alert")}

	token, err := h.Auth.Token(sid)
	if err == nil && len(lines) > 0 {
		quote, err := h.Cart.Quote(c.Context(), token, sid)
		if err != nil {
			applog.Error(c, "cart.quote", err, nil)
			data["Alert"] = backend.UserMessage(err)
		} else {
			data["Quote"] = quote
		}
	} else if errors.Is(err, services.ErrNotLoggedIn) {
		data["NeedLogin"] = true
	}
	return render(c, "cart", data)
}

// Add merges a quantity delta into a line (form: productId, qty, stock).
// The stock field is the figure the product page displayed; absent means
// unenforced here and the quote re-checks anyway.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	if qty == 0 {
		qty = 1
	}
	stock := -1
	if n, ok := validate.Stock(c.FormValue("stock")); ok {
		stock = n
	}

	if err := h.Cart.Add(sid, productID, qty, stock); err != nil {
		if errors.Is(err, services.ErrStockCeiling) {
			applog.Info(c, "cart.add.stock_ceiling", map[string]any{"product": productID})
			return c.Redirect("/cart?alert=Maximum+stock+reached")
		}
		applog.Error(c, "cart.add", err, map[string]any{"product": productID})
		return fail(c, fiber.StatusInternalServerError, "Could not update your cart")
	}
	if c.FormValue("back") == "product" {
		return c.Redirect("/product/" + productID)
	}
	return c.Redirect("/cart")
}

// SetQty stores an absolute quantity; zero removes the line.
func (h *CartHandler) SetQty(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	stock := -1
	if n, ok := validate.Stock(c.FormValue("stock")); ok {
		stock = n
	}
	if err := h.Cart.SetQty(sid, productID, qty, stock); err != nil {
		if errors.Is(err, services.ErrStockCeiling) {
			return c.Redirect("/cart?alert=Maximum+stock+reached")
		}
		applog.Error(c, "cart.setqty", err, map[string]any{"product": productID})
		return fail(c, fiber.StatusInternalServerError, "Could not update your cart")
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Cart.Remove(sid, productID); err != nil {
		applog.Error(c, "cart.remove", err, map[string]any{"product": productID})
		return fail(c, fiber.StatusInternalServerError, "Could not update your cart")
	}
	return c.Redirect("/cart")
}
