package handlers

import (
	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	"velora/internal/domain"
	applog "velora/internal/log"
	"velora/internal/validate"
)

type CatalogHandler struct {
	API *backend.Client
}

// Home renders the landing page: product grid plus the "home" ad banners.
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	products, err := h.API.Products(c.Context())
	if err != nil {
		applog.Error(c, "home.products.load", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	// Ads are decorative; a failed fetch never blocks the page.
	ads, err := h.API.Ads(c.Context(), "home")
	if err != nil {
		applog.Error(c, "home.ads.load", err, nil)
		ads = nil
	}
	categories, err := h.API.Categories(c.Context())
	if err != nil {
		categories = nil
	}
	return render(c, "home", fiber.Map{
		"Products":   products,
		"Ads":        activeAds(ads),
		"Categories": categories,
	})
}

// Category renders one category's products plus its placement ads.
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "Category not found")
	}
	products, err := h.API.ProductsByCategory(c.Context(), slug)
	if err != nil {
		if backend.IsNotFound(err) {
			return fail(c, fiber.StatusNotFound, "Category not found")
		}
		applog.Error(c, "category.load", err, map[string]any{"slug": slug})
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	ads, _ := h.API.Ads(c.Context(), slug)
	return render(c, "category", fiber.Map{
		"Slug":     slug,
		"Products": products,
		"Ads":      activeAds(ads),
	})
}

// Detail renders the product overview page.
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "This item is no longer available")
	}
	product, err := h.API.Product(c.Context(), id)
	if err != nil {
		if backend.IsNotFound(err) {
			return fail(c, fiber.StatusNotFound, "This item is no longer available")
		}
		applog.Error(c, "product.load", err, map[string]any{"id": id})
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "product", fiber.Map{"Product": product})
}

func activeAds(ads []domain.Ad) []domain.Ad {
	out := ads[:0]
	for _, ad := range ads {
		if ad.Active {
			out = append(out, ad)
		}
	}
	return out
}
