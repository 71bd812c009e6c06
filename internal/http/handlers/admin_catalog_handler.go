package handlers

import (
	"io"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	"velora/internal/domain"
	"velora/internal/export"
	applog "velora/internal/log"
	"velora/internal/validate"
)

// Catalog management half of the back office: products, categories, ads.

func (h *AdminHandler) ProductsPage(c *fiber.Ctx) error {
	products, err := h.API.Products(c.Context())
	if err != nil {
		applog.Error(c, "admin.products", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "admin_products", fiber.Map{
		"Products": products,
		"Alert":    c.Query("alert"),
	})
}

func (h *AdminHandler) ProductForm(c *fiber.Ctx) error {
	categories, err := h.API.Categories(c.Context())
	if err != nil {
		applog.Error(c, "admin.product.form", err, nil)
	}
	data := fiber.Map{"Categories": categories}
	if id := c.Query("id"); id != "" {
		p, err := h.API.Product(c.Context(), id)
		if err != nil {
			return fail(c, fiber.StatusNotFound, backend.UserMessage(err))
		}
		data["Product"] = p
	}
	return render(c, "admin_product_form", data)
}

// SaveProduct creates or updates a product. An uploaded image file goes to
// object storage first; its public URL joins any URLs already on the form.
func (h *AdminHandler) SaveProduct(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}

	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	name, ok := validate.Name(c.FormValue("productName"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter a product name")
	}
	price, ok := validate.Price(c.FormValue("price"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid price")
	}
	lastPrice, ok := validate.Price(c.FormValue("lastPrices"))
	if !ok {
		lastPrice = price
	}
	stock, ok := validate.Stock(c.FormValue("stock"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid stock")
	}
	category, _ := validate.Slug(c.FormValue("category"))

	images := splitLines(c.FormValue("images"))
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Could not read the uploaded file")
		}
		data, err := io.ReadAll(io.LimitReader(f, 8<<20))
		f.Close()
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Could not read the uploaded file")
		}
		publicURL, err := h.Uploader.Upload(c.Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
		if err != nil {
			applog.Error(c, "admin.product.upload", err, map[string]any{"file": fh.Filename})
			return fail(c, fiber.StatusBadGateway, "Image upload failed")
		}
		images = append(images, publicURL)
	}

	p := domain.Product{
		ProductID:   productID,
		Name:        name,
		AltNames:    splitLines(c.FormValue("altNames")),
		Description: c.FormValue("description"),
		Price:       price,
		LastPrice:   lastPrice,
		Images:      images,
		Stock:       stock,
		Available:   c.FormValue("isAvailable") == "on",
		Category:    category,
	}

	mongoID := c.FormValue("_id")
	if mongoID != "" {
		err = h.API.UpdateProduct(c.Context(), token, mongoID, p)
	} else {
		err = h.API.CreateProduct(c.Context(), token, p)
	}
	if err != nil {
		applog.Error(c, "admin.product.save", err, map[string]any{"product_id": productID})
		return c.Redirect("/admin/products?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.product.save", map[string]any{"product_id": productID})
	return c.Redirect("/admin/products")
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid product id")
	}
	if err := h.API.DeleteProduct(c.Context(), token, id); err != nil {
		applog.Error(c, "admin.product.delete", err, map[string]any{"product_id": id})
		return c.Redirect("/admin/products?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return c.Redirect("/admin/products")
}

// ExportProducts streams the catalog as a spreadsheet download.
func (h *AdminHandler) ExportProducts(c *fiber.Ctx) error {
	products, err := h.API.Products(c.Context())
	if err != nil {
		applog.Error(c, "admin.products.export", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	data, err := export.ProductsXLSX(products)
	if err != nil {
		applog.Error(c, "admin.products.export", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Export failed")
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Send(data)
}

func (h *AdminHandler) CategoriesPage(c *fiber.Ctx) error {
	categories, err := h.API.Categories(c.Context())
	if err != nil {
		applog.Error(c, "admin.categories", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "admin_categories", fiber.Map{
		"Categories": categories,
		"Alert":      c.Query("alert"),
	})
}

func (h *AdminHandler) SaveCategory(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter a category name")
	}
	slug, ok := validate.Slug(c.FormValue("slug"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid slug")
	}
	cat := domain.Category{
		Name:        name,
		Slug:        slug,
		Image:       c.FormValue("image"),
		Description: c.FormValue("description"),
	}
	mongoID := c.FormValue("_id")
	if mongoID != "" {
		err = h.API.UpdateCategory(c.Context(), token, mongoID, cat)
	} else {
		err = h.API.CreateCategory(c.Context(), token, cat)
	}
	if err != nil {
		applog.Error(c, "admin.category.save", err, map[string]any{"slug": slug})
		return c.Redirect("/admin/categories?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.category.save", map[string]any{"slug": slug})
	return c.Redirect("/admin/categories")
}

func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid category id")
	}
	if err := h.API.DeleteCategory(c.Context(), token, id); err != nil {
		applog.Error(c, "admin.category.delete", err, map[string]any{"category_id": id})
		return c.Redirect("/admin/categories?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.category.delete", map[string]any{"category_id": id})
	return c.Redirect("/admin/categories")
}

func (h *AdminHandler) AdsPage(c *fiber.Ctx) error {
	ads, err := h.API.Ads(c.Context(), c.Query("category"))
	if err != nil {
		applog.Error(c, "admin.ads", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "admin_ads", fiber.Map{
		"Ads":   ads,
		"Alert": c.Query("alert"),
	})
}

func (h *AdminHandler) SaveAd(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	title, ok := validate.Name(c.FormValue("title"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter an ad title")
	}
	placement := strings.TrimSpace(c.FormValue("category"))
	if placement == "" {
		placement = "home"
	}

	image := c.FormValue("image")
	if fh, err := c.FormFile("imageFile"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Could not read the uploaded file")
		}
		data, err := io.ReadAll(io.LimitReader(f, 8<<20))
		f.Close()
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Could not read the uploaded file")
		}
		publicURL, err := h.Uploader.Upload(c.Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
		if err != nil {
			applog.Error(c, "admin.ad.upload", err, map[string]any{"file": fh.Filename})
			return fail(c, fiber.StatusBadGateway, "Image upload failed")
		}
		image = publicURL
	}

	ad := domain.Ad{
		Title:     title,
		Image:     image,
		Link:      c.FormValue("link"),
		Placement: placement,
		Active:    c.FormValue("isActive") == "on",
	}
	mongoID := c.FormValue("_id")
	if mongoID != "" {
		err = h.API.UpdateAd(c.Context(), token, mongoID, ad)
	} else {
		err = h.API.CreateAd(c.Context(), token, ad)
	}
	if err != nil {
		applog.Error(c, "admin.ad.save", err, map[string]any{"title": title})
		return c.Redirect("/admin/ads?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.ad.save", map[string]any{"title": title})
	return c.Redirect("/admin/ads")
}

func (h *AdminHandler) DeleteAd(c *fiber.Ctx) error {
	_, token, err := h.token(c)
	if err != nil {
		return c.Redirect("/login")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid ad id")
	}
	if err := h.API.DeleteAd(c.Context(), token, id); err != nil {
		applog.Error(c, "admin.ad.delete", err, map[string]any{"ad_id": id})
		return c.Redirect("/admin/ads?alert=" + url.QueryEscape(backend.UserMessage(err)))
	}
	applog.Audit(c, "admin.ad.delete", map[string]any{"ad_id": id})
	return c.Redirect("/admin/ads")
}

// splitLines parses a textarea of one URL or alias per line.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
