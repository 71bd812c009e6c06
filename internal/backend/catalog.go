package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"velora/internal/domain"
)

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/products", "", &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Product](raw, "products")
}

func (c *Client) ProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/products/category/"+url.PathEscape(slug), "", &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Product](raw, "products")
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/products/"+url.PathEscape(id), "", &raw); err != nil {
		return domain.Product{}, err
	}
	return decodeObject[domain.Product](raw, "product")
}

func (c *Client) CreateProduct(ctx context.Context, token string, p domain.Product) error {
	return c.post(ctx, "/api/products", token, p, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, p domain.Product) error {
	return c.put(ctx, "/api/products/"+url.PathEscape(id), token, p, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/api/products/"+url.PathEscape(id), token)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/categories", "", &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Category](raw, "categories")
}

func (c *Client) CreateCategory(ctx context.Context, token string, cat domain.Category) error {
	return c.post(ctx, "/api/categories", token, cat, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, token, id string, cat domain.Category) error {
	return c.put(ctx, "/api/categories/"+url.PathEscape(id), token, cat, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/api/categories/"+url.PathEscape(id), token)
}

// Ads returns the ad records for a placement: "home" for the landing page
// banners, or a category slug.
func (c *Client) Ads(ctx context.Context, placement string) ([]domain.Ad, error) {
	path := "/api/ads"
	if placement != "" {
		path += "?category=" + url.QueryEscape(placement)
	}
	var raw json.RawMessage
	if err := c.get(ctx, path, "", &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Ad](raw, "ads")
}

func (c *Client) CreateAd(ctx context.Context, token string, ad domain.Ad) error {
	return c.post(ctx, "/api/ads", token, ad, nil)
}

func (c *Client) UpdateAd(ctx context.Context, token, id string, ad domain.Ad) error {
	return c.put(ctx, "/api/ads/"+url.PathEscape(id), token, ad, nil)
}

func (c *Client) DeleteAd(ctx context.Context, token, id string) error {
	return c.delete(ctx, "/api/ads/"+url.PathEscape(id), token)
}
