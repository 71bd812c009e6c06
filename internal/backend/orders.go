package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"velora/internal/domain"
)

// Quote submits the local cart lines and returns the backend's authoritative
// prices, discounts and per-line stock. The local cart is never trusted for
// money.
func (c *Client) Quote(ctx context.Context, token string, lines []domain.CartLine) (domain.Quote, error) {
	body := map[string]any{"orderedItems": lines}
	var raw json.RawMessage
	if err := c.post(ctx, "/api/orders/quote", token, body, &raw); err != nil {
		return domain.Quote{}, err
	}
	return decodeObject[domain.Quote](raw)
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/orders/my-orders", token, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Order](raw, "orders")
}

func (c *Client) OrderStats(ctx context.Context, token string) (domain.OrderStats, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/orders/stats", token, &raw); err != nil {
		return domain.OrderStats{}, err
	}
	return decodeObject[domain.OrderStats](raw, "stats")
}

// AdminOrders returns the full order board for back-office users.
func (c *Client) AdminOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/orders/userplace/orders", token, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Order](raw, "orders")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, id, status string) error {
	return c.put(ctx, "/api/orders/"+url.PathEscape(id)+"/status", token, map[string]string{"status": status}, nil)
}

// PlaceOrderRequest is the checkout payload for both payment paths.
type PlaceOrderRequest struct {
	Name         string             `json:"name"`
	Address      string             `json:"address"`
	Phone        string             `json:"phone"`
	Total        float64            `json:"total"`
	LabeledTotal float64            `json:"labeledTotal"`
	Discount     float64            `json:"discount"`
	Items        []domain.QuoteLine `json:"orderedItems"`
}

type PlacedOrder struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

// PlaceCOD places a cash-on-delivery order.
func (c *Client) PlaceCOD(ctx context.Context, token string, req PlaceOrderRequest) (PlacedOrder, error) {
	var out PlacedOrder
	if err := c.post(ctx, "/api/payment/cod", token, req, &out); err != nil {
		return PlacedOrder{}, err
	}
	return out, nil
}

// GatewayHash is the card handoff material: the backend signs the amount so
// the gateway form can be rendered without this layer knowing the secret.
type GatewayHash struct {
	Hash       string `json:"hash"`
	MerchantID string `json:"merchantId"`
	OrderID    string `json:"orderId"`
}

func (c *Client) GenerateHash(ctx context.Context, token string, req PlaceOrderRequest) (GatewayHash, error) {
	var out GatewayHash
	if err := c.post(ctx, "/api/payment/generate-hash", token, req, &out); err != nil {
		return GatewayHash{}, err
	}
	return out, nil
}

// CancelOrder requests a cancellation. The UI gates this with an advisory
// time-window heuristic, but the backend's verdict here is the real one.
func (c *Client) CancelOrder(ctx context.Context, token, orderID string) error {
	return c.post(ctx, "/api/payment/cancel/"+url.PathEscape(orderID), token, nil, nil)
}
