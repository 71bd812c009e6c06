package services

import (
	"context"
	"strings"
	"time"

	"velora/internal/backend"
	"velora/internal/domain"
)

// CancelWindow is the advisory client-side cancellation window. The backend
// runs its own check on the cancel endpoint; whether it applies the same
// window is its business, this one only decides whether to show the button.
const CancelWindow = 10 * time.Minute

type orderAPI interface {
	MyOrders(ctx context.Context, token string) ([]domain.Order, error)
	AdminOrders(ctx context.Context, token string) ([]domain.Order, error)
	OrderStats(ctx context.Context, token string) (domain.OrderStats, error)
	UpdateOrderStatus(ctx context.Context, token, id, status string) error
	CancelOrder(ctx context.Context, token, orderID string) error
	PlaceCOD(ctx context.Context, token string, req backend.PlaceOrderRequest) (backend.PlacedOrder, error)
	GenerateHash(ctx context.Context, token string, req backend.PlaceOrderRequest) (backend.GatewayHash, error)
}

type OrderService struct {
	API orderAPI

	// now is swappable for the cancellability tests.
	now func() time.Time
}

func NewOrderService(api orderAPI) *OrderService {
	return &OrderService{API: api, now: time.Now}
}

// Cancellable reports whether the cancel button is offered: pending status,
// non-card payment, and created less than CancelWindow ago.
func (s *OrderService) Cancellable(o domain.Order) bool {
	if !strings.EqualFold(o.Status, "pending") {
		return false
	}
	switch strings.ToLower(o.PaymentMethod) {
	case "card", "payhere":
		return false
	}
	if o.CreatedAt.IsZero() {
		return false
	}
	return s.now().Sub(o.CreatedAt) < CancelWindow
}

// OrderView pairs an order with its render-time cancellability.
type OrderView struct {
	domain.Order
	Cancellable bool
}

func (s *OrderService) ListMine(ctx context.Context, token string) ([]OrderView, error) {
	orders, err := s.API.MyOrders(ctx, token)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderView{Order: o, Cancellable: s.Cancellable(o)})
	}
	return views, nil
}

func (s *OrderService) Cancel(ctx context.Context, token, orderID string) error {
	return s.API.CancelOrder(ctx, token, orderID)
}

func (s *OrderService) PlaceCOD(ctx context.Context, token string, req backend.PlaceOrderRequest) (backend.PlacedOrder, error) {
	return s.API.PlaceCOD(ctx, token, req)
}

func (s *OrderService) CardHandoff(ctx context.Context, token string, req backend.PlaceOrderRequest) (backend.GatewayHash, error) {
	return s.API.GenerateHash(ctx, token, req)
}

func (s *OrderService) AdminList(ctx context.Context, token string) ([]domain.Order, error) {
	return s.API.AdminOrders(ctx, token)
}

func (s *OrderService) Stats(ctx context.Context, token string) (domain.OrderStats, error) {
	return s.API.OrderStats(ctx, token)
}

func (s *OrderService) UpdateStatus(ctx context.Context, token, id, status string) error {
	return s.API.UpdateOrderStatus(ctx, token, id, status)
}

var _ orderAPI = (*backend.Client)(nil)
