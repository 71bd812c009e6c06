package services

import (
	"context"
	"errors"

	"velora/internal/backend"
	"velora/internal/domain"
	"velora/internal/store"
)

// ErrStockCeiling is returned when an increment would push a line past the
// stock figure the latest quote reported. The cart is left untouched.
var ErrStockCeiling = errors.New("quantity exceeds available stock")

type quoteAPI interface {
	Quote(ctx context.Context, token string, lines []domain.CartLine) (domain.Quote, error)
}

// CartService owns the local cart: merge-on-add keyed by productId, with a
// line removed the moment its quantity reaches zero. Prices are never stored
// locally; every money figure comes from a backend quote.
type CartService struct {
	Carts *store.CartRepo
	API   quoteAPI
}

func NewCartService(carts *store.CartRepo, api quoteAPI) *CartService {
	return &CartService{Carts: carts, API: api}
}

// Add merges a signed quantity delta into the line for productID. Adding to
// an existing line sums quantities; a result of zero or below removes the
// line entirely. stock caps increments when it is known (stock < 0 means
// "unknown, don't enforce"); decrements always go through, even when a stale
// quote already reports the line over stock, so the user can reduce it.
func (s *CartService) Add(sessionID, productID string, delta, stock int) error {
	if productID == "" || delta == 0 {
		return nil
	}
	cur, err := s.Carts.Qty(sessionID, productID)
	if err != nil {
		return err
	}
	next := cur + delta
	if next <= 0 {
		return s.Carts.Delete(sessionID, productID)
	}
	if delta > 0 && stock >= 0 && next > stock {
		return ErrStockCeiling
	}
	return s.Carts.Set(sessionID, productID, next)
}

// SetQty stores an absolute quantity; zero or below removes the line. The
// stock cap applies only when raising the quantity, so a line that stock has
// drifted under can still be lowered.
func (s *CartService) SetQty(sessionID, productID string, qty, stock int) error {
	if qty <= 0 {
		return s.Carts.Delete(sessionID, productID)
	}
	cur, err := s.Carts.Qty(sessionID, productID)
	if err != nil {
		return err
	}
	if qty > cur && stock >= 0 && qty > stock {
		return ErrStockCeiling
	}
	return s.Carts.Set(sessionID, productID, qty)
}

func (s *CartService) Remove(sessionID, productID string) error {
	return s.Carts.Delete(sessionID, productID)
}

func (s *CartService) Clear(sessionID string) error {
	return s.Carts.Clear(sessionID)
}

func (s *CartService) Lines(sessionID string) ([]domain.CartLine, error) {
	return s.Carts.Lines(sessionID)
}

// Quote submits the cart for authoritative pricing. An empty cart never
// reaches the network.
func (s *CartService) Quote(ctx context.Context, token, sessionID string) (domain.Quote, error) {
	lines, err := s.Carts.Lines(sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(lines) == 0 {
		return domain.Quote{}, nil
	}
	return s.API.Quote(ctx, token, lines)
}

// StockFor looks a product up in a quote, returning -1 (unknown) when the
// quote has no line for it.
func StockFor(q domain.Quote, productID string) int {
	for _, line := range q.Items {
		if line.ProductID == productID {
			return line.Stock
		}
	}
	return -1
}

var _ quoteAPI = (*backend.Client)(nil)
