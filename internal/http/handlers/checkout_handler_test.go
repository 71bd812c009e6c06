package handlers_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"velora/internal/backend"
	"velora/internal/config"
	"velora/internal/domain"
	"velora/internal/http/handlers"
	"velora/internal/services"
	"velora/internal/store"
)

// fakeCheckoutAPI backs both the quote and the order paths of checkout.
type fakeCheckoutAPI struct {
	quote domain.Quote
	hash  backend.GatewayHash
}

func (f *fakeCheckoutAPI) Quote(ctx context.Context, token string, lines []domain.CartLine) (domain.Quote, error) {
	return f.quote, nil
}

func (f *fakeCheckoutAPI) MyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeCheckoutAPI) AdminOrders(ctx context.Context, token string) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeCheckoutAPI) OrderStats(ctx context.Context, token string) (domain.OrderStats, error) {
	return domain.OrderStats{}, nil
}

func (f *fakeCheckoutAPI) UpdateOrderStatus(ctx context.Context, token, id, status string) error {
	return nil
}

func (f *fakeCheckoutAPI) CancelOrder(ctx context.Context, token, orderID string) error {
	return nil
}

func (f *fakeCheckoutAPI) PlaceCOD(ctx context.Context, token string, req backend.PlaceOrderRequest) (backend.PlacedOrder, error) {
	return backend.PlacedOrder{OrderID: "ORD-1"}, nil
}

func (f *fakeCheckoutAPI) GenerateHash(ctx context.Context, token string, req backend.PlaceOrderRequest) (backend.GatewayHash, error) {
	return f.hash, nil
}

func newCheckoutApp(t *testing.T, api *fakeCheckoutAPI, cfg config.Config) (*fiber.App, *services.AuthService, *services.CartService) {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	authSvc := &services.AuthService{
		Sessions: store.NewSessionRepo(db),
		Vault:    store.NewTokenVault(db, "test-secret"),
	}
	cartSvc := services.NewCartService(store.NewCartRepo(db), api)
	h := &handlers.CheckoutHandler{
		Cart:   cartSvc,
		Orders: services.NewOrderService(api),
		Auth:   authSvc,
		Cfg:    cfg,
	}

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Post("/orders", h.Place)
	return app, authSvc, cartSvc
}

func TestCardHandoffMerchantFallsBackToConfig(t *testing.T) {
	api := &fakeCheckoutAPI{
		quote: domain.Quote{
			Items: []domain.QuoteLine{{ProductID: "P1", Qty: 1, Price: 1000, Stock: 5}},
			Total: 1000,
		},
		// Hash response without a merchant id, as older backend builds
		// return it.
		hash: backend.GatewayHash{Hash: "abc123", OrderID: "ORD-9"},
	}
	cfg := config.Config{GatewayMerchantID: "M-12345", GatewaySandbox: true, DeliveryFee: 350}
	app, auth, cart := newCheckoutApp(t, api, cfg)

	bind(t, auth, "sid-1", domain.User{MongoID: "u1", Role: "user"})
	if err := cart.Add("sid-1", "P1", 1, -1); err != nil {
		t.Fatal(err)
	}

	resp := postForm(t, app, "/orders", "sid-1", "method=card&name=Jane&phone=0771234567&address=12 Main Street")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 gateway page, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `value="M-12345"`) {
		t.Fatal("gateway form should carry the configured merchant id")
	}
}

func TestCardHandoffBackendMerchantWins(t *testing.T) {
	api := &fakeCheckoutAPI{
		quote: domain.Quote{
			Items: []domain.QuoteLine{{ProductID: "P1", Qty: 1, Price: 1000, Stock: 5}},
			Total: 1000,
		},
		hash: backend.GatewayHash{Hash: "abc123", MerchantID: "M-backend", OrderID: "ORD-9"},
	}
	cfg := config.Config{GatewayMerchantID: "M-12345", GatewaySandbox: true}
	app, auth, cart := newCheckoutApp(t, api, cfg)

	bind(t, auth, "sid-1", domain.User{MongoID: "u1", Role: "user"})
	if err := cart.Add("sid-1", "P1", 1, -1); err != nil {
		t.Fatal(err)
	}

	resp := postForm(t, app, "/orders", "sid-1", "method=card&name=Jane&phone=0771234567&address=12 Main Street")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `value="M-backend"`) || strings.Contains(string(body), "M-12345") {
		t.Fatal("backend-signed merchant id must take precedence")
	}
}
