package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"velora/internal/backend"
	"velora/internal/domain"
)

func newClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.New(backend.Settings{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestProducts_BareArray(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]domain.Product{{ProductID: "P1", Name: "Lipstick"}})
	})

	products, err := c.Products(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].ProductID != "P1" {
		t.Fatalf("bad decode: %+v", products)
	}
}

func TestProducts_WrappedEnvelope(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"products": []domain.Product{{ProductID: "P1"}, {ProductID: "P2"}},
		})
	})

	products, err := c.Products(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("wrapped list not unwrapped: %+v", products)
	}
}

func TestBearerHeader(t *testing.T) {
	var got string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Order{})
	})

	if _, err := c.MyOrders(context.Background(), "abc123"); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer abc123" {
		t.Fatalf("want bearer header, got %q", got)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusUnauthorized, backend.IsAuth, "auth"},
		{http.StatusForbidden, backend.IsAuth, "forbidden is auth"},
		{http.StatusNotFound, backend.IsNotFound, "not found"},
		{http.StatusTooManyRequests, backend.IsRateLimited, "rate limited"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
			})
			_, err := c.MyOrders(context.Background(), "tok")
			if err == nil || !tc.check(err) {
				t.Fatalf("status %d not classified, err=%v", tc.status, err)
			}
		})
	}
}

func TestErrorMessageParsedFromBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not enough stock"})
	})
	_, err := c.MyOrders(context.Background(), "tok")
	if err == nil {
		t.Fatal("want error")
	}
	if got := backend.UserMessage(err); got != "Not enough stock" {
		t.Fatalf("backend message should surface for bad input, got %q", got)
	}
}

func TestUnreachable(t *testing.T) {
	c := backend.New(backend.Settings{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := c.Products(context.Background())
	if !backend.IsUnreachable(err) {
		t.Fatalf("want unreachable, got %v", err)
	}
}

func TestQuote_PostsCartLines(t *testing.T) {
	var body map[string][]domain.CartLine
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders/quote" {
			t.Errorf("wrong call: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(domain.Quote{
			Items: []domain.QuoteLine{{ProductID: "P1", Qty: 2, LastPrice: 100, Stock: 5}},
			Total: 200,
		})
	})

	q, err := c.Quote(context.Background(), "tok", []domain.CartLine{{ProductID: "P1", Qty: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if len(body["orderedItems"]) != 1 {
		t.Fatalf("cart lines not posted: %+v", body)
	}
	if q.Total != 200 || len(q.Items) != 1 {
		t.Fatalf("bad quote decode: %+v", q)
	}
}

func TestUserMessage_Fallbacks(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.MyOrders(context.Background(), "tok")
	if got := backend.UserMessage(err); got != "Please log in again to continue." {
		t.Fatalf("auth message wrong: %q", got)
	}
}
