package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"velora/internal/domain"
	"velora/internal/services"
	"velora/internal/store"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeQuoteAPI struct {
	calls int
	quote domain.Quote
	err   error
}

func (f *fakeQuoteAPI) Quote(ctx context.Context, token string, lines []domain.CartLine) (domain.Quote, error) {
	f.calls++
	return f.quote, f.err
}

func TestCartAdd_MergesByProduct(t *testing.T) {
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), &fakeQuoteAPI{})
	sid := "s1"

	if err := svc.Add(sid, "P1", 2, -1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(sid, "P1", 1, -1); err != nil {
		t.Fatal(err)
	}

	lines, err := svc.Lines(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].ProductID != "P1" || lines[0].Qty != 3 {
		t.Fatalf("want one merged line P1 x3, got %+v", lines)
	}
}

func TestCartAdd_DecrementToZeroRemovesLine(t *testing.T) {
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), &fakeQuoteAPI{})
	sid := "s1"

	if err := svc.Add(sid, "P1", 1, -1); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(sid, "P1", -1, -1); err != nil {
		t.Fatal(err)
	}

	lines, err := svc.Lines(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Fatalf("line should be gone at qty 0, got %+v", lines)
	}
}

func TestCartAdd_StockCeilingLeavesCartUnchanged(t *testing.T) {
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), &fakeQuoteAPI{})
	sid := "s1"

	if err := svc.Add(sid, "P1", 2, 3); err != nil {
		t.Fatal(err)
	}
	err := svc.Add(sid, "P1", 5, 3)
	if !errors.Is(err, services.ErrStockCeiling) {
		t.Fatalf("want ErrStockCeiling, got %v", err)
	}

	lines, err := svc.Lines(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Qty != 2 {
		t.Fatalf("rejected add must not change the cart: %+v", lines)
	}
}

func TestCartAdd_DecrementAllowedPastStaleStock(t *testing.T) {
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), &fakeQuoteAPI{})
	sid := "s1"

	if err := svc.Add(sid, "P1", 3, -1); err != nil {
		t.Fatal(err)
	}
	// The latest quote says the product sold out; the minus button still
	// has to reduce the line.
	if err := svc.Add(sid, "P1", -1, 0); err != nil {
		t.Fatal(err)
	}

	lines, err := svc.Lines(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Qty != 2 {
		t.Fatalf("want P1 lowered to 2 despite zero stock, got %+v", lines)
	}
}

func TestCartSetQty_LoweringIgnoresStock(t *testing.T) {
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), &fakeQuoteAPI{})
	sid := "s1"

	if err := svc.Add(sid, "P1", 3, -1); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetQty(sid, "P1", 1, 0); err != nil {
		t.Fatal(err)
	}
	lines, err := svc.Lines(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Qty != 1 {
		t.Fatalf("want P1 lowered to 1, got %+v", lines)
	}

	// Raising past stock is still rejected.
	if err := svc.SetQty(sid, "P1", 5, 2); !errors.Is(err, services.ErrStockCeiling) {
		t.Fatalf("want ErrStockCeiling on raise, got %v", err)
	}
}

func TestCartQuote_EmptyCartSkipsNetwork(t *testing.T) {
	api := &fakeQuoteAPI{}
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), api)

	q, err := svc.Quote(context.Background(), "tok", "empty-session")
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Items) != 0 || q.Total != 0 {
		t.Fatalf("want zero quote, got %+v", q)
	}
	if api.calls != 0 {
		t.Fatalf("empty cart should not hit the backend, saw %d calls", api.calls)
	}
}

func TestCartSessionsAreIsolated(t *testing.T) {
	svc := services.NewCartService(store.NewCartRepo(memdb(t)), &fakeQuoteAPI{})

	if err := svc.Add("alice", "P1", 2, -1); err != nil {
		t.Fatal(err)
	}
	lines, err := svc.Lines("bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Fatalf("bob should not see alice's cart: %+v", lines)
	}
}

func TestStockFor(t *testing.T) {
	q := domain.Quote{Items: []domain.QuoteLine{{ProductID: "P1", Stock: 4}}}
	if got := services.StockFor(q, "P1"); got != 4 {
		t.Fatalf("want 4, got %d", got)
	}
	if got := services.StockFor(q, "P2"); got != -1 {
		t.Fatalf("unknown product should report -1, got %d", got)
	}
}
