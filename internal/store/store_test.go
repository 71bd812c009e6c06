package store_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"velora/internal/domain"
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

func TestCartRepo_SetZeroDeletes(t *testing.T) {
	r := store.NewCartRepo(memdb(t))

	if err := r.Set("s1", "P1", 2); err != nil {
		t.Fatal(err)
	}
	if err := r.Set("s1", "P1", 0); err != nil {
		t.Fatal(err)
	}
	qty, err := r.Qty("s1", "P1")
	if err != nil {
		t.Fatal(err)
	}
	if qty != 0 {
		t.Fatalf("want line removed, got qty %d", qty)
	}
}

func TestCartRepo_UpsertOverwrites(t *testing.T) {
	r := store.NewCartRepo(memdb(t))

	if err := r.Set("s1", "P1", 2); err != nil {
		t.Fatal(err)
	}
	if err := r.Set("s1", "P1", 7); err != nil {
		t.Fatal(err)
	}
	lines, err := r.Lines("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Qty != 7 {
		t.Fatalf("upsert broken: %+v", lines)
	}
}

func TestTokenVault_Roundtrip(t *testing.T) {
	v := store.NewTokenVault(memdb(t), "test-secret")

	if err := v.Save("s1", "bearer-token-value"); err != nil {
		t.Fatal(err)
	}
	got, err := v.Load("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "bearer-token-value" {
		t.Fatalf("roundtrip broken: %q", got)
	}
}

func TestTokenVault_MissingSession(t *testing.T) {
	v := store.NewTokenVault(memdb(t), "test-secret")
	if _, err := v.Load("nope"); !errors.Is(err, store.ErrNoToken) {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
}

func TestTokenVault_WrongKeyReadsAsLoggedOut(t *testing.T) {
	db := memdb(t)
	if err := store.NewTokenVault(db, "secret-a").Save("s1", "tok"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewTokenVault(db, "secret-b").Load("s1"); !errors.Is(err, store.ErrNoToken) {
		t.Fatalf("rotated key must read as logged out, got %v", err)
	}
}

func TestTokenVault_DeleteThenLoad(t *testing.T) {
	v := store.NewTokenVault(memdb(t), "test-secret")
	if err := v.Save("s1", "tok"); err != nil {
		t.Fatal(err)
	}
	if err := v.Delete("s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Load("s1"); !errors.Is(err, store.ErrNoToken) {
		t.Fatalf("want ErrNoToken after delete, got %v", err)
	}
}

func TestSessionRepo_BindUnbind(t *testing.T) {
	r := store.NewSessionRepo(memdb(t))

	u := domain.User{MongoID: "u1", Email: "a@b.com", FirstName: "Amy", Role: "user"}
	if err := r.Bind("s1", u); err != nil {
		t.Fatal(err)
	}
	got, err := r.User("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.MongoID != "u1" || got.FirstName != "Amy" {
		t.Fatalf("bad cached user: %+v", got)
	}

	if err := r.Unbind("s1"); err != nil {
		t.Fatal(err)
	}
	got, err = r.User("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("unbind should read as anonymous, got %+v", got)
	}
}

func TestSessionRepo_UnknownSessionIsAnonymous(t *testing.T) {
	r := store.NewSessionRepo(memdb(t))
	got, err := r.User("never-seen")
	if err != nil || got != nil {
		t.Fatalf("want nil,nil for unknown session, got %+v, %v", got, err)
	}
}
