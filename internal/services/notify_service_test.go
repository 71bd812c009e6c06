package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"velora/internal/domain"
	"velora/internal/services"
)

type fakeNotifyAPI struct {
	notifs   []domain.Notification
	fetchErr error
	marked   []string
}

func (f *fakeNotifyAPI) Notifications(ctx context.Context, token string) ([]domain.Notification, error) {
	return f.notifs, f.fetchErr
}

func (f *fakeNotifyAPI) UnreadCount(ctx context.Context, token string) (int, error) { return 0, nil }

func (f *fakeNotifyAPI) MarkRead(ctx context.Context, token, userID string) error {
	f.marked = append(f.marked, userID)
	return nil
}

func (f *fakeNotifyAPI) MarkAllRead(ctx context.Context, token string) error { return nil }

func (f *fakeNotifyAPI) Reply(ctx context.Context, token, userID, text string) error { return nil }

func (f *fakeNotifyAPI) UserChat(ctx context.Context, token, userID string) ([]domain.Message, error) {
	return nil, nil
}

func TestNotifyList_NewestFirstWithBadge(t *testing.T) {
	api := &fakeNotifyAPI{notifs: []domain.Notification{
		{ID: "n1", UserID: "u1", CreatedAt: time.Unix(1, 0)},
		{ID: "n2", UserID: "u2", CreatedAt: time.Unix(9, 0)},
		{ID: "n3", UserID: "u1", IsRead: true, CreatedAt: time.Unix(5, 0)},
	}}
	svc := services.NewNotifyService(api)

	out, unread, err := svc.List(context.Background(), "s1", "tok")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0].ID != "n2" || out[2].ID != "n1" {
		t.Fatalf("want newest first, got %+v", out)
	}
	if unread != 2 {
		t.Fatalf("want 2 unread, got %d", unread)
	}
}

func TestNotifyList_FetchErrorServesCache(t *testing.T) {
	api := &fakeNotifyAPI{notifs: []domain.Notification{
		{ID: "n1", UserID: "u1", CreatedAt: time.Unix(1, 0)},
	}}
	svc := services.NewNotifyService(api)

	if _, _, err := svc.List(context.Background(), "s1", "tok"); err != nil {
		t.Fatal(err)
	}

	api.fetchErr = errors.New("backend down")
	out, unread, err := svc.List(context.Background(), "s1", "tok")
	if err == nil {
		t.Fatal("want the fetch error surfaced")
	}
	if len(out) != 1 || unread != 1 {
		t.Fatalf("cache should still render: %+v unread=%d", out, unread)
	}
}

func TestNotifyMarkRead_FoldsIntoCache(t *testing.T) {
	api := &fakeNotifyAPI{notifs: []domain.Notification{
		{ID: "n1", UserID: "u1", CreatedAt: time.Unix(1, 0)},
		{ID: "n2", UserID: "u2", CreatedAt: time.Unix(2, 0)},
	}}
	svc := services.NewNotifyService(api)

	if _, _, err := svc.List(context.Background(), "s1", "tok"); err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkRead(context.Background(), "s1", "tok", "u1"); err != nil {
		t.Fatal(err)
	}
	if len(api.marked) != 1 || api.marked[0] != "u1" {
		t.Fatalf("backend not told: %+v", api.marked)
	}

	// Cache reflects the transition before the next fetch.
	api.fetchErr = errors.New("down")
	out, unread, _ := svc.List(context.Background(), "s1", "tok")
	if unread != 1 {
		t.Fatalf("want 1 unread after mark, got %d: %+v", unread, out)
	}
}
