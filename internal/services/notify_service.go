package services

import (
	"context"
	"sync"

	"velora/internal/backend"
	"velora/internal/domain"
	"velora/internal/reconcile"
)

type notifyAPI interface {
	Notifications(ctx context.Context, token string) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, token string) (int, error)
	MarkRead(ctx context.Context, token, userID string) error
	MarkAllRead(ctx context.Context, token string) error
	Reply(ctx context.Context, token, userID, text string) error
	UserChat(ctx context.Context, token, userID string) ([]domain.Message, error)
}

// NotifyService backs the admin notification dropdown and page. Badge
// counters are derived from the freshest fetched list on every poll, never
// persisted; the per-session cached list only smooths rendering between
// polls.
type NotifyService struct {
	API notifyAPI

	mu    sync.Mutex
	lists map[string]*reconcile.List[domain.Notification, string]
}

func NewNotifyService(api notifyAPI) *NotifyService {
	return &NotifyService{API: api, lists: make(map[string]*reconcile.List[domain.Notification, string])}
}

func notificationID(n domain.Notification) string { return n.ID }

// Newest first, the way the dropdown renders them.
func notificationOrder(a, b domain.Notification) bool { return a.CreatedAt.After(b.CreatedAt) }

func (s *NotifyService) list(sessionID string) *reconcile.List[domain.Notification, string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[sessionID]
	if !ok {
		l = reconcile.NewList[domain.Notification, string](notificationID, notificationOrder)
		s.lists[sessionID] = l
	}
	return l
}

// List fetches the freshest notifications and reconciles them into the
// session's cached list. The unread badge is recomputed from the result.
func (s *NotifyService) List(ctx context.Context, sessionID, token string) ([]domain.Notification, int, error) {
	l := s.list(sessionID)
	fetched, err := s.API.Notifications(ctx, token)
	if err != nil {
		// Render the cache; the badge from a stale list is still honest
		// about what the admin has seen.
		cached := l.Snapshot()
		return cached, countUnread(cached), err
	}
	l.Reconcile(fetched)
	out := l.Snapshot()
	return out, countUnread(out), nil
}

func countUnread(ns []domain.Notification) int {
	n := 0
	for _, notif := range ns {
		if !notif.IsRead {
			n++
		}
	}
	return n
}

func (s *NotifyService) Unread(ctx context.Context, token string) (int, error) {
	return s.API.UnreadCount(ctx, token)
}

// MarkRead marks a user's notifications read on the backend, then folds the
// same transition into the cached list so the badge drops without waiting
// for the next poll.
func (s *NotifyService) MarkRead(ctx context.Context, sessionID, token, userID string) error {
	if err := s.API.MarkRead(ctx, token, userID); err != nil {
		return err
	}
	l := s.list(sessionID)
	updated := l.Snapshot()
	for i := range updated {
		if updated[i].UserID == userID {
			updated[i].IsRead = true
		}
	}
	l.Reconcile(updated)
	return nil
}

func (s *NotifyService) MarkAllRead(ctx context.Context, sessionID, token string) error {
	if err := s.API.MarkAllRead(ctx, token); err != nil {
		return err
	}
	l := s.list(sessionID)
	updated := l.Snapshot()
	for i := range updated {
		updated[i].IsRead = true
	}
	l.Reconcile(updated)
	return nil
}

func (s *NotifyService) Reply(ctx context.Context, token, userID, text string) error {
	return s.API.Reply(ctx, token, userID, text)
}

// Thread returns the user's chat history for the reply drawer.
func (s *NotifyService) Thread(ctx context.Context, token, userID string) ([]domain.Message, error) {
	return s.API.UserChat(ctx, token, userID)
}

var _ notifyAPI = (*backend.Client)(nil)
