package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"velora/internal/domain"
)

func (c *Client) Notifications(ctx context.Context, token string) ([]domain.Notification, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/notifications/getNotifications", token, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Notification](raw, "notifications")
}

func (c *Client) UnreadCount(ctx context.Context, token string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, "/api/notifications/unread-count", token, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkRead marks every notification from one user as read.
func (c *Client) MarkRead(ctx context.Context, token, userID string) error {
	return c.post(ctx, "/api/notifications/markRead", token, map[string]string{"userId": userID}, nil)
}

func (c *Client) MarkAllRead(ctx context.Context, token string) error {
	return c.post(ctx, "/api/notifications/markAllRead", token, nil, nil)
}

// Reply sends an admin reply into a user's support thread.
func (c *Client) Reply(ctx context.Context, token, userID, text string) error {
	return c.post(ctx, "/api/notifications/reply/"+url.PathEscape(userID), token, map[string]string{"message": text}, nil)
}
