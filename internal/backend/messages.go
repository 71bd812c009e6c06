package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"velora/internal/domain"
)

// Messages returns the caller's full support thread.
func (c *Client) Messages(ctx context.Context, token string) ([]domain.Message, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/messages/getmessages", token, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Message](raw, "messages")
}

// AdminReplies is the cheaper poll target while the widget sits open.
func (c *Client) AdminReplies(ctx context.Context, token string) ([]domain.Message, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/messages/getadminreplies", token, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Message](raw, "messages")
}

type SendResult struct {
	Success  bool             `json:"success"`
	Messages []domain.Message `json:"messages"`
}

// SendMessage posts one user message and returns whatever slice of the
// thread the backend chose to confirm. Callers must tolerate the new
// message being absent from it (the next poll self-heals).
func (c *Client) SendMessage(ctx context.Context, token, text string) (SendResult, error) {
	body := map[string]any{"message": text}
	var out SendResult
	if err := c.post(ctx, "/api/messages/sendmessage", token, body, &out); err != nil {
		return SendResult{}, err
	}
	return out, nil
}

// UserChat returns a given user's thread for the admin notification view.
func (c *Client) UserChat(ctx context.Context, token, userID string) ([]domain.Message, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/messages/getChat/"+url.PathEscape(userID), token, &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Message](raw, "messages")
}
