package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"velora/internal/domain"
)

type LoginResponse struct {
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
	Message string      `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.post(ctx, "/api/users/login", "", body, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

type SignupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.post(ctx, "/api/users/", "", req, nil)
}

func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/users/me", token, &raw); err != nil {
		return domain.User{}, err
	}
	return decodeObject[domain.User](raw, "user")
}

type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Image     string `json:"image"`
}

func (c *Client) UpdateMe(ctx context.Context, token string, req ProfileUpdate) error {
	return c.put(ctx, "/api/users/me", token, req, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/api/users/forgot-password", "", map[string]string{"email": email}, nil)
}

// ResetPassword consumes the emailed reset token, not the session bearer.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	return c.put(ctx, "/api/users/reset-password/"+url.PathEscape(resetToken), "", map[string]string{"password": password}, nil)
}
