package services

import (
	"context"
	"errors"

	"velora/internal/backend"
	"velora/internal/bus"
	"velora/internal/domain"
	"velora/internal/store"
)

var ErrNotLoggedIn = errors.New("not logged in")

type authAPI interface {
	Login(ctx context.Context, email, password string) (backend.LoginResponse, error)
	Me(ctx context.Context, token string) (domain.User, error)
	Signup(ctx context.Context, req backend.SignupRequest) error
	UpdateMe(ctx context.Context, token string, req backend.ProfileUpdate) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// AuthService holds session identity for the UI. Credentials are verified by
// the backend; this layer only stores the resulting bearer token (sealed at
// rest) and a cached copy of the user for template rendering.
type AuthService struct {
	API      authAPI
	Sessions *store.SessionRepo
	Vault    *store.TokenVault
	Bus      *bus.Bus
}

func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*domain.User, error) {
	res, err := s.API.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user := res.User
	if user.MongoID == "" {
		// Older backend builds return only the token.
		user, err = s.API.Me(ctx, res.Token)
		if err != nil {
			return nil, err
		}
	}
	if err := s.Vault.Save(sessionID, res.Token); err != nil {
		return nil, err
	}
	if err := s.Sessions.Bind(sessionID, user); err != nil {
		return nil, err
	}
	if s.Bus != nil {
		s.Bus.Publish(bus.Event{Topic: bus.TopicLogin, SessionID: sessionID})
	}
	return &user, nil
}

func (s *AuthService) Logout(sessionID string) error {
	if err := s.Vault.Delete(sessionID); err != nil {
		return err
	}
	if err := s.Sessions.Unbind(sessionID); err != nil {
		return err
	}
	if s.Bus != nil {
		s.Bus.Publish(bus.Event{Topic: bus.TopicLogout, SessionID: sessionID})
	}
	return nil
}

// CurrentUser returns the cached user for a session, or nil when the session
// is anonymous or its token has lapsed (expired tokens read as logged out so
// the UI prompts a re-login instead of issuing doomed requests).
func (s *AuthService) CurrentUser(sessionID string) (*domain.User, error) {
	u, err := s.Sessions.User(sessionID)
	if err != nil || u == nil {
		return nil, err
	}
	token, err := s.Vault.Load(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNoToken) {
			return nil, nil
		}
		return nil, err
	}
	if backend.TokenExpired(token) {
		return nil, nil
	}
	return u, nil
}

// Token returns the live bearer token for a session.
func (s *AuthService) Token(sessionID string) (string, error) {
	token, err := s.Vault.Load(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNoToken) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}
	if backend.TokenExpired(token) {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

func (s *AuthService) Signup(ctx context.Context, req backend.SignupRequest) error {
	return s.API.Signup(ctx, req)
}

func (s *AuthService) Profile(ctx context.Context, sessionID string) (domain.User, error) {
	token, err := s.Token(sessionID)
	if err != nil {
		return domain.User{}, err
	}
	return s.API.Me(ctx, token)
}

func (s *AuthService) UpdateProfile(ctx context.Context, sessionID string, req backend.ProfileUpdate) error {
	token, err := s.Token(sessionID)
	if err != nil {
		return err
	}
	if err := s.API.UpdateMe(ctx, token, req); err != nil {
		return err
	}
	// Refresh the cached copy so the navbar shows the new name right away.
	if user, err := s.API.Me(ctx, token); err == nil {
		_ = s.Sessions.Bind(sessionID, user)
	}
	if s.Bus != nil {
		s.Bus.Publish(bus.Event{Topic: bus.TopicProfileUpdated, SessionID: sessionID})
	}
	return nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.API.ForgotPassword(ctx, email)
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	return s.API.ResetPassword(ctx, resetToken, password)
}

var _ authAPI = (*backend.Client)(nil)
