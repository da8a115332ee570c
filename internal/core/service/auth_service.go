package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const (
	PathLogin       = "/auth/login"
	PathLogout      = "/auth/logout"
	PathRefresh     = "/auth/refresh"
	PathCurrentUser = "/auth/me"
)

// AuthService implements sign-in against the backend. The backend keeps the
// session in cookies; the API client's jar carries them.
type AuthService struct {
	api ports.APIClient
	log zerolog.Logger
}

func NewAuthService(api ports.APIClient, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, log: log}
}

type loginResponse struct {
	User *domain.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
	if (in.NIM == "" && in.Email == "") || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var raw json.RawMessage
	err := s.api.Do(ctx, ports.Request{
		Method:     http.MethodPost,
		Path:       PathLogin,
		JSON:       in,
		FromSignIn: true,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	user, err := decodeUser(raw)
	if err != nil || user.ID == "" {
		// The login payload may omit the user; /auth/me always has it.
		return s.CurrentUser(ctx)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("signed in")
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := post(ctx, s.api, PathLogout, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	var raw json.RawMessage
	if err := get(ctx, s.api, PathCurrentUser, nil, &raw); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return decodeUser(raw)
}

// decodeUser accepts both {"user": {...}} and a bare user object.
func decodeUser(raw json.RawMessage) (*domain.User, error) {
	var wrapped loginResponse
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}
