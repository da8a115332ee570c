package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const (
	pathProfile  = "/user/profile"
	pathPassword = "/user/password"
	pathAvatar   = "/user/avatar"
)

type UserService struct {
	api ports.APIClient
}

func NewUserService(api ports.APIClient) *UserService {
	return &UserService{api: api}
}

func (s *UserService) Profile(ctx context.Context) (*domain.User, error) {
	var raw json.RawMessage
	if err := get(ctx, s.api, pathProfile, nil, &raw); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return decodeUser(raw)
}

func (s *UserService) UpdateProfile(ctx context.Context, in ports.ProfileInput) (*domain.User, error) {
	var raw json.RawMessage
	if err := put(ctx, s.api, pathProfile, in, &raw); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return decodeUser(raw)
}

func (s *UserService) ChangePassword(ctx context.Context, in ports.PasswordInput) error {
	if err := put(ctx, s.api, pathPassword, in, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *UserService) UploadAvatar(ctx context.Context, file ports.FilePart) (*domain.User, error) {
	file.Field = "avatar"
	var raw json.RawMessage
	if err := s.api.Do(ctx, multipart(pathAvatar, nil, &file), &raw); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	return decodeUser(raw)
}
