package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const pathFundApplications = "/fund-applications"

type FundApplicationService struct {
	api ports.APIClient
}

func NewFundApplicationService(api ports.APIClient) *FundApplicationService {
	return &FundApplicationService{api: api}
}

func (s *FundApplicationService) List(ctx context.Context, f ports.FundApplicationFilter) (*ports.Page[domain.FundApplication], error) {
	page, err := list[domain.FundApplication](ctx, s.api, pathFundApplications+"/my", f.Values())
	if err != nil {
		return nil, fmt.Errorf("list fund applications: %w", err)
	}
	return page, nil
}

func (s *FundApplicationService) Get(ctx context.Context, id string) (*domain.FundApplication, error) {
	var raw json.RawMessage
	if err := get(ctx, s.api, pathFundApplications+"/"+escape(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get fund application %s: %w", id, err)
	}
	return decodeWrapped[domain.FundApplication](raw, "application")
}

func (s *FundApplicationService) Create(ctx context.Context, in ports.CreateFundApplicationInput) (*domain.FundApplication, error) {
	if in.Attachment != nil {
		in.Attachment.Field = "attachment"
	}
	form := map[string]string{
		"purpose":  in.Purpose,
		"category": in.Category,
		"amount":   in.Amount.String(),
	}
	if in.Description != "" {
		form["description"] = in.Description
	}

	var raw json.RawMessage
	if err := s.api.Do(ctx, multipart(pathFundApplications, form, in.Attachment), &raw); err != nil {
		return nil, fmt.Errorf("create fund application: %w", err)
	}
	return decodeWrapped[domain.FundApplication](raw, "application")
}
