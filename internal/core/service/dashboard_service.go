package service

import (
	"context"
	"fmt"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const pathDashboardSummary = "/dashboard/summary"

type DashboardService struct {
	api ports.APIClient
}

func NewDashboardService(api ports.APIClient) *DashboardService {
	return &DashboardService{api: api}
}

func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	if err := get(ctx, s.api, pathDashboardSummary, nil, &out); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &out, nil
}
