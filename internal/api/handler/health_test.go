package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("liveness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantCode   int
		wantStatus string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"all up", map[string]Check{"redis": ok, "backend": ok}, http.StatusOK, "ok"},
		{"one down", map[string]Check{"redis": down, "backend": ok}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), nil)
			if err := NewReadinessHandler(tt.checks).Readiness(c); err != nil {
				t.Fatalf("readiness: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			if len(resp.Dependencies) != len(tt.checks) {
				t.Errorf("expected %d dependencies, got %d", len(tt.checks), len(resp.Dependencies))
			}
			if tt.wantCode != http.StatusOK && resp.Dependencies["redis"].Error == "" {
				t.Error("expected the failing dependency to carry its error")
			}
		})
	}
}

func TestReadinessHandler_ChecksHonourTimeout(t *testing.T) {
	h := NewReadinessHandler(map[string]Check{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	h.timeout = 10 * time.Millisecond

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), nil)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
