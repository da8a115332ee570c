package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/api/handler"
	"github.com/galacash/gateway/internal/api/middleware"
	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/query"
	"github.com/galacash/gateway/internal/session"
)

const testSecret = "router-secret"

type memorySessions struct {
	byID map[string]*session.Session
}

func (m *memorySessions) Init(context.Context) (*session.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (m *memorySessions) Clear(_ context.Context, id string) { delete(m.byID, id) }

func (m *memorySessions) Get(_ context.Context, id string) (*session.Session, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memorySessions) {
	t.Helper()
	sessions := &memorySessions{byID: map[string]*session.Session{}}
	e := NewRouter(Deps{
		Sessions:    sessions,
		Tokens:      middleware.NewTokens(testSecret, time.Hour),
		Checks:      map[string]handler.Check{},
		JWTSecret:   testSecret,
		CORSOrigins: []string{"*"},
		Registerer:  prometheus.NewRegistry(),
		Log:         zerolog.Nop(),
	})
	return e, sessions
}

func signIn(t *testing.T, sessions *memorySessions, id, role string) string {
	t.Helper()
	user := &domain.User{ID: "u-" + id, Role: role}
	s := &session.Session{ID: id, Queries: query.NewClient(id, query.NewMemoryStore())}
	s.SetUser(context.Background(), user)
	sessions.byID[id] = s

	token, _, err := middleware.NewTokens(testSecret, time.Hour).Issue(id, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func do(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthIsPublic(t *testing.T) {
	h, _ := newTestRouter(t)
	if rec := do(h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, path := range []string{"/v1/dashboard", "/v1/cash-bills", "/v1/user/profile", "/v1/bendahara/dashboard"} {
		if rec := do(h, http.MethodGet, path, ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouter_StudentCannotReachTreasurerRoutes(t *testing.T) {
	h, sessions := newTestRouter(t)
	token := signIn(t, sessions, "s1", domain.RoleStudent)

	for _, path := range []string{"/v1/bendahara/dashboard", "/v1/bendahara/cash-bills", "/v1/bendahara/rekap-kas"} {
		if rec := do(h, http.MethodGet, path, token); rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", path, rec.Code)
		}
	}
	if rec := do(h, http.MethodPost, "/v1/bendahara/fund-applications/fa1/approve", token); rec.Code != http.StatusForbidden {
		t.Errorf("approve: expected 403, got %d", rec.Code)
	}
}

func TestRouter_ClearedSessionRedirectsToSignIn(t *testing.T) {
	h, sessions := newTestRouter(t)
	token := signIn(t, sessions, "s1", domain.RoleStudent)
	sessions.Clear(context.Background(), "s1")

	rec := do(h, http.MethodGet, "/v1/dashboard", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != domain.CodeSessionExpired || body.Redirect != handler.SignInPath {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestRouter_LoginValidatesBeforeCreatingSession(t *testing.T) {
	h, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestRouter_MetricsExposed(t *testing.T) {
	h, _ := newTestRouter(t)
	if rec := do(h, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_UploadRoutesCapBodySize(t *testing.T) {
	h, sessions := newTestRouter(t)
	token := signIn(t, sessions, "s1", domain.RoleStudent)
	oversize := bytes.Repeat([]byte("a"), int(handler.DefaultUploadLimit+uploadFormOverhead+1))

	for _, path := range []string{"/v1/user/avatar", "/v1/cash-bills/b1/pay", "/v1/fund-applications"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(oversize))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("%s: expected 413, got %d", path, rec.Code)
		}
	}
}
