package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/api/middleware"
	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/core/service"
	"github.com/galacash/gateway/internal/query"
	"github.com/galacash/gateway/internal/session"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// ---------------------------------------------------------------------------
// Sessions and context
// ---------------------------------------------------------------------------

func newTestSession(id string, bundle *service.Bundle) *session.Session {
	return &session.Session{
		ID:        id,
		CreatedAt: time.Now(),
		Services:  bundle,
		Queries:   query.NewClient(id, query.NewMemoryStore(), query.WithRetryPolicy(query.RetryPolicy{})),
	}
}

type stubSessions struct {
	sess    *session.Session
	initErr error
	cleared []string
}

func (s *stubSessions) Init(_ context.Context) (*session.Session, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	return s.sess, nil
}

func (s *stubSessions) Clear(_ context.Context, id string) {
	s.cleared = append(s.cleared, id)
}

// newContext builds an echo context for req with s injected the way the
// Auth middleware does it. s may be nil for public routes.
func newContext(req *http.Request, s *session.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if s != nil {
		c.Set(middleware.SessionKey, s)
		c.Set(middleware.RoleKey, s.Role())
	}
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// multipartRequest encodes fields and, when fileField is set, one file.
func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func seedBill(t *testing.T, s *session.Session, bill *domain.CashBill) {
	t.Helper()
	if err := query.Set(context.Background(), s.Queries, query.DetailKey(query.NSCashBills, bill.ID), bill); err != nil {
		t.Fatalf("seed bill: %v", err)
	}
}

func seedApplication(t *testing.T, s *session.Session, fa *domain.FundApplication) {
	t.Helper()
	if err := query.Set(context.Background(), s.Queries, query.DetailKey(query.NSFundApplications, fa.ID), fa); err != nil {
		t.Fatalf("seed application: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Service stubs. Unused interface methods panic through the nil embed.
// ---------------------------------------------------------------------------

type stubAuth struct {
	ports.AuthService
	loginIn   ports.LoginInput
	user      *domain.User
	err       error
	logoutErr error
	logouts   int
}

func (s *stubAuth) Login(_ context.Context, in ports.LoginInput) (*domain.User, error) {
	s.loginIn = in
	return s.user, s.err
}

func (s *stubAuth) Logout(_ context.Context) error {
	s.logouts++
	return s.logoutErr
}

func (s *stubAuth) CurrentUser(_ context.Context) (*domain.User, error) {
	return s.user, s.err
}

type stubCashBills struct {
	ports.CashBillService
	list    []domain.CashBill
	pages   [][]domain.CashBill
	listF   ports.CashBillFilter
	lists   int
	payIn   ports.PayBillInput
	pays    int
	cancels int
	result  *domain.CashBill
}

func (s *stubCashBills) List(_ context.Context, f ports.CashBillFilter) (*ports.Page[domain.CashBill], error) {
	s.listF = f
	s.lists++
	if len(s.pages) > 0 {
		var data []domain.CashBill
		if f.Page >= 1 && f.Page <= len(s.pages) {
			data = s.pages[f.Page-1]
		}
		return &ports.Page[domain.CashBill]{Data: data, Page: f.Page, Limit: f.Limit, TotalPages: len(s.pages)}, nil
	}
	return &ports.Page[domain.CashBill]{Data: s.list, Page: 1, Limit: f.Limit, Total: int64(len(s.list)), TotalPages: 1}, nil
}

func (s *stubCashBills) Get(_ context.Context, id string) (*domain.CashBill, error) {
	return &domain.CashBill{ID: id, Status: domain.BillUnpaid}, nil
}

func (s *stubCashBills) Pay(_ context.Context, in ports.PayBillInput) (*domain.CashBill, error) {
	s.pays++
	s.payIn = in
	return s.result, nil
}

func (s *stubCashBills) CancelPayment(_ context.Context, id string) (*domain.CashBill, error) {
	s.cancels++
	return s.result, nil
}

type stubUser struct {
	ports.UserService
	updated   *domain.User
	err       error
	passwords int
	avatar    ports.FilePart
}

func (s *stubUser) UpdateProfile(_ context.Context, in ports.ProfileInput) (*domain.User, error) {
	return s.updated, s.err
}

func (s *stubUser) ChangePassword(_ context.Context, in ports.PasswordInput) error {
	s.passwords++
	return s.err
}

func (s *stubUser) UploadAvatar(_ context.Context, f ports.FilePart) (*domain.User, error) {
	s.avatar = f
	return s.updated, s.err
}

type stubBendahara struct {
	ports.BendaharaService
	approves int
	rejects  []string
	created  ports.CreateTransactionInput
	export   *ports.Blob
	rekapF   ports.RekapFilter
}

func (s *stubBendahara) ApproveFundApplication(_ context.Context, id string) (*domain.FundApplication, error) {
	s.approves++
	return &domain.FundApplication{ID: id, Status: domain.ApplicationApproved}, nil
}

func (s *stubBendahara) RejectFundApplication(_ context.Context, id, reason string) (*domain.FundApplication, error) {
	s.rejects = append(s.rejects, reason)
	return &domain.FundApplication{ID: id, Status: domain.ApplicationRejected}, nil
}

func (s *stubBendahara) RejectPayment(_ context.Context, id, reason string) (*domain.CashBill, error) {
	s.rejects = append(s.rejects, reason)
	return &domain.CashBill{ID: id, Status: domain.BillUnpaid}, nil
}

func (s *stubBendahara) CreateTransaction(_ context.Context, in ports.CreateTransactionInput) (*domain.Transaction, error) {
	s.created = in
	return &domain.Transaction{ID: "t1", Date: in.Date, Type: in.Type, Amount: in.Amount}, nil
}

func (s *stubBendahara) ExportRekapKas(_ context.Context, f ports.RekapFilter) (*ports.Blob, error) {
	s.rekapF = f
	return s.export, nil
}

type stubTokens struct {
	sessionID string
}

func (s *stubTokens) Issue(sessionID string, _ *domain.User) (string, time.Time, error) {
	s.sessionID = sessionID
	return "signed-token", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}
