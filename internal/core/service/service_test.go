package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub API client: records requests and replays canned envelope payloads.
// ---------------------------------------------------------------------------

type stubAPI struct {
	responses map[string]string // "METHOD path" -> data payload
	err       error
	requests  []ports.Request
}

func newStubAPI() *stubAPI {
	return &stubAPI{responses: make(map[string]string)}
}

func (a *stubAPI) Do(_ context.Context, req ports.Request, out any) error {
	a.requests = append(a.requests, req)
	if a.err != nil {
		return a.err
	}
	payload, ok := a.responses[req.Method+" "+req.Path]
	if !ok || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(payload), out)
}

func (a *stubAPI) Download(_ context.Context, req ports.Request) (*ports.Blob, error) {
	a.requests = append(a.requests, req)
	if a.err != nil {
		return nil, a.err
	}
	return &ports.Blob{ContentType: "application/octet-stream", Data: []byte("xlsx")}, nil
}

func (a *stubAPI) last(t *testing.T) ports.Request {
	t.Helper()
	if len(a.requests) == 0 {
		t.Fatal("no request issued")
	}
	return a.requests[len(a.requests)-1]
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestTransactionService_List_TranslatesFilter(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /transactions"] = `{"transactions":[{"id":"t1","date":"2024-01-02","type":"income","amount":5000}],"pagination":{"total":1,"page":1,"limit":10}}`
	svc := NewTransactionService(api)

	page, err := svc.List(context.Background(), ports.TransactionFilter{
		Paging: ports.Paging{Page: 1, Limit: 10},
		Type:   "income",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := api.last(t)
	if got := req.Query.Encode(); got != "limit=10&page=1&type=income" {
		t.Errorf("unexpected query: %s", got)
	}
	if len(page.Data) != 1 || !page.Data[0].Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestTransactionService_List_PropagatesError(t *testing.T) {
	api := newStubAPI()
	api.err = &domain.APIError{Code: domain.CodeAPIError, StatusCode: http.StatusInternalServerError, Message: "boom"}
	svc := NewTransactionService(api)

	_, err := svc.List(context.Background(), ports.TransactionFilter{})

	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected wrapped APIError, got: %v", err)
	}
}

func TestCashBillService_Pay_SendsMultipart(t *testing.T) {
	api := newStubAPI()
	api.responses["POST /cash-bills/b1/pay"] = `{"bill":{"id":"b1","status":"menunggu_konfirmasi","month":"3","year":2024}}`
	svc := NewCashBillService(api)

	bill, err := svc.Pay(context.Background(), ports.PayBillInput{
		BillID:        "b1",
		PaymentMethod: "transfer",
		Proof:         &ports.FilePart{Filename: "proof.png", Content: strings.NewReader("png")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := api.last(t)
	if req.Path != "/cash-bills/b1/pay" || req.Method != http.MethodPost {
		t.Errorf("unexpected request: %s %s", req.Method, req.Path)
	}
	if req.File == nil || req.File.Field != "paymentProof" {
		t.Errorf("expected paymentProof file field, got %+v", req.File)
	}
	if req.Form["paymentMethod"] != "transfer" {
		t.Errorf("expected paymentMethod form field, got %+v", req.Form)
	}
	if bill.Status != domain.BillAwaitingConfirmation || bill.Month != 3 {
		t.Errorf("unexpected bill: %+v", bill)
	}
}

func TestCashBillService_Get_EscapesID(t *testing.T) {
	api := newStubAPI()
	svc := NewCashBillService(api)

	if _, err := svc.Get(context.Background(), "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.last(t).Path; got != "/cash-bills/a%2Fb" {
		t.Errorf("unexpected path: %s", got)
	}
}

func TestCashBillService_Get_UnwrapsBill(t *testing.T) {
	api := newStubAPI()
	api.responses["GET /cash-bills/b1"] = `{"bill":{"id":"b1","status":"belum_dibayar","month":"1","year":"2024","totalAmount":"30000"}}`
	svc := NewCashBillService(api)

	bill, err := svc.Get(context.Background(), "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bill.Month != 1 || bill.Year != 2024 || bill.Status != domain.BillUnpaid {
		t.Errorf("unexpected bill: %+v", bill)
	}
	if !bill.TotalAmount.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("unexpected amount: %s", bill.TotalAmount)
	}
}

func TestBendaharaService_RejectFundApplication_SendsReason(t *testing.T) {
	api := newStubAPI()
	api.responses["POST /bendahara/fund-applications/fa1/reject"] = `{"id":"fa1","status":"rejected","rejectionReason":"no receipt"}`
	svc := NewBendaharaService(api)

	app, err := svc.RejectFundApplication(context.Background(), "fa1", "no receipt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, ok := api.last(t).JSON.(rejectionBody)
	if !ok || body.RejectionReason != "no receipt" {
		t.Errorf("unexpected body: %#v", api.last(t).JSON)
	}
	if app.Status != domain.ApplicationRejected {
		t.Errorf("unexpected status: %s", app.Status)
	}
}

func TestBendaharaService_CreateTransaction_FormFields(t *testing.T) {
	api := newStubAPI()
	svc := NewBendaharaService(api)

	_, err := svc.CreateTransaction(context.Background(), ports.CreateTransactionInput{
		Date:        "2024-02-01",
		Description: "Fotokopi",
		Type:        domain.TransactionExpense,
		Amount:      decimal.RequireFromString("15000.50"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := api.last(t)
	if req.Form["amount"] != "15000.5" || req.Form["type"] != "expense" {
		t.Errorf("unexpected form: %+v", req.Form)
	}
	if _, ok := req.Form["category"]; ok {
		t.Errorf("empty category must be omitted")
	}
	if req.File != nil {
		t.Errorf("no attachment expected")
	}
}

func TestAuthService_Login_RequiresCredentials(t *testing.T) {
	svc := NewAuthService(newStubAPI(), zerolog.Nop())

	_, err := svc.Login(context.Background(), ports.LoginInput{NIM: "123"})

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Login_MarksSignInFlow(t *testing.T) {
	api := newStubAPI()
	api.responses["POST /auth/login"] = `{"user":{"id":"u1","name":"Ani","role":"user"}}`
	svc := NewAuthService(api, zerolog.Nop())

	user, err := svc.Login(context.Background(), ports.LoginInput{NIM: "123", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("unexpected user: %+v", user)
	}
	if !api.last(t).FromSignIn {
		t.Errorf("login must be flagged as sign-in flow")
	}
}

func TestAuthService_Login_FallsBackToCurrentUser(t *testing.T) {
	api := newStubAPI()
	api.responses["POST /auth/login"] = `{"message":"ok"}`
	api.responses["GET /auth/me"] = `{"id":"u2","name":"Budi","role":"bendahara"}`
	svc := NewAuthService(api, zerolog.Nop())

	user, err := svc.Login(context.Background(), ports.LoginInput{Email: "b@x.id", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u2" || !user.IsBendahara() {
		t.Errorf("unexpected user: %+v", user)
	}
}
