package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/galacash/gateway/internal/core/domain"
)

// LoginInput identifies a student by NIM or a treasurer by email.
type LoginInput struct {
	NIM      string `json:"nim,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// AuthService covers the backend session endpoints.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*domain.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// PasswordInput carries a password change.
type PasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserService covers the signed-in user's profile.
type UserService interface {
	Profile(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, in ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, in PasswordInput) error
	UploadAvatar(ctx context.Context, file FilePart) (*domain.User, error)
}

// DashboardService covers the student landing view.
type DashboardService interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
}

// TransactionService covers the shared ledger.
type TransactionService interface {
	List(ctx context.Context, f TransactionFilter) (*Page[domain.Transaction], error)
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	Export(ctx context.Context, f TransactionFilter) (*Blob, error)
}

// PayBillInput carries a student's payment submission.
type PayBillInput struct {
	BillID        string
	PaymentMethod string
	Proof         *FilePart
}

// CashBillService covers the student's own bills.
type CashBillService interface {
	List(ctx context.Context, f CashBillFilter) (*Page[domain.CashBill], error)
	Get(ctx context.Context, id string) (*domain.CashBill, error)
	Pay(ctx context.Context, in PayBillInput) (*domain.CashBill, error)
	CancelPayment(ctx context.Context, id string) (*domain.CashBill, error)
}

// CreateFundApplicationInput carries a new fund application.
type CreateFundApplicationInput struct {
	Purpose     string
	Description string
	Category    string
	Amount      decimal.Decimal
	Attachment  *FilePart
}

// FundApplicationService covers the student's own fund applications.
type FundApplicationService interface {
	List(ctx context.Context, f FundApplicationFilter) (*Page[domain.FundApplication], error)
	Get(ctx context.Context, id string) (*domain.FundApplication, error)
	Create(ctx context.Context, in CreateFundApplicationInput) (*domain.FundApplication, error)
}

// CreateTransactionInput carries a manual ledger entry recorded by the treasurer.
type CreateTransactionInput struct {
	Date        string
	Description string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Category    string
	Attachment  *FilePart
}

// BendaharaService covers the treasurer operations.
type BendaharaService interface {
	Dashboard(ctx context.Context) (*domain.BendaharaDashboard, error)
	FundApplications(ctx context.Context, f FundApplicationFilter) (*Page[domain.FundApplication], error)
	ApproveFundApplication(ctx context.Context, id string) (*domain.FundApplication, error)
	RejectFundApplication(ctx context.Context, id, reason string) (*domain.FundApplication, error)
	CashBills(ctx context.Context, f CashBillFilter) (*Page[domain.CashBill], error)
	ConfirmPayment(ctx context.Context, id string) (*domain.CashBill, error)
	RejectPayment(ctx context.Context, id, reason string) (*domain.CashBill, error)
	Students(ctx context.Context, f StudentFilter) (*Page[domain.Student], error)
	RekapKas(ctx context.Context, f RekapFilter) (*domain.RekapKas, error)
	ExportRekapKas(ctx context.Context, f RekapFilter) (*Blob, error)
	CreateTransaction(ctx context.Context, in CreateTransactionInput) (*domain.Transaction, error)
}
