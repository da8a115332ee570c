package domain

import "github.com/shopspring/decimal"

// TransactionType distinguishes money flowing into or out of the class fund.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a ledger line, either recorded manually by the treasurer or
// generated by the backend when a bill payment or fund application settles.
//
// Date is kept as the exact string the backend sent; grouping relies on it.
type Transaction struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category,omitempty"`
	AttachmentURL string          `json:"attachmentUrl,omitempty"`
}

// DashboardSummary is the student's landing view.
type DashboardSummary struct {
	Balance            decimal.Decimal `json:"balance"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpense       decimal.Decimal `json:"totalExpense"`
	RecentTransactions []Transaction   `json:"transactions,omitempty"`
}

// PendingCounts is what a treasurer still has to review.
type PendingCounts struct {
	FundApplications int `json:"fundApplications"`
	CashBills        int `json:"cashBills"`
}

// BendaharaDashboard is the treasurer's landing view.
type BendaharaDashboard struct {
	Summary            DashboardSummary `json:"summary"`
	PendingCounts      PendingCounts    `json:"pendingCounts"`
	RecentTransactions []Transaction    `json:"recentTransactions,omitempty"`
}

// RekapMonth is one row of the treasurer's reconciliation.
type RekapMonth struct {
	Month   FlexInt         `json:"month"`
	Year    FlexInt         `json:"year"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// RekapKas is the aggregate financial reconciliation view.
type RekapKas struct {
	Summary DashboardSummary `json:"summary"`
	Months  []RekapMonth     `json:"months,omitempty"`
}
