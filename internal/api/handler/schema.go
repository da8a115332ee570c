package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/kas"
)

// --- Auth ---

type loginRequest struct {
	NIM      string `json:"nim"      validate:"required_without=Email"`
	Email    string `json:"email"    validate:"required_without=NIM,omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// sessionEndedResponse tells the UI the session is gone and where to go.
type sessionEndedResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// --- User ---

type profileRequest struct {
	Name  string `json:"name"  validate:"omitempty,min=2"`
	Email string `json:"email" validate:"omitempty,email"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,nefield=CurrentPassword"`
}

// --- Cash bills ---

type payBillForm struct {
	PaymentMethod string `form:"paymentMethod" validate:"required"`
}

type billSummaryResponse struct {
	Count             int             `json:"count"`
	Amount            decimal.Decimal `json:"amount"`
	AmountFormatted   string          `json:"amountFormatted"`
	From              *time.Time      `json:"from,omitempty"`
	To                *time.Time      `json:"to,omitempty"`
	Period            string          `json:"period,omitempty"`
	Deadline          *time.Time      `json:"deadline,omitempty"`
	DeadlineFormatted string          `json:"deadlineFormatted,omitempty"`
}

// --- Fund applications ---

type fundApplicationForm struct {
	Purpose     string `form:"purpose"     validate:"required,max=200"`
	Description string `form:"description" validate:"max=2000"`
	Category    string `form:"category"    validate:"required"`
	Amount      string `form:"amount"      validate:"required,amount"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// --- Transactions ---

type transactionForm struct {
	Date        string `form:"date"        validate:"required,datetime=2006-01-02"`
	Description string `form:"description" validate:"required,max=500"`
	Type        string `form:"type"        validate:"required,oneof=income expense"`
	Amount      string `form:"amount"      validate:"required,amount"`
	Category    string `form:"category"`
}

type groupedTransactionsResponse struct {
	Groups     []kas.TransactionGroup `json:"groups"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"totalPages"`
}
