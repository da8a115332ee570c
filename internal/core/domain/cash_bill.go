package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus represents the lifecycle state of a cash bill.
type BillStatus string

const (
	BillUnpaid               BillStatus = "belum_dibayar"
	BillAwaitingConfirmation BillStatus = "menunggu_konfirmasi"
	BillPaid                 BillStatus = "sudah_dibayar"
)

// billTransitions defines the allowed state machine transitions. Going back
// to unpaid happens on cancellation by the student or rejection by the
// treasurer; no transition skips a state.
var billTransitions = map[BillStatus][]BillStatus{
	BillUnpaid:               {BillAwaitingConfirmation},
	BillAwaitingConfirmation: {BillPaid, BillUnpaid},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	for _, allowed := range billTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CashBill is one student's dues invoice for a billing period.
type CashBill struct {
	ID              string          `json:"id"`
	BillID          string          `json:"billId"`
	Month           FlexInt         `json:"month"`
	Year            FlexInt         `json:"year"`
	Status          BillStatus      `json:"status"`
	DueDate         *time.Time      `json:"dueDate,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	PaymentProofURL string          `json:"paymentProofUrl,omitempty"`
	Student         *Student        `json:"student,omitempty"`
}

// Period returns the first day of the bill's billing month. Month is
// 1-based in the backend data; out-of-range values roll over the same way
// time.Date normalizes them.
func (b *CashBill) Period() time.Time {
	return time.Date(b.Year.Int(), time.Month(b.Month.Int()), 1, 0, 0, 0, 0, time.UTC)
}
