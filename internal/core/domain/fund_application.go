package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus represents the lifecycle state of a fund application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Approved and rejected are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending: {ApplicationApproved, ApplicationRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Applicant is the student who submitted a fund application.
type Applicant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	NIM  string `json:"nim,omitempty"`
}

// FundApplication ("aju dana") is a student's request for funding.
type FundApplication struct {
	ID              string            `json:"id"`
	Purpose         string            `json:"purpose"`
	Description     string            `json:"description,omitempty"`
	Category        string            `json:"category"`
	Amount          decimal.Decimal   `json:"amount"`
	Status          ApplicationStatus `json:"status"`
	Applicant       *Applicant        `json:"applicant,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	AttachmentURL   string            `json:"attachmentUrl,omitempty"`
	CreatedAt       *time.Time        `json:"createdAt,omitempty"`
}
