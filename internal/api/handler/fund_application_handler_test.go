package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/core/service"
)

type stubFundApplications struct {
	ports.FundApplicationService
	created ports.CreateFundApplicationInput
	calls   int
}

func (s *stubFundApplications) Create(_ context.Context, in ports.CreateFundApplicationInput) (*domain.FundApplication, error) {
	s.calls++
	s.created = in
	return &domain.FundApplication{ID: "fa1", Status: domain.ApplicationPending, Amount: in.Amount}, nil
}

func TestFundApplicationHandler_Create(t *testing.T) {
	fas := &stubFundApplications{}
	sess := newTestSession("s1", &service.Bundle{FundApplications: fas})
	h := NewFundApplicationHandler(DefaultUploadLimit)

	fields := map[string]string{"purpose": "Lomba debat", "category": "kegiatan", "amount": "150000", "description": "Biaya pendaftaran"}
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	c, rec := newContext(multipartRequest(t, "/v1/fund-applications", fields, "attachment", "proposal.pdf", pdf), sess)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if fas.created.Purpose != "Lomba debat" || !fas.created.Amount.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("unexpected input: %+v", fas.created)
	}
	if fas.created.Attachment == nil || fas.created.Attachment.ContentType != "application/pdf" {
		t.Errorf("expected pdf attachment, got %+v", fas.created.Attachment)
	}
}

func TestFundApplicationHandler_Create_AttachmentOptional(t *testing.T) {
	fas := &stubFundApplications{}
	sess := newTestSession("s1", &service.Bundle{FundApplications: fas})

	fields := map[string]string{"purpose": "Kas kelas", "category": "lainnya", "amount": "5000"}
	c, _ := newContext(multipartRequest(t, "/v1/fund-applications", fields, "", "", nil), sess)
	if err := NewFundApplicationHandler(0).Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if fas.calls != 1 || fas.created.Attachment != nil {
		t.Errorf("unexpected call: %d %+v", fas.calls, fas.created.Attachment)
	}
}

func TestFundApplicationHandler_Create_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"0", "-10", "abc", ""} {
		t.Run(amount, func(t *testing.T) {
			fas := &stubFundApplications{}
			sess := newTestSession("s1", &service.Bundle{FundApplications: fas})
			fields := map[string]string{"purpose": "x", "category": "y", "amount": amount}

			c, _ := newContext(multipartRequest(t, "/v1/fund-applications", fields, "", "", nil), sess)
			if got := httpStatus(t, NewFundApplicationHandler(0).Create(c)); got != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", got)
			}
			if fas.calls != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}
