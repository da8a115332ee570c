package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const pathBendahara = "/bendahara"

// BendaharaService implements the treasurer operations.
type BendaharaService struct {
	api ports.APIClient
}

func NewBendaharaService(api ports.APIClient) *BendaharaService {
	return &BendaharaService{api: api}
}

func (s *BendaharaService) Dashboard(ctx context.Context) (*domain.BendaharaDashboard, error) {
	var out domain.BendaharaDashboard
	if err := get(ctx, s.api, pathBendahara+"/dashboard", nil, &out); err != nil {
		return nil, fmt.Errorf("bendahara dashboard: %w", err)
	}
	return &out, nil
}

func (s *BendaharaService) FundApplications(ctx context.Context, f ports.FundApplicationFilter) (*ports.Page[domain.FundApplication], error) {
	page, err := list[domain.FundApplication](ctx, s.api, pathBendahara+"/fund-applications", f.Values())
	if err != nil {
		return nil, fmt.Errorf("list fund applications for review: %w", err)
	}
	return page, nil
}

func (s *BendaharaService) ApproveFundApplication(ctx context.Context, id string) (*domain.FundApplication, error) {
	var raw json.RawMessage
	if err := post(ctx, s.api, pathBendahara+"/fund-applications/"+escape(id)+"/approve", nil, &raw); err != nil {
		return nil, fmt.Errorf("approve fund application %s: %w", id, err)
	}
	return decodeWrapped[domain.FundApplication](raw, "application")
}

type rejectionBody struct {
	RejectionReason string `json:"rejectionReason"`
}

func (s *BendaharaService) RejectFundApplication(ctx context.Context, id, reason string) (*domain.FundApplication, error) {
	var raw json.RawMessage
	if err := post(ctx, s.api, pathBendahara+"/fund-applications/"+escape(id)+"/reject", rejectionBody{reason}, &raw); err != nil {
		return nil, fmt.Errorf("reject fund application %s: %w", id, err)
	}
	return decodeWrapped[domain.FundApplication](raw, "application")
}

func (s *BendaharaService) CashBills(ctx context.Context, f ports.CashBillFilter) (*ports.Page[domain.CashBill], error) {
	page, err := list[domain.CashBill](ctx, s.api, pathBendahara+"/cash-bills", f.Values())
	if err != nil {
		return nil, fmt.Errorf("list cash bills for review: %w", err)
	}
	return page, nil
}

func (s *BendaharaService) ConfirmPayment(ctx context.Context, id string) (*domain.CashBill, error) {
	var raw json.RawMessage
	if err := post(ctx, s.api, pathBendahara+"/cash-bills/"+escape(id)+"/confirm-payment", nil, &raw); err != nil {
		return nil, fmt.Errorf("confirm payment %s: %w", id, err)
	}
	return decodeWrapped[domain.CashBill](raw, "bill")
}

func (s *BendaharaService) RejectPayment(ctx context.Context, id, reason string) (*domain.CashBill, error) {
	var raw json.RawMessage
	if err := post(ctx, s.api, pathBendahara+"/cash-bills/"+escape(id)+"/reject-payment", rejectionBody{reason}, &raw); err != nil {
		return nil, fmt.Errorf("reject payment %s: %w", id, err)
	}
	return decodeWrapped[domain.CashBill](raw, "bill")
}

func (s *BendaharaService) Students(ctx context.Context, f ports.StudentFilter) (*ports.Page[domain.Student], error) {
	page, err := list[domain.Student](ctx, s.api, pathBendahara+"/students", f.Values())
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return page, nil
}

func (s *BendaharaService) RekapKas(ctx context.Context, f ports.RekapFilter) (*domain.RekapKas, error) {
	var out domain.RekapKas
	if err := get(ctx, s.api, pathBendahara+"/rekap-kas", f.Values(), &out); err != nil {
		return nil, fmt.Errorf("rekap kas: %w", err)
	}
	return &out, nil
}

func (s *BendaharaService) ExportRekapKas(ctx context.Context, f ports.RekapFilter) (*ports.Blob, error) {
	blob, err := s.api.Download(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   pathBendahara + "/rekap-kas/export",
		Query:  f.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("export rekap kas: %w", err)
	}
	return blob, nil
}

func (s *BendaharaService) CreateTransaction(ctx context.Context, in ports.CreateTransactionInput) (*domain.Transaction, error) {
	if in.Attachment != nil {
		in.Attachment.Field = "attachment"
	}
	form := map[string]string{
		"date":        in.Date,
		"description": in.Description,
		"type":        string(in.Type),
		"amount":      in.Amount.String(),
	}
	if in.Category != "" {
		form["category"] = in.Category
	}

	var raw json.RawMessage
	if err := s.api.Do(ctx, multipart(pathBendahara+"/transactions", form, in.Attachment), &raw); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return decodeWrapped[domain.Transaction](raw, "transaction")
}
