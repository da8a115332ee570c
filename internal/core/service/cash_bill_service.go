package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const pathCashBills = "/cash-bills"

type CashBillService struct {
	api ports.APIClient
}

func NewCashBillService(api ports.APIClient) *CashBillService {
	return &CashBillService{api: api}
}

func (s *CashBillService) List(ctx context.Context, f ports.CashBillFilter) (*ports.Page[domain.CashBill], error) {
	page, err := list[domain.CashBill](ctx, s.api, pathCashBills+"/my", f.Values())
	if err != nil {
		return nil, fmt.Errorf("list cash bills: %w", err)
	}
	return page, nil
}

func (s *CashBillService) Get(ctx context.Context, id string) (*domain.CashBill, error) {
	var raw json.RawMessage
	if err := get(ctx, s.api, pathCashBills+"/"+escape(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get cash bill %s: %w", id, err)
	}
	return decodeWrapped[domain.CashBill](raw, "bill")
}

// Pay submits a payment for review. The proof file is optional for cash
// payments handed to the treasurer in person.
func (s *CashBillService) Pay(ctx context.Context, in ports.PayBillInput) (*domain.CashBill, error) {
	if in.Proof != nil {
		in.Proof.Field = "paymentProof"
	}
	form := map[string]string{"paymentMethod": in.PaymentMethod}

	var raw json.RawMessage
	if err := s.api.Do(ctx, multipart(pathCashBills+"/"+escape(in.BillID)+"/pay", form, in.Proof), &raw); err != nil {
		return nil, fmt.Errorf("pay cash bill %s: %w", in.BillID, err)
	}
	return decodeWrapped[domain.CashBill](raw, "bill")
}

func (s *CashBillService) CancelPayment(ctx context.Context, id string) (*domain.CashBill, error) {
	var raw json.RawMessage
	if err := post(ctx, s.api, pathCashBills+"/"+escape(id)+"/cancel-payment", nil, &raw); err != nil {
		return nil, fmt.Errorf("cancel payment %s: %w", id, err)
	}
	return decodeWrapped[domain.CashBill](raw, "bill")
}

// decodeWrapped accepts {"<key>": {...}} as well as a bare object. An empty
// payload yields a zero value rather than an error since several write
// endpoints answer with data: null.
func decodeWrapped[T any](raw json.RawMessage, key string) (*T, error) {
	out := new(T)
	if len(raw) == 0 || isNull(raw) {
		return out, nil
	}
	var wrapped map[string]json.RawMessage
	if json.Unmarshal(raw, &wrapped) == nil {
		if inner, ok := wrapped[key]; ok && !isNull(inner) {
			if err := json.Unmarshal(inner, out); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			return out, nil
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}
