package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

const pathTransactions = "/transactions"

type TransactionService struct {
	api ports.APIClient
}

func NewTransactionService(api ports.APIClient) *TransactionService {
	return &TransactionService{api: api}
}

func (s *TransactionService) List(ctx context.Context, f ports.TransactionFilter) (*ports.Page[domain.Transaction], error) {
	page, err := list[domain.Transaction](ctx, s.api, pathTransactions, f.Values())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return page, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := get(ctx, s.api, pathTransactions+"/"+escape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return &out, nil
}

// Export downloads the filtered ledger as a spreadsheet.
func (s *TransactionService) Export(ctx context.Context, f ports.TransactionFilter) (*ports.Blob, error) {
	blob, err := s.api.Download(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   pathTransactions + "/export",
		Query:  f.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	return blob, nil
}
