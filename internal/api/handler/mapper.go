package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/kas"
	"github.com/galacash/gateway/internal/core/ports"
)

func toBillSummary(bills []domain.CashBill) billSummaryResponse {
	outstanding := kas.Outstanding(bills)
	total := kas.TotalBills(outstanding)
	if total == nil {
		return billSummaryResponse{Amount: decimal.Zero, AmountFormatted: kas.FormatCurrency(decimal.Zero)}
	}

	from, to := total.Date, total.LatestDate
	period := kas.FormatPeriod(int(from.Month()), from.Year())
	if !from.Equal(to) {
		period += " - " + kas.FormatPeriod(int(to.Month()), to.Year())
	}
	resp := billSummaryResponse{
		Count:           len(outstanding),
		Amount:          total.Amount,
		AmountFormatted: kas.FormatCurrency(total.Amount),
		From:            &from,
		To:              &to,
		Period:          period,
	}
	if d := kas.Deadline(total); d != nil {
		resp.Deadline = d
		resp.DeadlineFormatted = kas.FormatDate(*d)
	}
	return resp
}

func toGrouped(page *ports.Page[domain.Transaction]) groupedTransactionsResponse {
	return groupedTransactionsResponse{
		Groups:     kas.GroupTransactionsByDate(page.Data),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

func toFundApplicationInput(f fundApplicationForm, attachment *ports.FilePart) ports.CreateFundApplicationInput {
	return ports.CreateFundApplicationInput{
		Purpose:     strings.TrimSpace(f.Purpose),
		Description: strings.TrimSpace(f.Description),
		Category:    f.Category,
		Amount:      decimal.RequireFromString(strings.TrimSpace(f.Amount)),
		Attachment:  attachment,
	}
}

func toTransactionInput(f transactionForm, attachment *ports.FilePart) ports.CreateTransactionInput {
	return ports.CreateTransactionInput{
		Date:        f.Date,
		Description: strings.TrimSpace(f.Description),
		Type:        domain.TransactionType(f.Type),
		Amount:      decimal.RequireFromString(strings.TrimSpace(f.Amount)),
		Category:    f.Category,
		Attachment:  attachment,
	}
}
