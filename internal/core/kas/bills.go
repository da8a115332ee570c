// Package kas computes the derived views over class dues and the ledger:
// outstanding totals, the next payment deadline, and date grouping.
package kas

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/galacash/gateway/internal/core/domain"
)

// excludedMonths are semester breaks; no payment deadline falls in them.
var excludedMonths = map[time.Month]struct{}{
	time.January:  {},
	time.February: {},
	time.July:     {},
	time.August:   {},
}

// BillTotal aggregates a set of outstanding bills.
type BillTotal struct {
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`       // earliest billing period
	LatestDate time.Time       `json:"latestDate"` // latest billing period
}

// TotalBills sums the bills and finds their earliest and latest billing
// periods in a single pass. It returns nil for an empty list.
func TotalBills(bills []domain.CashBill) *BillTotal {
	if len(bills) == 0 {
		return nil
	}

	total := &BillTotal{Amount: decimal.Zero}
	for i := range bills {
		period := bills[i].Period()
		total.Amount = total.Amount.Add(bills[i].TotalAmount)
		if i == 0 || period.Before(total.Date) {
			total.Date = period
		}
		if i == 0 || period.After(total.LatestDate) {
			total.LatestDate = period
		}
	}
	return total
}

// Deadline returns the first day of the month after the latest billing
// period, moved forward past semester-break months. It returns nil for nil.
func Deadline(total *BillTotal) *time.Time {
	if total == nil {
		return nil
	}
	latest := total.LatestDate
	d := time.Date(latest.Year(), latest.Month()+1, 1, 0, 0, 0, 0, latest.Location())
	for {
		if _, excluded := excludedMonths[d.Month()]; !excluded {
			break
		}
		d = d.AddDate(0, 1, 0)
	}
	return &d
}

// Outstanding filters the bills a student still has to pay.
func Outstanding(bills []domain.CashBill) []domain.CashBill {
	out := make([]domain.CashBill, 0, len(bills))
	for _, b := range bills {
		if b.Status == domain.BillUnpaid {
			out = append(out, b)
		}
	}
	return out
}
