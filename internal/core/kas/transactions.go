package kas

import (
	"slices"
	"strings"
	"time"

	"github.com/galacash/gateway/internal/core/domain"
)

// TransactionGroup holds the transactions sharing one date string.
type TransactionGroup struct {
	Date         string               `json:"date"`
	Transactions []domain.Transaction `json:"transactions"`
}

// GroupTransactionsByDate buckets transactions by their exact date string and
// returns the buckets most recent first. Items keep their relative order.
func GroupTransactionsByDate(txs []domain.Transaction) []TransactionGroup {
	index := make(map[string]int)
	groups := make([]TransactionGroup, 0)
	for _, tx := range txs {
		i, ok := index[tx.Date]
		if !ok {
			i = len(groups)
			index[tx.Date] = i
			groups = append(groups, TransactionGroup{Date: tx.Date})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	slices.SortStableFunc(groups, func(a, b TransactionGroup) int {
		return compareDates(b.Date, a.Date)
	})
	return groups
}

var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compareDates orders parseable dates chronologically and falls back to a
// lexical comparison otherwise.
func compareDates(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if okA && okB {
		return ta.Compare(tb)
	}
	return strings.Compare(a, b)
}
