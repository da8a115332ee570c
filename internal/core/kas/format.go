package kas

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Indonesian)

// monthNames are the Indonesian month names; x/text carries no calendar names.
var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Indonesian separators, used where the printer cannot take the value.
const (
	groupSep   = "."
	decimalSep = ","
)

// FormatCurrency renders an amount as Indonesian rupiah with two decimals,
// e.g. "Rp 1.000.000,00". The digits come from the decimal itself, never
// from a float.
func FormatCurrency(amount decimal.Decimal) string {
	whole, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return "Rp " + sign + groupWhole(whole) + decimalSep + frac
}

func groupWhole(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return printer.Sprint(number.Decimal(n))
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(groupSep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatDate renders t as "2 Januari 2024".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// FormatPeriod renders a 1-based billing month as "Januari 2024".
func FormatPeriod(month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// ExportFilename names a downloaded spreadsheet, e.g. "rekap_kas_2024-01-02.xlsx".
func ExportFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, t.Format(time.DateOnly))
}
