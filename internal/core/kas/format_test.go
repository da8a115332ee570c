package kas

import (
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func TestFormatCurrency_RoundTrip(t *testing.T) {
	for _, n := range []int64{0, 5, 1000, 1000000, 123456789} {
		formatted := FormatCurrency(decimal.NewFromInt(n))
		if !strings.HasPrefix(formatted, "Rp") {
			t.Errorf("%d: missing currency prefix in %q", n, formatted)
		}

		digits := digitsOnly(formatted)
		if len(digits) < 3 || digits[len(digits)-2:] != "00" {
			t.Fatalf("%d: expected fixed 2-decimal suffix in %q", n, formatted)
		}
		got, err := strconv.ParseInt(digits[:len(digits)-2], 10, 64)
		if err != nil || got != n {
			t.Errorf("round trip of %d through %q gave %d (%v)", n, formatted, got, err)
		}
	}
}

func TestFormatCurrency_ExactBeyondFloatPrecision(t *testing.T) {
	tests := []struct {
		in         string
		wantDigits string
		wantSuffix string
	}{
		{"12345678901234567.89", "1234567890123456789", ",89"},
		{"123456789012345678901.5", "12345678901234567890150", ",50"},
		{"0.005", "001", ",01"},
	}
	for _, tt := range tests {
		formatted := FormatCurrency(decimal.RequireFromString(tt.in))
		if got := digitsOnly(formatted); got != tt.wantDigits {
			t.Errorf("%s: digits %q, want %q (%q)", tt.in, got, tt.wantDigits, formatted)
		}
		if !strings.HasSuffix(formatted, tt.wantSuffix) {
			t.Errorf("%s: %q should end in %q", tt.in, formatted, tt.wantSuffix)
		}
	}

	if got := FormatCurrency(decimal.RequireFromString("123456789012345678901")); !strings.HasPrefix(got, "Rp 123.456.789.012") {
		t.Errorf("wide amounts keep thousand grouping: %q", got)
	}
	if got := FormatCurrency(decimal.RequireFromString("-1500.5")); !strings.HasPrefix(got, "Rp -") {
		t.Errorf("negative amounts keep their sign: %q", got)
	}
	if got := FormatCurrency(decimal.RequireFromString("-0.001")); strings.Contains(got, "-") {
		t.Errorf("amounts rounding to zero carry no sign: %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	got := FormatDate(time.Date(2024, time.August, 17, 10, 0, 0, 0, time.UTC))
	if got != "17 Agustus 2024" {
		t.Errorf("unexpected date: %q", got)
	}
}

func TestFormatPeriod(t *testing.T) {
	if got := FormatPeriod(1, 2024); got != "Januari 2024" {
		t.Errorf("unexpected period: %q", got)
	}
	if got := FormatPeriod(13, 2024); got != "13/2024" {
		t.Errorf("unexpected fallback: %q", got)
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportFilename("transaksi", time.Date(2024, time.January, 2, 23, 0, 0, 0, time.UTC))
	if got != "transaksi_2024-01-02.xlsx" {
		t.Errorf("unexpected filename: %q", got)
	}
}
