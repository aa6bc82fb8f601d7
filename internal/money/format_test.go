package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatUSD(t *testing.T) {
	got := FormatUSD(decimal.RequireFromString("1234.561"))
	if !strings.Contains(got, "1,234.56") {
		t.Fatalf("unexpected USD format: %q", got)
	}
}

func TestFormatVND(t *testing.T) {
	got := FormatVND(decimal.RequireFromString("25400000.4"))
	if !strings.Contains(got, "25,400,000") {
		t.Fatalf("unexpected VND format: %q", got)
	}
	if strings.Contains(got, ".") {
		t.Fatalf("VND must have no minor unit: %q", got)
	}
}
