package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "25", "25.00", "48.5", "1234567.89", "0.01", "-3.5", "123456789012345678901234.5678"} {
		d := decimal.RequireFromString(s)
		n, err := decimalToNumeric(d)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !n.Valid {
			t.Fatalf("%s: numeric not valid", s)
		}
		if got := numericToDecimal(n); !got.Equal(d) {
			t.Errorf("%s: round trip = %s", s, got)
		}
	}
}

func TestNumericToDecimalInvalid(t *testing.T) {
	if !numericToDecimal(pgtype.Numeric{}).IsZero() {
		t.Error("NULL numeric should map to zero")
	}
	if !numericToDecimal(pgtype.Numeric{Valid: true, NaN: true}).IsZero() {
		t.Error("NaN numeric should map to zero")
	}
}
