package http

import (
	"errors"
	"testing"
)

func TestISO4217Validation(t *testing.T) {
	type P struct {
		Currency string `validate:"iso4217"`
	}
	cv := NewValidator()

	for _, s := range []string{"CDF", "USD", "EUR"} {
		if err := cv.Validate(P{Currency: s}); err != nil {
			t.Fatalf("expected valid iso4217 for %q, got err: %v", s, err)
		}
	}
	for _, s := range []string{"", "cdf", "CD", "CDFX", "C$F"} {
		err := cv.Validate(P{Currency: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "Currency", "ISO-4217") {
			t.Fatalf("expected ISO-4217 message for %q, got: %+v", s, fe)
		}
	}
}

func TestAmountValidation(t *testing.T) {
	type P struct {
		Amount string `validate:"amount"`
	}
	cv := NewValidator()

	for _, s := range []string{"0", "2500000", "2500000.50", "-120.5"} {
		if err := cv.Validate(P{Amount: s}); err != nil {
			t.Fatalf("expected amount OK for %q, got %v", s, err)
		}
	}
	for _, s := range []string{"", "12,5", "1e6", "abc", "12.", ".5"} {
		err := cv.Validate(P{Amount: s})
		if err == nil {
			t.Fatalf("expected amount error for %q", s)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "Amount", "decimal amount") {
			t.Fatalf("expected 'decimal amount' for %q, got %+v", s, fe)
		}
	}
}

func TestParseAmount(t *testing.T) {
	if got := parseAmount("2500000.50"); got.String() != "2500000.5" {
		t.Errorf("parseAmount = %s", got)
	}
	if got := parseAmount("garbage"); !got.IsZero() {
		t.Errorf("parseAmount(garbage) = %s, want 0", got)
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name     string `validate:"required"`
		Duration int    `validate:"gte=3"`
		Kind     string `validate:"oneof=bank mobilemoney"`
	}
	cv := NewValidator()

	err := cv.Validate(P{
		Name:     "",      // required
		Duration: 1,       // gte=3
		Kind:     "paypal", // oneof
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	if !containsFieldMsg(fe, "Duration", "greater than or equal to 3") {
		t.Fatalf("missing gte message for Duration: %+v", fe)
	}
	if !containsFieldMsg(fe, "Kind", "must be one of: bank mobilemoney") {
		t.Fatalf("missing oneof message for Kind: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
