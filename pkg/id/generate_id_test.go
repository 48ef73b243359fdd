package id

import (
	"encoding/hex"
	"regexp"
	"testing"
)

var (
	reHex32    = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reDisb     = regexp.MustCompile(`^DISB-\d{4}-\d{6}$`)
	reRequest  = regexp.MustCompile(`^WL-\d{8}$`)
	reContract = regexp.MustCompile(`^LC-\d{5}$`)
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	// length
	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	// lowercase hex only (no separators/prefixes)
	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	// decodes to exactly 16 bytes
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewDisbursementID_Format(t *testing.T) {
	got := NewDisbursementID(2025)
	if !reDisb.MatchString(got) {
		t.Fatalf("disbursement id %q does not match DISB-<year>-<6 digits>", got)
	}
}

func TestNewRequestID_Format(t *testing.T) {
	got := NewRequestID()
	if !reRequest.MatchString(got) {
		t.Fatalf("request id %q does not match WL-<8 digits>", got)
	}
}

func TestNewContractID_Format(t *testing.T) {
	got := NewContractID()
	if !reContract.MatchString(got) {
		t.Fatalf("contract id %q does not match LC-<5 digits>", got)
	}
}
