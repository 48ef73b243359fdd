package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func randUint64() uint64 {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return binary.BigEndian.Uint64(b)
}

// NewDisbursementID builds a payment-order id: DISB-<year>-<6-digit sequence>.
func NewDisbursementID(year int) string {
	return fmt.Sprintf("DISB-%d-%06d", year, randUint64()%1_000_000)
}

// NewRequestID builds a leasing-request id: WL-########.
func NewRequestID() string {
	return fmt.Sprintf("WL-%08d", randUint64()%100_000_000)
}

// NewContractID builds a leasing-contract id: LC-#####.
func NewContractID() string {
	return fmt.Sprintf("LC-%05d", randUint64()%100_000)
}
