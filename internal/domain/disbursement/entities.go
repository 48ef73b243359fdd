package disbursement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

const DefaultCurrency = "CDF"

var (
	ErrNotFound          = errors.New("disbursement not found")
	ErrInvalidTransition = errors.New("invalid disbursement status transition")
	ErrContractRequired  = errors.New("disbursement requires a contract reference")
)

type BeneficiaryKind string

const (
	BeneficiaryBank        BeneficiaryKind = "bank"
	BeneficiaryMobileMoney BeneficiaryKind = "mobilemoney"
)

// Beneficiary is either a bank account or a mobile-money wallet.
type Beneficiary struct {
	Kind          BeneficiaryKind `json:"kind"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number,omitempty"`
	BankName      string          `json:"bank_name,omitempty"`
	BankCode      string          `json:"bank_code,omitempty"`
	MobileNumber  string          `json:"mobile_number,omitempty"`
	Provider      string          `json:"provider,omitempty"`
}

type DebitAccount struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

// Disbursement is an outbound payment instruction tied 1:1 to a contract; it is
// never detached from one. TransactionReference/ExecutionDate/ValueDate are
// populated only on confirmation.
type Disbursement struct {
	ID                string          `json:"id"` // DISB-<year>-<6-digit-seq>
	PortfolioID       string          `json:"portfolioId"`
	ContractReference string          `json:"contractReference"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"` // ISO-4217
	Status            Status          `json:"status"`
	DebitAccount      DebitAccount    `json:"debitAccount"`
	Beneficiary       Beneficiary     `json:"beneficiary"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	TransactionReference string `json:"transactionReference,omitempty"`
	ExecutionDate        string `json:"executionDate,omitempty"`
	ValueDate            string `json:"valueDate,omitempty"`
}

// Confirmation carries the transaction fields persisted atomically with the
// pending → completed transition.
type Confirmation struct {
	TransactionReference string `json:"transactionReference"`
	ExecutionDate        string `json:"executionDate"`
	ValueDate            string `json:"valueDate"`
}

var transitions = map[Status][]Status{
	StatusDraft:      {StatusPending, StatusCanceled},
	StatusPending:    {StatusApproved, StatusRejected, StatusProcessing, StatusCompleted, StatusCanceled},
	StatusApproved:   {StatusProcessing, StatusCanceled},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusRejected:   {},
	StatusCompleted:  {},
	StatusFailed:     {StatusPending},
	StatusCanceled:   {},
}

func CanTransitionTo(current, target Status) bool {
	for _, next := range transitions[current] {
		if next == target {
			return true
		}
	}
	return false
}
