package leasing

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestPending         RequestStatus = "pending"
	RequestApproved        RequestStatus = "approved"
	RequestRejected        RequestStatus = "rejected"
	RequestContractCreated RequestStatus = "contract_created"
)

type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractPending    ContractStatus = "pending"
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
)

// DefaultInterestRate is a placeholder pending real pricing input; contract
// auto-creation does not compute a rate.
var DefaultInterestRate = decimal.NewFromFloat(4.5)

type Equipment struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Condition    string          `json:"condition"`
	Availability bool            `json:"availability"`
}

// Request is a client's ask to lease a piece of equipment. On approval it is
// promoted into exactly one Contract.
type Request struct {
	ID                string          `json:"id"`
	EquipmentID       string          `json:"equipment_id"`
	ClientID          string          `json:"client_id"`
	RequestedDuration int             `json:"requested_duration"` // months
	MonthlyBudget     decimal.Decimal `json:"monthly_budget"`
	Status            RequestStatus   `json:"status"`
	StatusDate        time.Time       `json:"status_date"`
	ContractID        string          `json:"contract_id,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
}

// Contract references its originating request (back-reference, not ownership).
type Contract struct {
	ID                string          `json:"id"`
	EquipmentID       string          `json:"equipment_id"`
	ClientID          string          `json:"client_id"`
	RequestID         string          `json:"request_id"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	Status            ContractStatus  `json:"status"`
	ActivationDate    *time.Time      `json:"activationDate,omitempty"`
	TerminationDate   *time.Time      `json:"terminationDate,omitempty"`
	TerminationReason string          `json:"terminationReason,omitempty"`
	NextInvoiceDate   *time.Time      `json:"nextInvoiceDate,omitempty"`

	// Equipment ordering resets activation (business rule).
	EquipmentOrdered     bool       `json:"equipment_ordered"`
	PaymentInitiated     bool       `json:"payment_initiated"`
	EquipmentOrderedDate *time.Time `json:"equipment_ordered_date,omitempty"`
	PaymentInitiatedDate *time.Time `json:"payment_initiated_date,omitempty"`
}

type Incident struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	ReportedAt  time.Time `json:"reported_at"`
	Resolved    bool      `json:"resolved"`
}

type Maintenance struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	EquipmentID string    `json:"equipment_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
}

type Payment struct {
	ID         string          `json:"id"`
	ContractID string          `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Kind       string          `json:"kind"`
}
