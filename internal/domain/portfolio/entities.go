package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"wanzo-portfolio/internal/domain/leasing"
)

// Type discriminates the three portfolio variants. It is immutable after
// creation and is the sole dispatch key consumers use.
type Type string

const (
	TypeTraditional Type = "traditional"
	TypeLeasing     Type = "leasing"
	TypeInvestment  Type = "investment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeTraditional, TypeLeasing, TypeInvestment:
		return true
	}
	return false
}

type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

// Portfolio is the aggregate root: one managed pool of capital of exactly one
// business variant. Exactly one of Traditional/Leasing/Investment is populated,
// and it must agree with Type. Access variant fields through the As* predicates,
// not by poking at the pointers.
type Portfolio struct {
	ID             string          `json:"id"`
	Type           Type            `json:"type"`
	Name           string          `json:"name"`
	Status         Status          `json:"status"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	TargetReturn   decimal.Decimal `json:"target_return"`
	TargetSectors  []string        `json:"target_sectors"`
	RiskProfile    RiskProfile     `json:"risk_profile"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Manager        string          `json:"manager"`
	ManagementFees decimal.Decimal `json:"management_fees"`

	Traditional *TraditionalDetails `json:"traditional,omitempty"`
	Leasing     *LeasingDetails     `json:"leasing,omitempty"`
	Investment  *InvestmentDetails  `json:"investment,omitempty"`
}

// FinancialProduct is a credit product offered inside a traditional portfolio.
type FinancialProduct struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	DurationMin  int             `json:"duration_min"`
	DurationMax  int             `json:"duration_max"`
	IsPublic     bool            `json:"is_public"`
}

// CreditMetrics aggregates credit-specific health figures for display.
type CreditMetrics struct {
	NbCredits        int             `json:"nb_credits"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TauxRecouvrement decimal.Decimal `json:"taux_recouvrement"`
	// Outstanding balance bucketed by days overdue.
	BalanceAging map[string]decimal.Decimal `json:"balance_aging,omitempty"`
	AvgCreditAmount decimal.Decimal `json:"avg_credit_amount"`
}

type TraditionalDetails struct {
	Products      []FinancialProduct `json:"products"`
	Description   string             `json:"description"`
	ManagerID     string             `json:"manager_id"`
	InstitutionID string             `json:"institution_id"`
	Metrics       *CreditMetrics     `json:"metrics,omitempty"`
}

// LeasingTerms bound what contracts the portfolio may generate.
type LeasingTerms struct {
	MinDuration         int             `json:"min_duration"`
	MaxDuration         int             `json:"max_duration"`
	InterestRateMin     decimal.Decimal `json:"interest_rate_min"`
	InterestRateMax     decimal.Decimal `json:"interest_rate_max"`
	MaintenanceIncluded bool            `json:"maintenance_included"`
	InsuranceRequired   bool            `json:"insurance_required"`
}

type LeasingDetails struct {
	EquipmentCatalog   []leasing.Equipment   `json:"equipment_catalog"`
	LeasingRequests    []leasing.Request     `json:"leasing_requests"`
	Contracts          []leasing.Contract    `json:"contracts"`
	Incidents          []leasing.Incident    `json:"incidents"`
	Maintenances       []leasing.Maintenance `json:"maintenances"`
	Payments           []leasing.Payment     `json:"payments"`
	LeasingTerms       LeasingTerms          `json:"leasing_terms"`
	MaintenanceOptions []string              `json:"maintenance_options,omitempty"`
	InsuranceOptions   []string              `json:"insurance_options,omitempty"`
}

type InvestmentAsset struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	AssetClass   string          `json:"asset_class"`
	CurrentValue decimal.Decimal `json:"current_value"`
	AcquiredAt   time.Time       `json:"acquired_at"`
}

type Subscription struct {
	ID         string          `json:"id"`
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Status     string          `json:"status"`
}

type Valuation struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	TotalValue    decimal.Decimal `json:"total_value"`
	UnitValue     decimal.Decimal `json:"unit_value"`
	Methodology   string          `json:"methodology"`
}

type InvestmentRequest struct {
	ID         string          `json:"id"`
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Date       time.Time       `json:"date"`
}

type InvestmentTransaction struct {
	ID     string          `json:"id"`
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type Report struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Period string    `json:"period"`
	Date   time.Time `json:"date"`
}

type ExitEvent struct {
	ID      string          `json:"id"`
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
	Date    time.Time       `json:"date"`
	Kind    string          `json:"kind"`
}

type InvestmentDetails struct {
	Assets        []InvestmentAsset       `json:"assets"`
	Subscriptions []Subscription          `json:"subscriptions"`
	Valuations    []Valuation             `json:"valuations"`
	Requests      []InvestmentRequest     `json:"requests"`
	Transactions  []InvestmentTransaction `json:"transactions"`
	Reports       []Report                `json:"reports"`
	ExitEvents    []ExitEvent             `json:"exitEvents"`
}

// AsTraditional narrows to the traditional variant. It returns false when the
// record's type disagrees with its shape, which consumers treat as "not found".
func (p *Portfolio) AsTraditional() (*TraditionalDetails, bool) {
	if p == nil || p.Type != TypeTraditional || p.Traditional == nil {
		return nil, false
	}
	return p.Traditional, true
}

func (p *Portfolio) AsLeasing() (*LeasingDetails, bool) {
	if p == nil || p.Type != TypeLeasing || p.Leasing == nil {
		return nil, false
	}
	return p.Leasing, true
}

func (p *Portfolio) AsInvestment() (*InvestmentDetails, bool) {
	if p == nil || p.Type != TypeInvestment || p.Investment == nil {
		return nil, false
	}
	return p.Investment, true
}
