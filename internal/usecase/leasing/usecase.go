package leasing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wanzo-portfolio/internal/adapter/storage"
	domain "wanzo-portfolio/internal/domain/leasing"
	"wanzo-portfolio/internal/domain/portfolio"
	"wanzo-portfolio/internal/domain/syncqueue"
	"wanzo-portfolio/pkg/id"
)

const (
	requestEntity  = "leasing_request"
	contractEntity = "leasing_contract"

	keyMaintenances = "wanzo_leasing_maintenances"
)

type RemoteAPI interface {
	CreateLeasingRequest(ctx context.Context, r *domain.Request) (*domain.Request, error)
	ApproveLeasingRequest(ctx context.Context, id string) error
	RejectLeasingRequest(ctx context.Context, id, reason string) error
	CreateLeasingContract(ctx context.Context, ct *domain.Contract) (*domain.Contract, error)
	UpdateLeasingContract(ctx context.Context, ct *domain.Contract) (*domain.Contract, error)
}

type Flat interface {
	GetJSON(ctx context.Context, key string, out any) bool
	SetJSON(ctx context.Context, key string, v any) bool
}

type Outbox interface {
	Enqueue(ctx context.Context, item *syncqueue.Item) error
	Prune(ctx context.Context, entity, entityID string) error
}

// Usecase drives a leasing request to its auto-generated contract and the
// contract through its lifecycle. Mutations apply locally first (the UI reads
// the flat projections) and are pushed remote; failures are queued, never
// surfaced as blocking errors.
type Usecase struct {
	api    RemoteAPI
	flat   Flat
	outbox Outbox
	log    *logrus.Logger
	now    func() time.Time
}

func NewUsecase(api RemoteAPI, flat Flat, outbox Outbox, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		api:    api,
		flat:   flat,
		outbox: outbox,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type CreateRequestInput struct {
	EquipmentID       string          `json:"equipment_id"`
	ClientID          string          `json:"client_id"`
	RequestedDuration int             `json:"requested_duration"`
	MonthlyBudget     decimal.Decimal `json:"monthly_budget"`
}

func (u *Usecase) CreateRequest(ctx context.Context, in CreateRequestInput) (*domain.Request, error) {
	if _, ok := u.equipment(ctx, in.EquipmentID); !ok {
		return nil, domain.ErrEquipmentNotFound
	}
	r := &domain.Request{
		ID:                id.NewRequestID(),
		EquipmentID:       in.EquipmentID,
		ClientID:          in.ClientID,
		RequestedDuration: in.RequestedDuration,
		MonthlyBudget:     in.MonthlyBudget,
		Status:            domain.RequestPending,
		StatusDate:        u.now(),
	}
	u.saveRequest(ctx, r)

	if remote, err := u.api.CreateLeasingRequest(ctx, r); err == nil {
		u.saveRequest(ctx, remote)
		return remote, nil
	} else {
		u.log.WithError(err).WithField("id", r.ID).Warn("remote request create failed, queued")
		u.enqueueRequest(ctx, syncqueue.ActionCreate, r)
	}
	return r, nil
}

// ApproveResult reports partial success: approval is never rolled back when the
// follow-up contract creation fails.
type ApproveResult struct {
	Request     *domain.Request
	Contract    *domain.Contract
	ContractErr error
}

// ApproveRequest approves and then unconditionally creates the contract.
func (u *Usecase) ApproveRequest(ctx context.Context, requestID string) (*ApproveResult, error) {
	r, ok := u.request(ctx, requestID)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if !domain.CanTransitionRequest(r.Status, domain.RequestApproved) {
		return nil, domain.ErrInvalidTransition
	}
	r.Status = domain.RequestApproved
	r.StatusDate = u.now()
	u.saveRequest(ctx, r)

	if err := u.api.ApproveLeasingRequest(ctx, requestID); err != nil {
		u.log.WithError(err).WithField("id", requestID).Warn("remote approve failed, queued")
		u.enqueueRequest(ctx, syncqueue.ActionUpdate, r)
	}

	res := &ApproveResult{Request: r}
	ct, err := u.CreateContract(ctx, requestID)
	if err != nil {
		res.ContractErr = err
		return res, nil
	}
	res.Contract = ct
	res.Request, _ = u.request(ctx, requestID)
	return res, nil
}

// RejectRequest requires a reason; rejection is final.
func (u *Usecase) RejectRequest(ctx context.Context, requestID, reason string) (*domain.Request, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	r, ok := u.request(ctx, requestID)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if !domain.CanTransitionRequest(r.Status, domain.RequestRejected) {
		return nil, domain.ErrInvalidTransition
	}
	r.Status = domain.RequestRejected
	r.StatusDate = u.now()
	r.RejectionReason = reason
	u.saveRequest(ctx, r)

	if err := u.api.RejectLeasingRequest(ctx, requestID, reason); err != nil {
		u.log.WithError(err).WithField("id", requestID).Warn("remote reject failed, queued")
		u.enqueueRequest(ctx, syncqueue.ActionUpdate, r)
	}
	return r, nil
}

// CreateContract promotes an approved request into exactly one contract. The
// interest rate is a named placeholder, not a computed price.
func (u *Usecase) CreateContract(ctx context.Context, requestID string) (*domain.Contract, error) {
	r, ok := u.request(ctx, requestID)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if _, ok := u.equipment(ctx, r.EquipmentID); !ok {
		return nil, domain.ErrEquipmentNotFound
	}
	start := u.now()
	ct := &domain.Contract{
		ID:             id.NewContractID(),
		EquipmentID:    r.EquipmentID,
		ClientID:       r.ClientID,
		RequestID:      r.ID,
		StartDate:      start,
		EndDate:        start.AddDate(0, r.RequestedDuration, 0),
		MonthlyPayment: r.MonthlyBudget,
		InterestRate:   domain.DefaultInterestRate,
		Status:         domain.ContractPending,
	}
	u.saveContract(ctx, ct)

	r.Status = domain.RequestContractCreated
	r.StatusDate = u.now()
	r.ContractID = ct.ID
	u.saveRequest(ctx, r)

	if remote, err := u.api.CreateLeasingContract(ctx, ct); err == nil {
		u.saveContract(ctx, remote)
		return remote, nil
	} else {
		u.log.WithError(err).WithField("id", ct.ID).Warn("remote contract create failed, queued")
		u.enqueueContract(ctx, syncqueue.ActionCreate, ct)
	}
	return ct, nil
}

func (u *Usecase) ActivateContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	ct, ok := u.contract(ctx, contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	if !domain.CanTransitionContract(ct.Status, domain.ContractActive) {
		return nil, domain.ErrInvalidTransition
	}
	now := u.now()
	ct.Status = domain.ContractActive
	ct.ActivationDate = &now
	u.pushContract(ctx, ct)
	return ct, nil
}

// TerminateContract is irreversible; the reason is stored verbatim.
func (u *Usecase) TerminateContract(ctx context.Context, contractID, reason string) (*domain.Contract, error) {
	ct, ok := u.contract(ctx, contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	if !domain.CanTransitionContract(ct.Status, domain.ContractTerminated) {
		return nil, domain.ErrInvalidTransition
	}
	now := u.now()
	ct.Status = domain.ContractTerminated
	ct.TerminationDate = &now
	ct.TerminationReason = reason
	u.pushContract(ctx, ct)
	return ct, nil
}

// GenerateInvoice stamps the next invoice date one month out; only active
// contracts are invoiced.
func (u *Usecase) GenerateInvoice(ctx context.Context, contractID string) (*domain.Contract, error) {
	ct, ok := u.contract(ctx, contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	if ct.Status != domain.ContractActive {
		return nil, domain.ErrInvalidTransition
	}
	next := u.now().AddDate(0, 1, 0)
	ct.NextInvoiceDate = &next
	u.pushContract(ctx, ct)
	return ct, nil
}

// ScheduleMaintenance records an upcoming maintenance for a contract's
// equipment.
func (u *Usecase) ScheduleMaintenance(ctx context.Context, contractID string, at time.Time, description string) (*domain.Maintenance, error) {
	ct, ok := u.contract(ctx, contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	m := &domain.Maintenance{
		ID:          uuid.NewString(),
		ContractID:  ct.ID,
		EquipmentID: ct.EquipmentID,
		ScheduledAt: at,
		Description: description,
	}
	var all []domain.Maintenance
	u.flat.GetJSON(ctx, keyMaintenances, &all)
	all = append(all, *m)
	u.flat.SetJSON(ctx, keyMaintenances, all)
	return m, nil
}

// OrderEquipment marks the equipment ordered and payment initiated, and forces
// the contract back to pending even from active: ordering resets activation.
func (u *Usecase) OrderEquipment(ctx context.Context, contractID string) (*domain.Contract, error) {
	ct, ok := u.contract(ctx, contractID)
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	now := u.now()
	ct.EquipmentOrdered = true
	ct.PaymentInitiated = true
	ct.EquipmentOrderedDate = &now
	ct.PaymentInitiatedDate = &now
	ct.Status = domain.ContractPending
	u.pushContract(ctx, ct)
	return ct, nil
}

func (u *Usecase) Requests(ctx context.Context) []domain.Request {
	var all []domain.Request
	u.flat.GetJSON(ctx, storage.KeyLeasingRequests, &all)
	return all
}

func (u *Usecase) Contracts(ctx context.Context) []domain.Contract {
	var all []domain.Contract
	u.flat.GetJSON(ctx, storage.KeyLeasingContracts, &all)
	return all
}

// SaveEquipments projects an equipment catalog into flat storage; startup runs
// it with the seeded portfolios' catalogs.
// SavePortfolios refreshes the leasing-portfolio projection next to the
// request and contract lists. Non-leasing portfolios are dropped, never stored.
func (u *Usecase) SavePortfolios(ctx context.Context, all []portfolio.Portfolio) {
	out := make([]portfolio.Portfolio, 0, len(all))
	for i := range all {
		if _, ok := all[i].AsLeasing(); ok {
			out = append(out, all[i])
		}
	}
	u.flat.SetJSON(ctx, storage.KeyLeasingPortfolios, out)
}

// Portfolios reads the projection back; missing key means none seeded yet.
func (u *Usecase) Portfolios(ctx context.Context) []portfolio.Portfolio {
	var out []portfolio.Portfolio
	u.flat.GetJSON(ctx, storage.KeyLeasingPortfolios, &out)
	return out
}

func (u *Usecase) SaveEquipments(ctx context.Context, items []domain.Equipment) {
	var all []domain.Equipment
	u.flat.GetJSON(ctx, storage.KeyLeasingEquipments, &all)
	for _, item := range items {
		replaced := false
		for i := range all {
			if all[i].ID == item.ID {
				all[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			all = append(all, item)
		}
	}
	u.flat.SetJSON(ctx, storage.KeyLeasingEquipments, all)
}

// --- flat-store plumbing ---

func (u *Usecase) request(ctx context.Context, requestID string) (*domain.Request, bool) {
	for _, r := range u.Requests(ctx) {
		if r.ID == requestID {
			r := r
			return &r, true
		}
	}
	return nil, false
}

func (u *Usecase) contract(ctx context.Context, contractID string) (*domain.Contract, bool) {
	for _, ct := range u.Contracts(ctx) {
		if ct.ID == contractID {
			ct := ct
			return &ct, true
		}
	}
	return nil, false
}

func (u *Usecase) equipment(ctx context.Context, equipmentID string) (*domain.Equipment, bool) {
	var all []domain.Equipment
	u.flat.GetJSON(ctx, storage.KeyLeasingEquipments, &all)
	for _, e := range all {
		if e.ID == equipmentID {
			e := e
			return &e, true
		}
	}
	return nil, false
}

func (u *Usecase) saveRequest(ctx context.Context, r *domain.Request) {
	all := u.Requests(ctx)
	replaced := false
	for i := range all {
		if all[i].ID == r.ID {
			all[i] = *r
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, *r)
	}
	u.flat.SetJSON(ctx, storage.KeyLeasingRequests, all)
}

func (u *Usecase) saveContract(ctx context.Context, ct *domain.Contract) {
	all := u.Contracts(ctx)
	replaced := false
	for i := range all {
		if all[i].ID == ct.ID {
			all[i] = *ct
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, *ct)
	}
	u.flat.SetJSON(ctx, storage.KeyLeasingContracts, all)
}

// pushContract saves locally then mirrors the change remote, queueing on
// rejection.
func (u *Usecase) pushContract(ctx context.Context, ct *domain.Contract) {
	u.saveContract(ctx, ct)
	if _, err := u.api.UpdateLeasingContract(ctx, ct); err != nil {
		u.log.WithError(err).WithField("id", ct.ID).Warn("remote contract update failed, queued")
		u.enqueueContract(ctx, syncqueue.ActionUpdate, ct)
	}
}

func (u *Usecase) enqueueRequest(ctx context.Context, action syncqueue.Action, r *domain.Request) {
	u.enqueueItem(ctx, action, requestEntity, r.ID, r)
}

func (u *Usecase) enqueueContract(ctx context.Context, action syncqueue.Action, ct *domain.Contract) {
	u.enqueueItem(ctx, action, contractEntity, ct.ID, ct)
}

func (u *Usecase) enqueueItem(ctx context.Context, action syncqueue.Action, entity, entityID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	item := &syncqueue.Item{
		ID:        uuid.NewString(),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Data:      raw,
		Timestamp: u.now(),
		Priority:  1,
	}
	if err := u.outbox.Enqueue(ctx, item); err != nil {
		u.log.WithError(err).WithField("entity_id", entityID).Warn("outbox enqueue failed")
	}
}
