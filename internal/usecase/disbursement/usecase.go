package disbursement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wanzo-portfolio/internal/adapter/storage"
	domain "wanzo-portfolio/internal/domain/disbursement"
	"wanzo-portfolio/internal/domain/syncqueue"
	"wanzo-portfolio/pkg/id"
)

const entityName = "disbursement"

// RemoteAPI is the black-box system-of-record contract for payment orders.
type RemoteAPI interface {
	CreateDisbursement(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error)
	UpdateDisbursement(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error)
	ConfirmDisbursement(ctx context.Context, id string, conf domain.Confirmation) (*domain.Disbursement, error)
	CancelDisbursement(ctx context.Context, id string) error
}

// Flat is the degraded-mode persistence surface.
type Flat interface {
	GetJSON(ctx context.Context, key string, out any) bool
	SetJSON(ctx context.Context, key string, v any) bool
	RemoveItem(ctx context.Context, key string) bool
}

// Outbox records mutations awaiting remote confirmation.
type Outbox interface {
	Enqueue(ctx context.Context, item *syncqueue.Item) error
	Prune(ctx context.Context, entity, entityID string) error
}

// Usecase governs a portfolio's money-movement requests. Every mutating call is
// remote-first; on any rejection the equivalent mutation lands in the flat
// store and the locally computed result is returned, so the caller never blocks
// on connectivity loss.
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

type CreateInput struct {
	PortfolioID       string              `json:"portfolioId"`
	ContractReference string              `json:"contractReference"`
	Amount            decimal.Decimal     `json:"amount"`
	Currency          string              `json:"currency"`
	DebitAccount      domain.DebitAccount `json:"debitAccount"`
	Beneficiary       domain.Beneficiary  `json:"beneficiary"`
}

// Create registers a new payment order in pending state.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domain.Disbursement, error) {
	if in.ContractReference == "" {
		// a disbursement is never detached from a contract
		return nil, domain.ErrContractRequired
	}
	now := u.now()
	d := &domain.Disbursement{
		ID:                id.NewDisbursementID(now.Year()),
		PortfolioID:       in.PortfolioID,
		ContractReference: in.ContractReference,
		Amount:            in.Amount,
		Currency:          in.Currency,
		Status:            domain.StatusPending,
		DebitAccount:      in.DebitAccount,
		Beneficiary:       in.Beneficiary,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if d.Currency == "" {
		d.Currency = domain.DefaultCurrency
	}

	if remote, err := u.api.CreateDisbursement(ctx, d); err == nil {
		u.persistLocal(ctx, remote)
		return remote, nil
	} else {
		u.log.WithError(err).WithField("id", d.ID).Warn("remote create failed, using local fallback")
	}

	u.persistLocal(ctx, d)
	u.enqueue(ctx, syncqueue.ActionCreate, d)
	return d, nil
}

func (u *Usecase) Get(ctx context.Context, disbID string) *domain.Disbursement {
	for _, d := range u.loadAll(ctx) {
		if d.ID == disbID {
			d := d
			return &d
		}
	}
	return nil
}

// GetByContract reads the per-contract projection.
func (u *Usecase) GetByContract(ctx context.Context, contractRef string) []domain.Disbursement {
	var out []domain.Disbursement
	u.flat.GetJSON(ctx, storage.DisbursementContractKey(contractRef), &out)
	return out
}

// Update applies caller edits to a draft or pending order. Status rides the
// transition table; completed stays reachable through Confirm alone, so its
// transaction fields are never set on this path.
func (u *Usecase) Update(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error) {
	existing := u.Get(ctx, d.ID)
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if d.Status == "" {
		d.Status = existing.Status
	}
	if d.Status != existing.Status {
		if d.Status == domain.StatusCompleted || !domain.CanTransitionTo(existing.Status, d.Status) {
			return nil, domain.ErrInvalidTransition
		}
	}
	d.CreatedAt = existing.CreatedAt
	d.TransactionReference = existing.TransactionReference
	d.ExecutionDate = existing.ExecutionDate
	d.ValueDate = existing.ValueDate
	d.UpdatedAt = u.now()

	if remote, err := u.api.UpdateDisbursement(ctx, d); err == nil {
		u.persistLocal(ctx, remote)
		return remote, nil
	} else {
		u.log.WithError(err).WithField("id", d.ID).Warn("remote update failed, using local fallback")
	}

	u.persistLocal(ctx, d)
	u.enqueue(ctx, syncqueue.ActionUpdate, d)
	return d, nil
}

// Confirm is the only path out of pending: it moves the order to completed and
// persists the three transaction fields atomically with the status change.
func (u *Usecase) Confirm(ctx context.Context, disbID string, conf domain.Confirmation) (*domain.Disbursement, error) {
	d := u.Get(ctx, disbID)
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if !domain.CanTransitionTo(d.Status, domain.StatusCompleted) {
		return nil, domain.ErrInvalidTransition
	}

	if remote, err := u.api.ConfirmDisbursement(ctx, disbID, conf); err == nil {
		u.persistLocal(ctx, remote)
		return remote, nil
	} else {
		u.log.WithError(err).WithField("id", disbID).Warn("remote confirm failed, using local fallback")
	}

	d.Status = domain.StatusCompleted
	d.TransactionReference = conf.TransactionReference
	d.ExecutionDate = conf.ExecutionDate
	d.ValueDate = conf.ValueDate
	d.UpdatedAt = u.now()
	u.persistLocal(ctx, d)
	u.enqueue(ctx, syncqueue.ActionUpdate, d)
	return d, nil
}

// Cancel is a hard delete from the local list plus pruning of the per-contract
// projection, not a status change. Returns false when the id is unknown.
func (u *Usecase) Cancel(ctx context.Context, disbID string) bool {
	all := u.loadAll(ctx)
	idx := -1
	for i, d := range all {
		if d.ID == disbID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	victim := all[idx]

	if err := u.api.CancelDisbursement(ctx, disbID); err != nil {
		u.log.WithError(err).WithField("id", disbID).Warn("remote cancel failed, removing locally")
	}

	all = append(all[:idx], all[idx+1:]...)
	u.flat.SetJSON(ctx, storage.KeyDisbursements, all)
	u.removeFromContractProjection(ctx, victim.ContractReference, disbID)
	if err := u.outbox.Prune(ctx, entityName, disbID); err != nil {
		u.log.WithError(err).WithField("id", disbID).Warn("outbox prune failed")
	}
	return true
}

// persistLocal keeps the flat "all disbursements" list and the per-contract
// projection in sync; the store itself never does this.
func (u *Usecase) persistLocal(ctx context.Context, d *domain.Disbursement) {
	all := u.loadAll(ctx)
	replaced := false
	for i := range all {
		if all[i].ID == d.ID {
			all[i] = *d
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, *d)
	}
	u.flat.SetJSON(ctx, storage.KeyDisbursements, all)

	key := storage.DisbursementContractKey(d.ContractReference)
	var scoped []domain.Disbursement
	u.flat.GetJSON(ctx, key, &scoped)
	replaced = false
	for i := range scoped {
		if scoped[i].ID == d.ID {
			scoped[i] = *d
			replaced = true
			break
		}
	}
	if !replaced {
		scoped = append(scoped, *d)
	}
	u.flat.SetJSON(ctx, key, scoped)
}

func (u *Usecase) removeFromContractProjection(ctx context.Context, contractRef, disbID string) {
	key := storage.DisbursementContractKey(contractRef)
	var scoped []domain.Disbursement
	if !u.flat.GetJSON(ctx, key, &scoped) {
		return
	}
	kept := scoped[:0]
	for _, d := range scoped {
		if d.ID != disbID {
			kept = append(kept, d)
		}
	}
	u.flat.SetJSON(ctx, key, kept)
}

func (u *Usecase) loadAll(ctx context.Context) []domain.Disbursement {
	var all []domain.Disbursement
	u.flat.GetJSON(ctx, storage.KeyDisbursements, &all)
	return all
}

func (u *Usecase) enqueue(ctx context.Context, action syncqueue.Action, d *domain.Disbursement) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	item := &syncqueue.Item{
		ID:        uuid.NewString(),
		Action:    action,
		Entity:    entityName,
		EntityID:  d.ID,
		Data:      raw,
		Timestamp: u.now(),
		Priority:  2,
	}
	if err := u.outbox.Enqueue(ctx, item); err != nil {
		u.log.WithError(err).WithField("id", d.ID).Warn("outbox enqueue failed")
	}
}
