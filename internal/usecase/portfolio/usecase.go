package portfolio

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "wanzo-portfolio/internal/domain/portfolio"
	"wanzo-portfolio/internal/domain/syncqueue"
	"wanzo-portfolio/pkg/id"
)

const entityName = "portfolio"

type Outbox interface {
	Enqueue(ctx context.Context, item *syncqueue.Item) error
	Prune(ctx context.Context, entity, entityID string) error
}

// Usecase wraps the repository with the outbox dual-write: every portfolio
// mutation produces one domain write and one queue entry. The two writes are
// not atomic across stores; the drain loop's retry converges the gap.
type Usecase struct {
	repo   domain.Repository
	outbox Outbox
	log    *logrus.Logger
	now    func() time.Time
}

func NewUsecase(repo domain.Repository, outbox Outbox, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		repo:   repo,
		outbox: outbox,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) Get(ctx context.Context, portfolioID string) (*domain.Portfolio, error) {
	p, err := u.repo.Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetOfType fetches under an expected variant. A stored record of another type
// is reported as an explicit mismatch, never silently coerced.
func (u *Usecase) GetOfType(ctx context.Context, portfolioID string, t domain.Type) (*domain.Portfolio, error) {
	p, err := u.Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if p.Type != t {
		return nil, &domain.TypeMismatchError{ID: portfolioID, Expected: t, Actual: p.Type}
	}
	return p, nil
}

func (u *Usecase) GetByType(ctx context.Context, t domain.Type) ([]domain.Portfolio, error) {
	return u.repo.GetByType(ctx, t)
}

func (u *Usecase) GetAll(ctx context.Context) ([]domain.Portfolio, error) {
	return u.repo.GetAll(ctx)
}

// Save upserts a portfolio and queues the mutation for the remote system.
func (u *Usecase) Save(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	action := syncqueue.ActionUpdate
	if p.ID == "" {
		p.ID = id.NewID32()
		action = syncqueue.ActionCreate
	}
	if err := u.repo.AddOrUpdate(ctx, p); err != nil {
		return nil, err
	}
	u.enqueue(ctx, action, p)
	return p, nil
}

// ChangeStatus applies one lifecycle transition; the transition table is the
// single source of truth.
func (u *Usecase) ChangeStatus(ctx context.Context, portfolioID string, target domain.Status) (*domain.Portfolio, error) {
	p, err := u.Get(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionTo(p.Status, target) {
		return nil, domain.ErrInvalidTransition
	}
	p.Status = target
	if err := u.repo.AddOrUpdate(ctx, p); err != nil {
		return nil, err
	}
	u.enqueue(ctx, syncqueue.ActionUpdate, p)
	return p, nil
}

// Delete removes the record and prunes its pending queue entries so the drain
// loop cannot resurrect it.
func (u *Usecase) Delete(ctx context.Context, portfolioID string) (bool, error) {
	p, err := u.repo.Get(ctx, portfolioID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	if err := u.repo.Delete(ctx, portfolioID); err != nil {
		return false, err
	}
	if err := u.outbox.Prune(ctx, entityName, portfolioID); err != nil {
		u.log.WithError(err).WithField("id", portfolioID).Warn("outbox prune failed")
	}
	item := &syncqueue.Item{
		ID:        uuid.NewString(),
		Action:    syncqueue.ActionDelete,
		Entity:    entityName,
		EntityID:  portfolioID,
		Timestamp: u.now(),
		Priority:  3,
	}
	if err := u.outbox.Enqueue(ctx, item); err != nil {
		u.log.WithError(err).WithField("id", portfolioID).Warn("outbox enqueue failed")
	}
	return true, nil
}

func (u *Usecase) enqueue(ctx context.Context, action syncqueue.Action, p *domain.Portfolio) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	item := &syncqueue.Item{
		ID:        uuid.NewString(),
		Action:    action,
		Entity:    entityName,
		EntityID:  p.ID,
		Data:      raw,
		Timestamp: u.now(),
		Priority:  2,
	}
	if err := u.outbox.Enqueue(ctx, item); err != nil {
		u.log.WithError(err).WithField("id", p.ID).Warn("outbox enqueue failed")
	}
}
