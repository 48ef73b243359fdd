package seeding

import (
	"context"

	"github.com/sirupsen/logrus"

	"wanzo-portfolio/internal/adapter/storage"
	domain "wanzo-portfolio/internal/domain/portfolio"
)

// PortfolioStore is the slice of the object store the seeder needs beyond the
// domain repository: wiping the collection and verifying the post-seed count.
type PortfolioStore interface {
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Flat is the guard-flag storage surface.
type Flat interface {
	GetItem(ctx context.Context, key string) (string, bool)
	SetItem(ctx context.Context, key, value string) bool
	RemoveItem(ctx context.Context, key string) bool
}

// Usecase performs the idempotent one-time seed of the portfolio repository
// from the static fixture datasets.
type Usecase struct {
	repo  domain.Repository
	store PortfolioStore
	flat  Flat
	log   *logrus.Logger
}

func NewUsecase(repo domain.Repository, store PortfolioStore, flat Flat, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{repo: repo, store: store, flat: flat, log: log}
}

// SeedIfNeeded runs the seed once, guarded by the persisted flag. Success is
// defined by post-condition verification: the guard is only set when the store
// reports a non-zero portfolio count afterwards, so a silently failed seed is
// retried on the next load.
func (u *Usecase) SeedIfNeeded(ctx context.Context) error {
	if v, ok := u.flat.GetItem(ctx, storage.KeyMockDataInitialized); ok && v == "true" {
		return nil
	}
	return u.seed(ctx)
}

// ResetMockData forces re-seeding regardless of the guard.
func (u *Usecase) ResetMockData(ctx context.Context) error {
	u.flat.RemoveItem(ctx, storage.KeyMockDataInitialized)
	return u.seed(ctx)
}

func (u *Usecase) seed(ctx context.Context) error {
	// clear any partial collection before writing a fresh set
	if err := u.store.Clear(ctx); err != nil {
		return err
	}
	for _, p := range fixturePortfolios() {
		p := p
		if err := u.repo.AddOrUpdate(ctx, &p); err != nil {
			u.log.WithError(err).WithField("portfolio", p.ID).Warn("seed write failed")
		}
	}
	count, err := u.store.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		u.log.Warn("seeding left zero portfolios, guard flag not set")
		return nil
	}
	u.flat.SetItem(ctx, storage.KeyMockDataInitialized, "true")
	u.log.WithField("count", count).Info("portfolio store seeded")
	return nil
}
