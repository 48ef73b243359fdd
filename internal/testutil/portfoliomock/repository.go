package portfoliomock

import (
	"context"

	domain "wanzo-portfolio/internal/domain/portfolio"
)

// Repo is a function-backed mock that satisfies domain.Repository plus the
// Clear/Count surface the seeder needs. Only methods you need are included;
// add more as tests require.
type Repo struct {
	GetFn         func(ctx context.Context, id string) (*domain.Portfolio, error)
	GetByTypeFn   func(ctx context.Context, t domain.Type) ([]domain.Portfolio, error)
	GetAllFn      func(ctx context.Context) ([]domain.Portfolio, error)
	AddOrUpdateFn func(ctx context.Context, p *domain.Portfolio) error
	DeleteFn      func(ctx context.Context, id string) error
	ClearFn       func(ctx context.Context) error
	CountFn       func(ctx context.Context) (int64, error)
}

func (m *Repo) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, nil
}

func (m *Repo) GetByType(ctx context.Context, t domain.Type) ([]domain.Portfolio, error) {
	if m.GetByTypeFn != nil {
		return m.GetByTypeFn(ctx, t)
	}
	return nil, nil
}

func (m *Repo) GetAll(ctx context.Context) ([]domain.Portfolio, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}
	return nil, nil
}

func (m *Repo) AddOrUpdate(ctx context.Context, p *domain.Portfolio) error {
	if m.AddOrUpdateFn != nil {
		return m.AddOrUpdateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) Clear(ctx context.Context) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx)
	}
	return nil
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}
