package objectstore

import (
	"context"
	"encoding/json"

	domain "wanzo-portfolio/internal/domain/portfolio"
)

// PortfolioRepository is the domain access layer for the polymorphic portfolio
// entity. It does not validate that a record's type matches its shape; that
// invariant belongs to the producers.
type PortfolioRepository struct{ store *Store }

func NewPortfolioRepository(store *Store) *PortfolioRepository {
	return &PortfolioRepository{store: store}
}

func portfolioIndexes(p *domain.Portfolio) IndexValues {
	return IndexValues{
		Type:   string(p.Type),
		Status: string(p.Status.OrDefault()),
	}
}

func (r *PortfolioRepository) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	raw, err := r.store.Get(ctx, StorePortfolios, id)
	if err != nil || raw == nil {
		return nil, err
	}
	var p domain.Portfolio
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PortfolioRepository) GetByType(ctx context.Context, t domain.Type) ([]domain.Portfolio, error) {
	raws, err := r.store.GetByIndex(ctx, StorePortfolios, IndexByType, string(t))
	if err != nil {
		return nil, err
	}
	return decodePortfolios(raws)
}

func (r *PortfolioRepository) GetAll(ctx context.Context) ([]domain.Portfolio, error) {
	raws, err := r.store.GetAll(ctx, StorePortfolios)
	if err != nil {
		return nil, err
	}
	return decodePortfolios(raws)
}

// AddOrUpdate stamps updated_at with the write time: last writer wins, no merge.
func (r *PortfolioRepository) AddOrUpdate(ctx context.Context, p *domain.Portfolio) error {
	now := r.store.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Status = p.Status.OrDefault()
	return r.store.Add(ctx, StorePortfolios, p.ID, portfolioIndexes(p), p)
}

func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, StorePortfolios, id)
}

// Clear wipes the whole collection; only seeding uses it.
func (r *PortfolioRepository) Clear(ctx context.Context) error {
	return r.store.Clear(ctx, StorePortfolios)
}

func (r *PortfolioRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, StorePortfolios)
}

func decodePortfolios(raws []json.RawMessage) ([]domain.Portfolio, error) {
	out := make([]domain.Portfolio, 0, len(raws))
	for _, raw := range raws {
		var p domain.Portfolio
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

var _ domain.Repository = (*PortfolioRepository)(nil)
