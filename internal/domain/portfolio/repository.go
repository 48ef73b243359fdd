package portfolio

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Portfolio, error)
	GetByType(ctx context.Context, t Type) ([]Portfolio, error)
	GetAll(ctx context.Context) ([]Portfolio, error)
	// AddOrUpdate stamps updated_at = now; last writer wins, no merge.
	AddOrUpdate(ctx context.Context, p *Portfolio) error
	Delete(ctx context.Context, id string) error
}
