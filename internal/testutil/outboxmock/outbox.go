package outboxmock

import (
	"context"
	"sync"

	"wanzo-portfolio/internal/domain/syncqueue"
)

// Outbox records every enqueue and prune so tests can assert on the mutation
// log without a real queue behind it.
type Outbox struct {
	mu     sync.Mutex
	Items  []syncqueue.Item
	Pruned [][2]string
}

func New() *Outbox { return &Outbox{} }

func (o *Outbox) Enqueue(_ context.Context, item *syncqueue.Item) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Items = append(o.Items, *item)
	return nil
}

func (o *Outbox) Prune(_ context.Context, entity, entityID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Pruned = append(o.Pruned, [2]string{entity, entityID})
	kept := o.Items[:0]
	for _, it := range o.Items {
		if it.Entity != entity || it.EntityID != entityID {
			kept = append(kept, it)
		}
	}
	o.Items = kept
	return nil
}
