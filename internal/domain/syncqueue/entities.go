package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var ErrNotFound = errors.New("sync queue item not found")

// Item is one pending local mutation awaiting remote confirmation (outbox
// entry). Priority orders dequeue, higher first; Retries is monotonic. A
// parked item stays stored but never dequeues again until an operator clears
// the flag.
type Item struct {
	ID        string          `json:"id"`
	Action    Action          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Retries   int             `json:"retries"`
	Priority  int             `json:"priority"`
	Parked    bool            `json:"parked,omitempty"`
}

type Repository interface {
	Enqueue(ctx context.Context, item *Item) error
	// NextBatch returns up to limit items, priority descending then oldest
	// first. Parked items never fill batch slots.
	NextBatch(ctx context.Context, limit int) ([]Item, error)
	Update(ctx context.Context, item *Item) error
	// Remove deletes one item; ErrNotFound when the id is unknown.
	Remove(ctx context.Context, id string) error
	// Prune drops every queued mutation for one entity record.
	Prune(ctx context.Context, entity, entityID string) error
}
