package objectstore

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"wanzo-portfolio/internal/domain/syncqueue"
)

// SyncQueueRepository persists outbox items in the sync_queue store. Dequeue
// order is priority descending, then oldest first.
type SyncQueueRepository struct{ store *Store }

func NewSyncQueueRepository(store *Store) *SyncQueueRepository {
	return &SyncQueueRepository{store: store}
}

const (
	queueStatusPending = "pending"
	queueStatusParked  = "parked"
)

func queueIndexes(item *syncqueue.Item) IndexValues {
	status := queueStatusPending
	if item.Parked {
		status = queueStatusParked
	}
	return IndexValues{
		Type:     string(item.Action),
		Status:   status,
		Category: item.Entity,
		Date:     item.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Priority: item.Priority,
	}
}

func (r *SyncQueueRepository) Enqueue(ctx context.Context, item *syncqueue.Item) error {
	if item.Timestamp.IsZero() {
		item.Timestamp = r.store.now()
	}
	return r.store.Add(ctx, StoreSyncQueue, item.ID, queueIndexes(item), item)
}

func (r *SyncQueueRepository) Update(ctx context.Context, item *syncqueue.Item) error {
	return r.store.Update(ctx, StoreSyncQueue, item.ID, queueIndexes(item), item)
}

func (r *SyncQueueRepository) Remove(ctx context.Context, id string) error {
	res := r.store.db.WithContext(ctx).
		Where("store = ? AND id = ?", StoreSyncQueue, id).
		Delete(&objectRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return syncqueue.ErrNotFound
	}
	return nil
}

func (r *SyncQueueRepository) NextBatch(ctx context.Context, limit int) ([]syncqueue.Item, error) {
	var rows []objectRow
	err := r.store.db.WithContext(ctx).
		Where("store = ? AND status <> ?", StoreSyncQueue, queueStatusParked).
		Order("priority DESC, date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]syncqueue.Item, 0, len(rows))
	for _, row := range rows {
		var item syncqueue.Item
		if err := json.Unmarshal(row.Payload, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Prune drops every queued mutation for one entity record; canceled or deleted
// records must not resurface through the drain loop.
func (r *SyncQueueRepository) Prune(ctx context.Context, entity, entityID string) error {
	var rows []objectRow
	err := r.store.db.WithContext(ctx).
		Where("store = ? AND category = ?", StoreSyncQueue, entity).
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		var item syncqueue.Item
		if err := json.Unmarshal(row.Payload, &item); err != nil {
			continue
		}
		if item.EntityID != entityID {
			continue
		}
		if err := r.store.Delete(ctx, StoreSyncQueue, item.ID); err != nil {
			return err
		}
	}
	return nil
}

var _ syncqueue.Repository = (*SyncQueueRepository)(nil)
