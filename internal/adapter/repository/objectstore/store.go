package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// schemaVersion must be bumped whenever a store or index is added; the new
// store's indexes are declared in storeDefs in the same change, never lazily.
const schemaVersion = 1

const (
	StorePortfolios = "portfolios"
	StoreCompanies  = "companies"
	StoreOperations = "operations"
	StoreMessages   = "messages"
	StoreMeetings   = "meetings"
	StoreSyncQueue  = "sync_queue"
	StoreCache      = "cache"
)

const (
	IndexByType     = "by-type"
	IndexByStatus   = "by-status"
	IndexByDate     = "by-date"
	IndexByCategory = "by-category"
	IndexByPriority = "by-priority"
)

// storeDefs registers every named store with its secondary, non-unique indexes.
var storeDefs = map[string][]string{
	StorePortfolios: {IndexByType, IndexByStatus},
	StoreCompanies:  {IndexByCategory},
	StoreOperations: {IndexByType, IndexByDate},
	StoreMessages:   {IndexByDate},
	StoreMeetings:   {IndexByDate},
	StoreSyncQueue:  {IndexByPriority, IndexByDate},
	StoreCache:      {},
}

var (
	ErrUnknownStore = errors.New("unknown store")
	ErrUnknownIndex = errors.New("index not defined for store")
)

// objectRow is one record of one named store. Index columns are denormalized
// from the payload so lookups stay SQL-side.
type objectRow struct {
	Store     string    `gorm:"column:store;primaryKey;size:32"`
	ID        string    `gorm:"column:id;primaryKey;size:64"`
	Type      string    `gorm:"column:type;size:32;index:idx_objects_type"`
	Status    string    `gorm:"column:status;size:32;index:idx_objects_status"`
	Date      string    `gorm:"column:date;size:40;index:idx_objects_date"`
	Category  string    `gorm:"column:category;size:64;index:idx_objects_category"`
	Priority  int       `gorm:"column:priority;index:idx_objects_priority"`
	Payload   []byte    `gorm:"column:payload;type:blob"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (objectRow) TableName() string { return "objects" }

type cacheRow struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:128"`
	Payload   []byte    `gorm:"column:payload;type:blob"`
	Timestamp time.Time `gorm:"column:timestamp"`
	ExpiresMS int64     `gorm:"column:expires_ms"`
}

func (cacheRow) TableName() string { return "cache_entries" }

type schemaMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"column:version"`
}

func (schemaMeta) TableName() string { return "schema_meta" }

// IndexValues carries the denormalized index columns for a record. Zero values
// are stored as-is; only registered indexes are queryable.
type IndexValues struct {
	Type     string
	Status   string
	Date     string
	Category string
	Priority int
}

// Store is the process-wide key-object database. Init runs the migration once;
// a failed open is returned to every caller and is not retried on its own.
type Store struct {
	db *gorm.DB

	initOnce sync.Once
	initErr  error

	// overridable in tests
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.migrate(ctx)
	})
	return s.initErr
}

func (s *Store) migrate(ctx context.Context) error {
	tx := s.db.WithContext(ctx)
	if err := tx.AutoMigrate(&objectRow{}, &cacheRow{}, &schemaMeta{}); err != nil {
		return fmt.Errorf("object store migration: %w", err)
	}
	var meta schemaMeta
	if err := tx.First(&meta).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&schemaMeta{ID: 1, Version: schemaVersion}).Error
	}
	if meta.Version != schemaVersion {
		meta.Version = schemaVersion
		return tx.Save(&meta).Error
	}
	return nil
}

func validStore(store string) error {
	if _, ok := storeDefs[store]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStore, store)
	}
	return nil
}

// Add writes a record; a duplicate key falls back to update rather than
// raising (idempotent upsert).
func (s *Store) Add(ctx context.Context, store, id string, idx IndexValues, payload any) error {
	if err := validStore(store); err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := objectRow{
		Store:    store,
		ID:       id,
		Type:     idx.Type,
		Status:   idx.Status,
		Date:     idx.Date,
		Category: idx.Category,
		Priority: idx.Priority,
		Payload:  raw,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// Update is Add under upsert semantics; kept as its own method so call sites
// read like the operation they perform.
func (s *Store) Update(ctx context.Context, store, id string, idx IndexValues, payload any) error {
	return s.Add(ctx, store, id, idx, payload)
}

func (s *Store) Delete(ctx context.Context, store, id string) error {
	if err := validStore(store); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("store = ? AND id = ?", store, id).
		Delete(&objectRow{}).Error
}

// Get returns nil (not an error) when the record is missing.
func (s *Store) Get(ctx context.Context, store, id string) (json.RawMessage, error) {
	if err := validStore(store); err != nil {
		return nil, err
	}
	var row objectRow
	err := s.db.WithContext(ctx).
		Where("store = ? AND id = ?", store, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.Payload, nil
}

func (s *Store) GetAll(ctx context.Context, store string) ([]json.RawMessage, error) {
	if err := validStore(store); err != nil {
		return nil, err
	}
	var rows []objectRow
	if err := s.db.WithContext(ctx).
		Where("store = ?", store).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Payload)
	}
	return out, nil
}

// GetByIndex looks records up by one of the store's registered secondary
// indexes; an unregistered index is an error, not an empty result.
func (s *Store) GetByIndex(ctx context.Context, store, index string, value any) ([]json.RawMessage, error) {
	if err := validStore(store); err != nil {
		return nil, err
	}
	column, err := indexColumn(store, index)
	if err != nil {
		return nil, err
	}
	var rows []objectRow
	if err := s.db.WithContext(ctx).
		Where("store = ? AND "+column+" = ?", store, value).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Payload)
	}
	return out, nil
}

func indexColumn(store, index string) (string, error) {
	registered := false
	for _, idx := range storeDefs[store] {
		if idx == index {
			registered = true
			break
		}
	}
	if !registered {
		return "", fmt.Errorf("%w: %s on %s", ErrUnknownIndex, index, store)
	}
	switch index {
	case IndexByType:
		return "type", nil
	case IndexByStatus:
		return "status", nil
	case IndexByDate:
		return "date", nil
	case IndexByCategory:
		return "category", nil
	case IndexByPriority:
		return "priority", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownIndex, index)
}

// SetCache stores an arbitrary payload with a (timestamp, expiresIn) pair.
func (s *Store) SetCache(ctx context.Context, key string, payload any, expiresIn time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	row := cacheRow{
		Key:       key,
		Payload:   raw,
		Timestamp: s.now(),
		ExpiresMS: expiresIn.Milliseconds(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// GetCache transparently evicts and returns nil once the entry has expired;
// callers never see a stale entry.
func (s *Store) GetCache(ctx context.Context, key string) (json.RawMessage, error) {
	var row cacheRow
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if row.ExpiresMS > 0 && s.now().After(row.Timestamp.Add(time.Duration(row.ExpiresMS)*time.Millisecond)) {
		_ = s.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&cacheRow{}).Error
		return nil, nil
	}
	return row.Payload, nil
}

func (s *Store) DeleteCache(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&cacheRow{}).Error
}

// Clear drops every record of one store. Used by seeding before a fresh write.
func (s *Store) Clear(ctx context.Context, store string) error {
	if err := validStore(store); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("store = ?", store).Delete(&objectRow{}).Error
}

// Count reports how many records one store holds.
func (s *Store) Count(ctx context.Context, store string) (int64, error) {
	if err := validStore(store); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&objectRow{}).Where("store = ?", store).Count(&n).Error
	return n, err
}
