package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Flat-store keys owned by this layer.
const (
	KeyMockDataInitialized = "mockDataInitialized"
	KeyPortfolios          = "portfolios"
	KeyLeasingRequests     = "wanzo_leasing_requests"
	KeyLeasingContracts    = "wanzo_leasing_contracts"
	KeyLeasingEquipments   = "wanzo_leasing_equipments"
	KeyLeasingPortfolios   = "wanzo_leasing_portfolios"
	KeyDisbursements       = "disbursements"
)

// DisbursementContractKey scopes the per-contract disbursement projection.
func DisbursementContractKey(contractRef string) string {
	return "disbursements_contract_" + contractRef
}

// essentialKeys survive both eviction phases; losing them breaks degraded mode.
var essentialKeys = map[string]bool{
	KeyMockDataInitialized: true,
	KeyPortfolios:          true,
	KeyLeasingRequests:     true,
	KeyLeasingContracts:    true,
	KeyLeasingEquipments:   true,
	KeyLeasingPortfolios:   true,
}

// transientPrefixes mark cache-like keys evicted in phase one.
var transientPrefixes = []string{"cache_", "temp_", "log_"}

// Manager is the only writer of the flat key/value store. It enforces a byte
// quota with a two-phase eviction and exactly one retry; callers only ever see
// a boolean outcome.
type Manager struct {
	rdb   *redis.Client
	ns    string
	quota int64
	log   *logrus.Logger
}

func NewManager(rdb *redis.Client, quotaBytes int64, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{rdb: rdb, ns: "wanzo:flat:", quota: quotaBytes, log: log}
}

func (m *Manager) dataKey(key string) string { return m.ns + key }
func (m *Manager) sizesKey() string          { return m.ns + "__sizes" }

func entrySize(key, value string) int64 { return int64(len(key) + len(value)) }

func (m *Manager) usedBytes(ctx context.Context) (int64, error) {
	sizes, err := m.rdb.HGetAll(ctx, m.sizesKey()).Result()
	if err != nil {
		return 0, err
	}
	var used int64
	for _, v := range sizes {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			used += n
		}
	}
	return used, nil
}

// SetItem writes a key. On quota exhaustion it evicts transient keys, then all
// non-essential keys, retries once, and reports failure as false.
func (m *Manager) SetItem(ctx context.Context, key, value string) bool {
	if m.tryWrite(ctx, key, value) {
		return true
	}
	m.log.WithField("key", key).Warn("flat storage quota exceeded, evicting")
	m.evictTransient(ctx)
	if !m.fits(ctx, key, value) {
		m.evictNonEssential(ctx)
	}
	// exactly one retry after eviction
	if m.tryWrite(ctx, key, value) {
		return true
	}
	m.log.WithField("key", key).Warn("flat storage write failed after eviction")
	return false
}

func (m *Manager) fits(ctx context.Context, key, value string) bool {
	used, err := m.usedBytes(ctx)
	if err != nil {
		return false
	}
	old, err := m.rdb.HGet(ctx, m.sizesKey(), key).Result()
	var oldSize int64
	if err == nil {
		oldSize, _ = strconv.ParseInt(old, 10, 64)
	}
	return used-oldSize+entrySize(key, value) <= m.quota
}

func (m *Manager) tryWrite(ctx context.Context, key, value string) bool {
	if !m.fits(ctx, key, value) {
		return false
	}
	pipe := m.rdb.TxPipeline()
	pipe.Set(ctx, m.dataKey(key), value, 0)
	pipe.HSet(ctx, m.sizesKey(), key, entrySize(key, value))
	if _, err := pipe.Exec(ctx); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("flat storage write error")
		return false
	}
	return true
}

func (m *Manager) evictTransient(ctx context.Context) {
	m.evict(ctx, func(key string) bool {
		for _, p := range transientPrefixes {
			if strings.HasPrefix(key, p) {
				return true
			}
		}
		return false
	})
}

func (m *Manager) evictNonEssential(ctx context.Context) {
	m.evict(ctx, func(key string) bool { return !essentialKeys[key] })
}

func (m *Manager) evict(ctx context.Context, match func(string) bool) {
	keys, err := m.rdb.HKeys(ctx, m.sizesKey()).Result()
	if err != nil {
		return
	}
	for _, key := range keys {
		if !match(key) {
			continue
		}
		pipe := m.rdb.TxPipeline()
		pipe.Del(ctx, m.dataKey(key))
		pipe.HDel(ctx, m.sizesKey(), key)
		if _, err := pipe.Exec(ctx); err == nil {
			m.log.WithField("key", key).Info("evicted flat storage key")
		}
	}
}

func (m *Manager) GetItem(ctx context.Context, key string) (string, bool) {
	v, err := m.rdb.Get(ctx, m.dataKey(key)).Result()
	if err != nil {
		if err != redis.Nil {
			m.log.WithError(err).WithField("key", key).Warn("flat storage read error")
		}
		return "", false
	}
	return v, true
}

func (m *Manager) RemoveItem(ctx context.Context, key string) bool {
	pipe := m.rdb.TxPipeline()
	del := pipe.Del(ctx, m.dataKey(key))
	pipe.HDel(ctx, m.sizesKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false
	}
	return del.Val() > 0
}

func (m *Manager) Keys(ctx context.Context) []string {
	keys, err := m.rdb.HKeys(ctx, m.sizesKey()).Result()
	if err != nil {
		return nil
	}
	return keys
}

// GetJSON unmarshals a stored value; a missing key reports false with no error.
func (m *Manager) GetJSON(ctx context.Context, key string, out any) bool {
	v, ok := m.GetItem(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("flat storage decode error")
		return false
	}
	return true
}

func (m *Manager) SetJSON(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Warn("flat storage encode error")
		return false
	}
	return m.SetItem(ctx, key, string(raw))
}
