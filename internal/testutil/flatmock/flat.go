package flatmock

import (
	"context"
	"encoding/json"
	"sync"
)

// Flat is an in-memory stand-in for the flat key/value storage manager. It
// covers both the string and the JSON surface so one instance serves every
// usecase interface.
type Flat struct {
	mu   sync.Mutex
	Data map[string]string

	// FailWrites makes every SetItem/SetJSON report false, simulating a full
	// store that already evicted everything it could.
	FailWrites bool
}

func New() *Flat { return &Flat{Data: map[string]string{}} }

func (f *Flat) GetItem(_ context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.Data[key]
	return v, ok
}

func (f *Flat) SetItem(_ context.Context, key, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites {
		return false
	}
	f.Data[key] = value
	return true
}

func (f *Flat) RemoveItem(_ context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Data[key]
	delete(f.Data, key)
	return ok
}

func (f *Flat) GetJSON(ctx context.Context, key string, out any) bool {
	v, ok := f.GetItem(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(v), out) == nil
}

func (f *Flat) SetJSON(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return f.SetItem(ctx, key, string(raw))
}
