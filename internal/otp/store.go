package otp

import (
	"context"
	"sync"
	"time"
)

// UsedCodeStore records codes that were already accepted.
type UsedCodeStore interface {
	// Purge drops entries accepted at a step before the given one.
	Purge(ctx context.Context, before int64) error
	Contains(ctx context.Context, key string) (bool, error)
	// Add records key unless it is present and reports whether it was added.
	// ttl is a hint for stores that expire entries on their own.
	Add(ctx context.Context, key string, step int64, ttl time.Duration) (bool, error)
}

var _ UsedCodeStore = (*MemoryUsedCodes)(nil)

// MemoryUsedCodes is a process-local UsedCodeStore.
type MemoryUsedCodes struct {
	codes sync.Map
}

func NewMemoryUsedCodes() *MemoryUsedCodes {
	return &MemoryUsedCodes{}
}

func (m *MemoryUsedCodes) Purge(_ context.Context, before int64) error {
	m.codes.Range(func(key, value any) bool {
		if value.(int64) < before {
			m.codes.CompareAndDelete(key, value)
		}
		return true
	})
	return nil
}

func (m *MemoryUsedCodes) Contains(_ context.Context, key string) (bool, error) {
	_, ok := m.codes.Load(key)
	return ok, nil
}

func (m *MemoryUsedCodes) Add(_ context.Context, key string, step int64, _ time.Duration) (bool, error) {
	_, loaded := m.codes.LoadOrStore(key, step)
	return !loaded, nil
}

// Len returns the number of recorded codes.
func (m *MemoryUsedCodes) Len() int {
	n := 0
	m.codes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
