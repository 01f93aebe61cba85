// Package memory provides process-local implementations of the model stores.
package memory

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dtroode/licensekeeper/internal/model"
)

// Predicate selects rows of a Table.
type Predicate[T any] func(T) bool

// And matches rows accepted by every predicate.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(row T) bool {
		for _, p := range preds {
			if !p(row) {
				return false
			}
		}
		return true
	}
}

// Or matches rows accepted by any predicate.
func Or[T any](preds ...Predicate[T]) Predicate[T] {
	return func(row T) bool {
		for _, p := range preds {
			if p(row) {
				return true
			}
		}
		return false
	}
}

// Like is the case-insensitive match used for "like" lookups.
func Like(value, pattern string) bool {
	return strings.EqualFold(value, pattern)
}

// Table is a concurrency-safe row set keyed by an auto-assigned int64 ID.
type Table[T any] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
	getID  func(T) int64
	setID  func(*T, int64)
}

// NewTable returns an empty table using getID and setID to access row IDs.
func NewTable[T any](getID func(T) int64, setID func(*T, int64)) *Table[T] {
	return &Table[T]{
		rows:  make(map[int64]T),
		getID: getID,
		setID: setID,
	}
}

// Insert assigns the next ID to row and stores it.
func (t *Table[T]) Insert(row T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.insertLocked(row)
}

// InsertUnique stores row unless an existing row matches dup.
func (t *Table[T]) InsertUnique(row T, dup Predicate[T]) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.rows {
		if dup(existing) {
			var zero T
			return zero, model.ErrConflict
		}
	}
	return t.insertLocked(row), nil
}

func (t *Table[T]) insertLocked(row T) T {
	t.nextID++
	t.setID(&row, t.nextID)
	t.rows[t.nextID] = row
	return row
}

// Get returns the row with id or model.ErrNotFound.
func (t *Table[T]) Get(id int64) (T, error) {
	row, ok := t.TryGet(id)
	if !ok {
		return row, model.ErrNotFound
	}
	return row, nil
}

func (t *Table[T]) TryGet(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	return row, ok
}

// Update replaces an existing row or returns model.ErrNotFound.
func (t *Table[T]) Update(row T) error {
	if !t.TryUpdate(row) {
		return model.ErrNotFound
	}
	return nil
}

func (t *Table[T]) TryUpdate(row T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.getID(row)
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

// Delete removes the row with id or returns model.ErrNotFound.
func (t *Table[T]) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return model.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// DeleteWhere removes every matching row and returns how many were removed.
func (t *Table[T]) DeleteWhere(pred Predicate[T]) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, row := range t.rows {
		if pred(row) {
			delete(t.rows, id)
			n++
		}
	}
	return n
}

// Query returns matching rows in ascending ID order.
func (t *Table[T]) Query(pred Predicate[T]) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []T
	for _, id := range slices.Sorted(maps.Keys(t.rows)) {
		if row := t.rows[id]; pred(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) Exists(pred Predicate[T]) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if pred(row) {
			return true
		}
	}
	return false
}

func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.rows)
}
