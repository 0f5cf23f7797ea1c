// Package determinism provides primitives for deterministic iteration.
// Collections that are rendered or persisted use these instead of bare maps so that
// output and serialized snapshots do not depend on Go's randomized map order.
package determinism

import (
	"cmp"
	"iter"
	"slices"
	"sync"
)

// StableMap is a map that iterates in ascending key order.
type StableMap[K cmp.Ordered, V any] struct {
	mu     sync.RWMutex
	keys   []K
	values map[K]V
}

// NewStableMap creates a new StableMap
func NewStableMap[K cmp.Ordered, V any]() *StableMap[K, V] {
	return &StableMap[K, V]{
		values: make(map[K]V),
	}
}

// Set adds or updates a key-value pair
func (m *StableMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.values[key]; !exists {
		i, _ := slices.BinarySearch(m.keys, key)
		m.keys = slices.Insert(m.keys, i, key)
	}
	m.values[key] = value
}

// Get retrieves a value by key
func (m *StableMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[key]
	return val, ok
}

// Has reports whether key is present
func (m *StableMap[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes a key. It reports whether the key was present.
func (m *StableMap[K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	if i, found := slices.BinarySearch(m.keys, key); found {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

// Clear removes every entry
func (m *StableMap[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = nil
	m.values = make(map[K]V)
}

// All iterates in sorted key order. The key set is captured when iteration starts,
// so the sequence may be restarted and tolerates mutation by the loop body.
func (m *StableMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.Keys() {
			v, ok := m.Get(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Values returns the values in key order
func (m *StableMap[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// Keys returns all keys in sorted order
func (m *StableMap[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.keys)
}

// Len returns the number of entries
func (m *StableMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
