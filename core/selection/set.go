// Package selection - Toggle-membership product sets
// Wishlist, peripheral picks and build marks share this shape: binary membership,
// an optional cached display snapshot per id, full-snapshot persistence per toggle.
package selection

import (
	"context"
	"iter"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/adapters/storage"
	"storefront/core/determinism"
	"storefront/core/types"
	"storefront/internal/errors"
	"storefront/internal/logging"
)

// Storage keys of the known sets
const (
	KeyWishlist    = "peripheralsWishlist"
	KeyPeripherals = "selectedPeripherals"
	KeyBuildMarks  = "pcBuilderItems"
)

// Set is a persisted set of product ids
type Set struct {
	mu      sync.Mutex
	key     string
	entries *determinism.StableMap[string, types.Snapshot]
	store   storage.Store
	logger  *zap.Logger
}

// Open hydrates the set stored under key. Missing state yields an empty set; malformed
// state is logged and discarded.
func Open(ctx context.Context, store storage.Store, key string) (*Set, error) {
	s := &Set{
		key:     key,
		entries: determinism.NewStableMap[string, types.Snapshot](),
		store:   store,
		logger:  logging.Module("selection").With(zap.String("set", key)),
	}

	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, errors.Storage("failed to read "+key, err)
	}
	if !found {
		return s, nil
	}

	res, err := Decode(raw)
	if err != nil {
		s.logger.Warn("discarding persisted set", zap.Error(errors.MalformedState(key, err)))
		return s, nil
	}
	for _, e := range res.Entries {
		s.entries.Set(e.ID, e.Snapshot)
	}

	if res.NeedsRewrite() {
		s.logger.Info("migrated persisted set",
			zap.Int("legacy", res.Legacy),
			zap.Int("dropped", res.Dropped))
		if err := s.persist(ctx); err != nil {
			s.logger.Warn("failed to rewrite migrated set", zap.Error(err))
		}
	}
	return s, nil
}

// Key returns the storage key of the set
func (s *Set) Key() string {
	return s.key
}

// Toggle removes id when present, otherwise adds it with snap.
// It returns whether id is a member afterwards.
func (s *Set) Toggle(ctx context.Context, id string, snap types.Snapshot) (bool, error) {
	if id == "" {
		return false, errors.Input("id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	member := !s.entries.Delete(id)
	if member {
		s.entries.Set(id, snap)
	}
	return member, s.persist(ctx)
}

// Contains reports membership
func (s *Set) Contains(id string) bool {
	return s.entries.Has(id)
}

// Get returns the cached snapshot of id
func (s *Set) Get(id string) (types.Snapshot, bool) {
	return s.entries.Get(id)
}

// All iterates over members in id order. The sequence can be ranged over repeatedly.
func (s *Set) All() iter.Seq2[string, types.Snapshot] {
	return s.entries.All()
}

// IDs returns the member ids in order
func (s *Set) IDs() []string {
	return s.entries.Keys()
}

// Len returns the number of members
func (s *Set) Len() int {
	return s.entries.Len()
}

// Total sums the cached prices of all members
func (s *Set) Total() decimal.Decimal {
	total := decimal.Zero
	for _, snap := range s.All() {
		total = total.Add(snap.Price)
	}
	return total
}

// Clear removes every member
func (s *Set) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.Clear()
	return s.persist(ctx)
}

func (s *Set) persist(ctx context.Context) error {
	entries := make([]Entry, 0, s.entries.Len())
	for id, snap := range s.entries.All() {
		entries = append(entries, Entry{ID: id, Snapshot: snap})
	}
	raw, err := Encode(entries)
	if err != nil {
		return errors.Internal("failed to encode "+s.key, err)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		s.logger.Error("failed to persist set", zap.Error(err))
		return errors.Storage("failed to persist "+s.key, err)
	}
	return nil
}
