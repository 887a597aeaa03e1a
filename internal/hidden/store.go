// Package hidden keeps the durable set of item names the user has hidden.
package hidden

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"osrs_tax_columns/internal/kvstore"

	"github.com/rs/zerolog/log"
)

// DefaultKey is the storage key holding the JSON array of hidden names.
const DefaultKey = "OSRS_HIDDEN_ITEMS"

// Store is the in-memory hidden set, written through to a kvstore.Store on
// every mutation. Insertion order is preserved in the persisted array.
type Store struct {
	kv    kvstore.Store
	key   string
	order []string
	set   map[string]struct{}
	// unread is set while the stored entry could not be read; the next
	// write merges it instead of overwriting it.
	unread bool
}

// Load reads the hidden set from kv. A missing key, a read failure or
// unreadable content all load as an empty set.
func Load(ctx context.Context, kv kvstore.Store, key string) *Store {
	s := &Store{kv: kv, key: key, set: make(map[string]struct{})}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to read hidden items; starting empty")
		s.unread = true
		return s
	}
	if !ok {
		return s
	}

	names, err := decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Hidden items entry is not a JSON string array; starting empty")
		return s
	}
	for _, name := range names {
		s.insert(name)
	}

	log.Debug().Int("count", len(s.order)).Msg("Loaded hidden items")
	return s
}

func decode(raw string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) insert(name string) bool {
	if _, ok := s.set[name]; ok {
		return false
	}
	s.set[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

// Add hides name and persists the set immediately. The in-memory set keeps
// the name even if persisting fails.
func (s *Store) Add(ctx context.Context, name string) error {
	s.insert(name)
	return s.persist(ctx)
}

func (s *Store) Has(name string) bool {
	_, ok := s.set[name]
	return ok
}

func (s *Store) Len() int {
	return len(s.order)
}

// Items returns the hidden names sorted alphabetically.
func (s *Store) Items() []string {
	items := append([]string(nil), s.order...)
	sort.Strings(items)
	return items
}

// Clear empties the set and removes the storage entry entirely.
func (s *Store) Clear(ctx context.Context) error {
	s.order = nil
	s.set = make(map[string]struct{})
	s.unread = false
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear hidden items: %w", err)
	}
	return nil
}

// merge folds the stored entry into the set after a failed load, so names
// persisted earlier are kept ahead of the ones added since.
func (s *Store) merge(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to re-read hidden items: %w", err)
	}
	s.unread = false
	if !ok {
		return nil
	}

	names, err := decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("Hidden items entry is not a JSON string array; overwriting")
		return nil
	}
	added := s.order
	s.order = nil
	s.set = make(map[string]struct{}, len(names)+len(added))
	for _, name := range append(names, added...) {
		s.insert(name)
	}
	log.Info().Int("restored", len(names)).Msg("Merged stored hidden items")
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	if s.unread {
		if err := s.merge(ctx); err != nil {
			return err
		}
	}
	data, err := json.Marshal(s.order)
	if err != nil {
		return fmt.Errorf("failed to encode hidden items: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist hidden items: %w", err)
	}
	return nil
}
