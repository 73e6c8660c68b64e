// Package favorites owns the persisted set of favorited record ids.
package favorites

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dpshade/prompt-catalog/internal/storage"
)

// DefaultKey is the storage key holding the JSON array of ids.
const DefaultKey = "gptp_fav"

// Set is an immutable set of ids that remembers insertion order.
type Set struct {
	ids   []string
	index map[string]struct{}
}

// NewSet builds a set from ids, dropping blanks and duplicates.
func NewSet(ids ...string) Set {
	s := Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Has reports membership. The zero Set is empty.
func (s Set) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of ids.
func (s Set) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order.
func (s Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Toggle returns a new set with id added if absent or removed if present.
func (s Set) Toggle(id string) Set {
	if s.Has(id) {
		kept := make([]string, 0, len(s.ids))
		for _, existing := range s.ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		return NewSet(kept...)
	}
	return NewSet(append(s.IDs(), id)...)
}

// Equal reports whether both sets hold the same ids, ignoring order.
func (s Set) Equal(other Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Store loads and persists the favorites set through a storage.KV. Storage
// failures never reach callers: the in-memory set stays authoritative for
// the session and the failure is logged.
type Store struct {
	kv     storage.KV
	key    string
	logger *zap.Logger

	mu  sync.Mutex
	set Set
}

// NewStore creates a store over kv. An empty key selects DefaultKey.
func NewStore(kv storage.KV, key string, logger *zap.Logger) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, key: key, logger: logger.Named("favorites"), set: NewSet()}
}

// Load reads the persisted ids. Missing or malformed data yields an empty set.
func (s *Store) Load(ctx context.Context) Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set = NewSet()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read favorites, starting empty", zap.Error(err))
		return s.set
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return s.set
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn("ignoring malformed favorites", zap.Error(err))
		return s.set
	}

	s.set = NewSet(ids...)
	s.logger.Debug("favorites loaded", zap.Int("count", s.set.Len()))
	return s.set
}

// Toggle flips membership of id and persists the whole set before returning.
func (s *Store) Toggle(ctx context.Context, id string) Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set = s.set.Toggle(id)
	s.persist(ctx)
	return s.set
}

// Contains reports whether id is a favorite.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Has(id)
}

// Has lets a Store be used directly as a filter membership.
func (s *Store) Has(id string) bool {
	return s.Contains(id)
}

// Set returns the current set.
func (s *Store) Set() Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.set.IDs())
	if err != nil {
		s.logger.Warn("failed to encode favorites", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Warn("failed to persist favorites, keeping in memory", zap.Error(err))
	}
}
