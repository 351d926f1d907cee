package composition

import (
	"context"
	"sort"
	"sync"
)

// DefaultHistoryLimit is the number of records NewMemoryRepository keeps.
const DefaultHistoryLimit = 1000

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
// It keeps at most limit records and evicts the oldest one when full.
// Records do not survive a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Composition
	order []string // insertion order, oldest first
	limit int
}

// NewMemoryRepository creates a repository holding up to limit records.
// A non-positive limit means DefaultHistoryLimit.
func NewMemoryRepository(limit int) *MemoryRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryRepository{
		items: make(map[string]*Composition),
		limit: limit,
	}
}

// Save stores a clone to avoid external mutations.
func (r *MemoryRepository) Save(_ context.Context, c *Composition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[c.ID]; !ok {
		if len(r.order) >= r.limit {
			oldest := r.order[0]
			r.order = r.order[1:]
			delete(r.items, oldest)
		}
		r.order = append(r.order, c.ID)
	}
	r.items[c.ID] = c.Clone()
	return nil
}

// FindByID returns a clone to prevent external mutations.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Composition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

// List returns clones of all records, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]*Composition, error) {
	r.mu.RLock()
	result := make([]*Composition, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		result = append(result, r.items[r.order[i]].Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
