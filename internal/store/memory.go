package store

import (
	"context"
	"sort"
	"sync"

	"github.com/i474232898/climate-viewer/internal/climate"
)

// MemoryStore is a concurrency-safe in-memory cache store. Tables are
// created on first write.
type MemoryStore struct {
	mu sync.RWMutex

	// key: table, value: rows keyed by period label
	data map[climate.Table]map[string]climate.Point
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[climate.Table]map[string]climate.Point),
	}
}

// ReadAll returns every row of table ordered by period label.
func (s *MemoryStore) ReadAll(ctx context.Context, table climate.Table) ([]climate.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[table]
	out := make([]climate.Point, 0, len(rows))
	for _, p := range rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out, nil
}

// PutAll upserts points under a single write lock.
func (s *MemoryStore) PutAll(ctx context.Context, table climate.Table, points []climate.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.data[table]
	if !ok {
		rows = make(map[string]climate.Point, len(points))
		s.data[table] = rows
	}
	for _, p := range points {
		rows[p.T] = p
	}
	return nil
}
