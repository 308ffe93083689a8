package srs

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// InMemoryRepository keeps records in a map. Used by tests and when the
// trainer runs without a data directory.
type InMemoryRepository struct {
	records map[string]Record
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository(log zerolog.Logger) *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]Record),
		log:     log.With().Str("repository", "srs_inmemory").Logger(),
	}
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *InMemoryRepository) Upsert(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.ID] = rec
	return nil
}

func (r *InMemoryRepository) DueBefore(_ context.Context, atMs int64) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []Record
	for _, rec := range r.records {
		if rec.NextReviewAt <= atMs {
			due = append(due, rec)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextReviewAt < due[j].NextReviewAt })
	return due, nil
}

func (r *InMemoryRepository) All(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

func (r *InMemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string]Record)
	return nil
}

func (r *InMemoryRepository) ReplaceAll(_ context.Context, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string]Record, len(records))
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return nil
}
