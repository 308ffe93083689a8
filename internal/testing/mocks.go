package testing

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/rfitrainer/internal/modules/srs"
)

// MockReviewSource is an in-memory stand-in for the repetition store's read
// side. It satisfies the selector's and the scheduler's review interfaces.
type MockReviewSource struct {
	mu      sync.RWMutex
	records []srs.Record
	err     error
	calls   int
}

// NewMockReviewSource creates a new mock review source
func NewMockReviewSource(records ...srs.Record) *MockReviewSource {
	return &MockReviewSource{records: records}
}

// SetRecords sets the records to return
func (m *MockReviewSource) SetRecords(records []srs.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// SetError sets the error to return
func (m *MockReviewSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many reads were served.
func (m *MockReviewSource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// DueItems returns the records due at now
func (m *MockReviewSource) DueItems(_ context.Context, now time.Time) ([]srs.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	due := make([]srs.Record, 0, len(m.records))
	for _, rec := range m.records {
		if rec.IsDue(now) {
			due = append(due, rec)
		}
	}
	return due, nil
}

// All returns every record
func (m *MockReviewSource) All(_ context.Context) ([]srs.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]srs.Record(nil), m.records...), nil
}

// Count returns the number of records
func (m *MockReviewSource) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return len(m.records), nil
}
