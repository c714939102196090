package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// Ensure SeenStore implements the interface.
var _ driven.SeenStore = (*SeenStore)(nil)

// SeenStore is an in-memory implementation of driven.SeenStore.
// Nothing survives the process; it backs dry runs and tests.
type SeenStore struct {
	mu      sync.RWMutex
	records map[string]domain.SeenRecord
	now     func() time.Time
}

// NewSeenStore creates a new in-memory seen store.
func NewSeenStore() *SeenStore {
	return &SeenStore{
		records: make(map[string]domain.SeenRecord),
		now:     time.Now,
	}
}

// FilterNew returns unseen items, recording each before checking the next.
func (s *SeenStore) FilterNew(ctx context.Context, items []domain.CandidateItem) ([]domain.CandidateItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CandidateItem, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := domain.SeenRecordFor(item, s.now())
		if _, ok := s.records[rec.ContentHash]; ok {
			continue
		}
		s.records[rec.ContentHash] = rec
		out = append(out, item)
	}
	return out, nil
}

// Cleanup removes records first seen before the retention window.
func (s *SeenStore) Cleanup(_ context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("%w: retention must be at least 1 day", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	var removed int64
	for hash, rec := range s.records {
		if rec.FirstSeenAt.Before(cutoff) {
			delete(s.records, hash)
			removed++
		}
	}
	return removed, nil
}

// Stats counts all records and those first seen since midnight UTC.
func (s *SeenStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := domain.StoreStats{Total: len(s.records)}
	for _, rec := range s.records {
		if !rec.FirstSeenAt.Before(midnight) {
			stats.Today++
		}
	}
	return stats, nil
}

// Close is a no-op.
func (s *SeenStore) Close() error {
	return nil
}
