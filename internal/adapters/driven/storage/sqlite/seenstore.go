package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
)

// ==================== Seen Store ====================

// seenStore implements driven.SeenStore.
type seenStore struct {
	store *Store
}

var _ driven.SeenStore = (*seenStore)(nil)

// FilterNew records each unseen item before looking at the next one, so
// duplicates inside the batch collapse exactly like duplicates across runs.
func (s *seenStore) FilterNew(ctx context.Context, items []domain.CandidateItem) ([]domain.CandidateItem, error) {
	out := make([]domain.CandidateItem, 0, len(items))
	for _, item := range items {
		rec := domain.SeenRecordFor(item, s.store.now())
		res, err := s.store.db.ExecContext(ctx, `
			INSERT INTO seen_items (content_hash, title, category, first_seen_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(content_hash) DO NOTHING
		`, rec.ContentHash, rec.Title, string(rec.Category), formatTime(rec.FirstSeenAt))
		if err != nil {
			return nil, fmt.Errorf("recording %q: %w", item.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("recording %q: %w", item.Title, err)
		}
		if n == 1 {
			out = append(out, item)
		}
	}
	return out, nil
}

// Cleanup deletes records first seen more than retentionDays ago.
func (s *seenStore) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("%w: retention must be at least 1 day", domain.ErrInvalidInput)
	}
	cutoff := s.store.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM seen_items WHERE first_seen_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting seen items: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts all records and those first seen since midnight UTC.
func (s *seenStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	now := s.store.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var stats domain.StoreStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN first_seen_at >= ? THEN 1 ELSE 0 END), 0)
		FROM seen_items
	`, formatTime(midnight)).Scan(&stats.Total, &stats.Today)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting seen items: %w", err)
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *seenStore) Close() error {
	return s.store.Close()
}

// Get returns a single record by content hash.
func (s *seenStore) Get(ctx context.Context, contentHash string) (*domain.SeenRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT content_hash, title, category, first_seen_at
		FROM seen_items WHERE content_hash = ?
	`, contentHash)
	return scanSeenRecord(row)
}

func scanSeenRecord(row *sql.Row) (*domain.SeenRecord, error) {
	var rec domain.SeenRecord
	var category, firstSeen string
	if err := row.Scan(&rec.ContentHash, &rec.Title, &category, &firstSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Category = domain.Category(category)

	t, err := parseTime(firstSeen)
	if err != nil {
		return nil, fmt.Errorf("parsing first_seen_at: %w", err)
	}
	rec.FirstSeenAt = t
	return &rec, nil
}
