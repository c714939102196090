package driven

import (
	"context"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

// SeenStore is the durable, content-addressed record of surfaced items.
// It is the only authority for "is this new" and the only owner of SeenRecords.
type SeenStore interface {
	// FilterNew returns the items whose content hash has not been recorded,
	// recording each one before moving to the next. Order is preserved.
	// A write failure is returned; no partial result is.
	FilterNew(ctx context.Context, items []domain.CandidateItem) ([]domain.CandidateItem, error)

	// Cleanup removes records first seen more than retentionDays ago
	// and returns how many were removed.
	Cleanup(ctx context.Context, retentionDays int) (int64, error)

	// Stats returns the total record count and the count first seen today.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
