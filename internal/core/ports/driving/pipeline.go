package driving

import (
	"context"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

// PipelineRunner is the single entry point of the core: run one pass of
// collection, deduplication, verification and handoff. Callers do not need
// to know whether they are a schedule or a manual trigger.
type PipelineRunner interface {
	// RunOnce executes one pass. It returns domain.ErrRunInProgress if a pass
	// is already running. A non-nil error means no digest was delivered.
	RunOnce(ctx context.Context) (domain.RunReport, error)
}

// StoreMaintainer exposes deduplication store housekeeping.
type StoreMaintainer interface {
	// Stats returns the store size.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Cleanup prunes records older than retentionDays.
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}
