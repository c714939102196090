package driven

import (
	"context"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

// Deliverer formats and sends the digest to an end-user channel.
type Deliverer interface {
	// Deliver hands off a completed digest. Called once per successful run.
	Deliver(ctx context.Context, digest domain.Digest) error

	// NotifyFailure reports a run that ended without a digest.
	// It is best-effort; callers log and ignore its error.
	NotifyFailure(ctx context.Context, runID string, cause error) error
}
