package driving

import "context"

// Scheduler triggers pipeline runs on an interval.
type Scheduler interface {
	// Start begins running scheduled passes.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop and waits for an in-flight run.
	Stop() error
}
