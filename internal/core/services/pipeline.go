package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driven"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driving"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

// Ensure Pipeline implements the interfaces.
var (
	_ driving.PipelineRunner  = (*Pipeline)(nil)
	_ driving.StoreMaintainer = (*Pipeline)(nil)
)

// PipelineConfig holds run-level settings.
type PipelineConfig struct {
	// RetentionDays is the maintenance window for seen records.
	RetentionDays int

	// RunTimeout bounds one pass. Zero means no limit.
	RunTimeout time.Duration
}

// Pipeline sequences collection, deduplication, verification and handoff.
// Only one pass runs at a time.
type Pipeline struct {
	cfg        PipelineConfig
	collectors []CategoryCollector
	store      driven.SeenStore
	verifier   ItemVerifier
	deliverer  driven.Deliverer

	running sync.Mutex
	now     func() time.Time
}

// NewPipeline creates the orchestrator.
func NewPipeline(
	cfg PipelineConfig,
	collectors []CategoryCollector,
	store driven.SeenStore,
	verifier ItemVerifier,
	deliverer driven.Deliverer,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		collectors: collectors,
		store:      store,
		verifier:   verifier,
		deliverer:  deliverer,
		now:        time.Now,
	}
}

// RunOnce executes one pass. A failure at any stage is reported to the
// deliverer as a best-effort notice and returned; it never panics.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.RunReport, error) {
	if !p.running.TryLock() {
		return domain.RunReport{}, domain.ErrRunInProgress
	}
	defer p.running.Unlock()

	report := domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
	}
	logger.Section("Pipeline Run " + report.RunID)

	runCtx := ctx
	if p.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.cfg.RunTimeout)
		defer cancel()
	}

	err := p.run(runCtx, &report)
	report.EndedAt = p.now()

	if err != nil {
		logger.Error("Run %s failed after %s: %v", report.RunID, report.Duration(), err)
		notifyCtx := context.WithoutCancel(ctx)
		if nerr := p.deliverer.NotifyFailure(notifyCtx, report.RunID, err); nerr != nil {
			logger.Warn("Failure notice for run %s not sent: %v", report.RunID, nerr)
		}
		return report, err
	}

	logger.Info("Run %s: collected=%d new=%d delivered=%d rejected=%d degraded=%d in %s",
		report.RunID, report.Collected, report.New, report.Delivered, report.Rejected,
		len(report.Errors), report.Duration())
	return report, nil
}

// run walks the stages. Panics are converted to errors.
func (p *Pipeline) run(ctx context.Context, report *domain.RunReport) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	// 1. Collect every category concurrently
	results := p.collect(ctx)
	for _, r := range results {
		report.Errors = append(report.Errors, r.Errors...)
	}

	// 2. Filter out already-seen items
	var fresh []domain.CandidateItem
	for _, r := range results {
		if len(r.Items) == 0 {
			continue
		}
		report.Collected += len(r.Items)
		items, err := p.store.FilterNew(ctx, r.Items)
		if err != nil {
			return fmt.Errorf("filter new %s items: %w", r.Category, err)
		}
		logger.Debug("[%s] %d of %d items are new", r.Category, len(items), len(r.Items))
		fresh = append(fresh, items...)
	}
	report.New = len(fresh)

	// 3. Verify in one batch, then re-partition by category tag
	verified := p.verifier.Verify(ctx, fresh)
	digest := domain.Digest{
		RunID:       report.RunID,
		GeneratedAt: p.now(),
		Sections:    make(map[domain.Category][]domain.VerifiedItem, len(results)),
		Errors:      report.Errors,
	}
	for _, r := range results {
		digest.Prices = append(digest.Prices, r.Prices...)
		digest.Quotes = append(digest.Quotes, r.Quotes...)
		digest.Sections[r.Category] = []domain.VerifiedItem{}
	}
	for _, item := range verified {
		if !item.Trusted {
			digest.Rejected++
			logger.Debug("Rejected %q (%s): %s", item.Title, item.Source, item.Note)
			continue
		}
		digest.Sections[item.Category] = append(digest.Sections[item.Category], item)
	}
	report.Rejected = digest.Rejected
	report.Delivered = digest.ItemCount()

	// 4. Hand off
	if err := p.deliverer.Deliver(ctx, digest); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}
	report.Handoff = true

	// 5. Maintenance
	pruned, err := p.store.Cleanup(ctx, p.cfg.RetentionDays)
	if err != nil {
		logger.Warn("Seen store cleanup failed: %v", err)
	} else {
		report.Pruned = pruned
	}

	return nil
}

// collect runs all collectors. A crashed collector degrades to an empty
// result with one error entry.
func (p *Pipeline) collect(ctx context.Context) []domain.CollectionResult {
	tasks := make([]Task[domain.CollectionResult], len(p.collectors))
	for i, c := range p.collectors {
		tasks[i] = func(ctx context.Context) (domain.CollectionResult, error) {
			return c.Collect(ctx), nil
		}
	}

	settled := SettleAll(ctx, tasks)
	results := make([]domain.CollectionResult, len(settled))
	for i, s := range settled {
		category := p.collectors[i].Category()
		if s.Err != nil {
			msg := fmt.Sprintf("%s collector: %v", category.Label(), s.Err)
			logger.Warn("%s", msg)
			results[i] = domain.CollectionResult{Category: category, Errors: []string{msg}}
			continue
		}
		results[i] = s.Value
		results[i].Category = category
	}
	return results
}

// Stats returns the seen store size.
func (p *Pipeline) Stats(ctx context.Context) (domain.StoreStats, error) {
	stats, err := p.store.Stats(ctx)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("seen store stats: %w", err)
	}
	return stats, nil
}

// Cleanup prunes the seen store outside a run. It waits for any in-flight
// run to finish first.
func (p *Pipeline) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, fmt.Errorf("%w: retention must be at least 1 day", domain.ErrInvalidInput)
	}
	p.running.Lock()
	defer p.running.Unlock()

	removed, err := p.store.Cleanup(ctx, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("seen store cleanup: %w", err)
	}
	return removed, nil
}
