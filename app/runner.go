package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ainews/domain"
	"ainews/internal/logging"
)

// Run triggers.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerStartup  = "startup"
	TriggerCLI      = "cli"
)

// Runner performs one sequential pass over every source. Sources run in the
// order given and their candidates are reconciled one at a time.
type Runner struct {
	sources    []domain.Source
	reconciler *Reconciler
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner builds a runner. A zero timeout leaves runs unbounded apart from
// the per-request HTTP timeouts.
func NewRunner(sources []domain.Source, reconciler *Reconciler, timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{
		sources:    sources,
		reconciler: reconciler,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Sources returns the configured sources in run order.
func (r *Runner) Sources() []domain.Source { return r.sources }

// Run never fails as a whole; per-source failures are recorded in the summary.
func (r *Runner) Run(ctx context.Context, trigger string) domain.RunSummary {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	summary := domain.RunSummary{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: r.now(),
		Sources:   make([]domain.SourceResult, 0, len(r.sources)),
	}
	log := r.logger.With("run_id", summary.ID)
	log.Info("crawl started", "trigger", trigger, "sources", len(r.sources))

	for _, src := range r.sources {
		res := r.runSource(ctx, log.With("source", src.Name()), src)
		summary.Sources = append(summary.Sources, res)
	}

	summary.FinishedAt = r.now()
	totals := summary.Totals()
	log.Info("crawl finished",
		"duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
		"fetched", totals.Fetched,
		"created", totals.Created,
		"updated", totals.Updated,
		"skipped", totals.Skipped,
		"failed_sources", len(summary.Failed()),
	)
	return summary
}

func (r *Runner) runSource(ctx context.Context, log *slog.Logger, src domain.Source) domain.SourceResult {
	var res domain.SourceResult
	res.Name = src.Name()

	log.Info("crawling source")
	items, err := r.fetch(ctx, src)
	if err != nil {
		res.Err = err
		log.Error("crawl error", logging.Err(err))
		return res
	}
	res.Fetched = len(items)

	for _, item := range items {
		if ctx.Err() != nil {
			res.Err = fmt.Errorf("run interrupted: %w", ctx.Err())
			log.Warn("crawl interrupted", "remaining", res.Fetched-res.Created-res.Updated-res.Skipped)
			return res
		}
		res.Record(r.reconcile(ctx, log, src, item))
	}

	log.Info("crawl completed", "fetched", res.Fetched, "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
	return res
}

func (r *Runner) fetch(ctx context.Context, src domain.Source) (items []domain.Candidate, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("source panicked: %v", p)
		}
	}()
	return src.FetchCandidates(ctx)
}

// reconcile confines a panic to the candidate that caused it.
func (r *Runner) reconcile(ctx context.Context, log *slog.Logger, src domain.Source, item domain.Candidate) (action domain.Action) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("reconcile panicked", "url", item.URL, "panic", fmt.Sprint(p))
			action = domain.Skipped
		}
	}()
	return r.reconciler.Reconcile(ctx, src, item)
}
