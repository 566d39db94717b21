package worker

import (
	"AssetVault/config"
	"AssetVault/internal/service"
	"AssetVault/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Queue feeds reported orphans to the reaper.
type Queue interface {
	// Pop waits up to timeout for the next orphan; it returns nil when none is ready.
	Pop(ctx context.Context, timeout time.Duration) (*service.Orphan, error)
	Retry(ctx context.Context, orphan service.Orphan, at time.Time) error
	Bury(ctx context.Context, orphan service.Orphan) error
}

// LocatorChecker tells whether the ledger still references a locator.
type LocatorChecker interface {
	LocatorInUse(ctx context.Context, locator string) (bool, error)
}

// Outcome is what happened to one orphan.
type Outcome string

const (
	OutcomeReclaimed  Outcome = "reclaimed"
	OutcomeReferenced Outcome = "referenced"
	OutcomeRetried    Outcome = "retried"
	OutcomeBuried     Outcome = "buried"
)

// Reaper removes stored objects that no ledger row references.
type Reaper struct {
	queue   Queue
	ledger  LocatorChecker
	store   storage.Store
	logger  *slog.Logger
	cfg     config.ReaperConfig
	limiter *rate.Limiter
	now     func() time.Time
}

func NewReaper(queue Queue, ledger LocatorChecker, store storage.Store, logger *slog.Logger, cfg config.ReaperConfig) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	return &Reaper{
		queue:   queue,
		ledger:  ledger,
		store:   store,
		logger:  logger.With(slog.String("component", "orphan_reaper")),
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		now:     time.Now,
	}
}

// Run drains the queue until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	sem := make(chan struct{}, r.cfg.Concurrency)
	for {
		if ctx.Err() != nil {
			break
		}
		orphan, err := r.queue.Pop(ctx, r.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("pop orphan failed", slog.String("err", err.Error()))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if orphan == nil {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			// put it back so a restart picks it up
			_ = r.queue.Retry(context.WithoutCancel(ctx), *orphan, r.now())
			break
		}
		sem <- struct{}{}
		go func(o service.Orphan) {
			defer func() { <-sem }()
			r.Process(ctx, o)
		}(*orphan)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}
	return nil
}

// Process reconciles one orphan and reports what it did.
func (r *Reaper) Process(ctx context.Context, orphan service.Orphan) Outcome {
	log := r.logger.With(
		slog.String("reason", orphan.Reason),
		slog.String("key", orphan.Key),
		slog.String("locator", orphan.Locator),
		slog.Int("attempt", orphan.Attempt),
	)

	key := orphan.Key
	if key == "" && orphan.Locator != "" {
		if parsed, err := r.store.KeyFromLocator(orphan.Locator); err == nil {
			key = parsed
		}
	}
	if key == "" || orphan.Bucket != r.store.Bucket() {
		return r.bury(ctx, log, orphan, errors.New("object key cannot be resolved in this bucket"))
	}

	if orphan.Locator != "" {
		inUse, err := r.ledger.LocatorInUse(ctx, orphan.Locator)
		if err != nil {
			return r.retry(ctx, log, orphan, fmt.Errorf("check ledger: %w", err))
		}
		if inUse {
			log.Info("orphan is referenced again, leaving object in place")
			return OutcomeReferenced
		}
	}

	if err := r.store.RemoveObject(ctx, key); err != nil {
		return r.retry(ctx, log, orphan, fmt.Errorf("remove object: %w", err))
	}
	log.Info("orphaned object reclaimed", slog.String("event", "orphan_reclaimed"))
	return OutcomeReclaimed
}

func (r *Reaper) retry(ctx context.Context, log *slog.Logger, orphan service.Orphan, cause error) Outcome {
	next := orphan.Attempt + 1
	if r.cfg.RetryMax == 0 || next > r.cfg.RetryMax {
		return r.bury(ctx, log, orphan, cause)
	}
	orphan.Attempt = next
	orphan.Error = cause.Error()
	at := r.now().Add(pickRetryDelay(next, r.cfg.RetryDelays))
	if err := r.queue.Retry(context.WithoutCancel(ctx), orphan, at); err != nil {
		log.Error("schedule orphan retry failed", slog.String("err", err.Error()))
	}
	log.Warn("orphan reclaim deferred", slog.String("err", cause.Error()), slog.Time("next_attempt_at", at))
	return OutcomeRetried
}

func (r *Reaper) bury(ctx context.Context, log *slog.Logger, orphan service.Orphan, cause error) Outcome {
	orphan.Error = cause.Error()
	if err := r.queue.Bury(context.WithoutCancel(ctx), orphan); err != nil {
		log.Error("bury orphan failed", slog.String("err", err.Error()))
	}
	log.Error("orphan needs manual reconciliation",
		slog.String("event", "orphan_resource"),
		slog.String("err", cause.Error()),
	)
	return OutcomeBuried
}

func pickRetryDelay(attempt int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	index := attempt - 1
	if index < 0 {
		index = 0
	}
	if index >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[index]
}
