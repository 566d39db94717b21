package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys used for orphan reconciliation. OrphanQueueKey is a list fed by the API;
// the reaper parks retries in the OrphanRetryKey sorted set and gives up into OrphanDeadKey.
const (
	OrphanQueueKey = "assetvault:orphans"
	OrphanRetryKey = "assetvault:orphans:retry"
	OrphanDeadKey  = "assetvault:orphans:dead"
)

const (
	OrphanLedgerInsertFailed = "ledger_insert_failed"
	OrphanObjectRemoveFailed = "object_remove_failed"
	OrphanLocatorUnparsable  = "locator_unparsable"
)

// Orphan describes a stored object that no ledger row references.
type Orphan struct {
	Reason  string    `json:"reason"`
	Bucket  string    `json:"bucket"`
	Key     string    `json:"key,omitempty"`
	Locator string    `json:"locator,omitempty"`
	AssetID string    `json:"asset_id,omitempty"`
	OwnerID uint64    `json:"owner_id"`
	Error   string    `json:"error"`
	At      time.Time `json:"at"`
	Attempt int       `json:"attempt,omitempty"`
}

// OrphanReporter records orphans for operators. It must not fail the request.
type OrphanReporter interface {
	Report(ctx context.Context, orphan Orphan)
}

func logOrphan(ctx context.Context, logger *slog.Logger, orphan Orphan) {
	logger.ErrorContext(ctx, "orphaned object requires reconciliation",
		slog.String("event", "orphan_resource"),
		slog.String("reason", orphan.Reason),
		slog.String("bucket", orphan.Bucket),
		slog.String("key", orphan.Key),
		slog.String("locator", orphan.Locator),
		slog.String("asset_id", orphan.AssetID),
		slog.Uint64("owner_id", orphan.OwnerID),
		slog.String("err", orphan.Error),
	)
}

// LogOrphanReporter only logs.
type LogOrphanReporter struct {
	logger *slog.Logger
}

func NewLogOrphanReporter(logger *slog.Logger) *LogOrphanReporter {
	return &LogOrphanReporter{logger: logger}
}

func (r *LogOrphanReporter) Report(ctx context.Context, orphan Orphan) {
	logOrphan(ctx, r.logger, orphan)
}

// RedisOrphanReporter logs and pushes each orphan onto OrphanQueueKey.
type RedisOrphanReporter struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisOrphanReporter(client *redis.Client, logger *slog.Logger) *RedisOrphanReporter {
	return &RedisOrphanReporter{client: client, logger: logger}
}

func (r *RedisOrphanReporter) Report(ctx context.Context, orphan Orphan) {
	logOrphan(ctx, r.logger, orphan)
	data, err := json.Marshal(orphan)
	if err != nil {
		r.logger.ErrorContext(ctx, "encode orphan failed", slog.String("err", err.Error()))
		return
	}
	if err := r.client.LPush(ctx, OrphanQueueKey, data).Err(); err != nil {
		r.logger.ErrorContext(ctx, "enqueue orphan failed",
			slog.String("event", "orphan_resource"),
			slog.String("key", orphan.Key),
			slog.String("err", err.Error()),
		)
	}
}
