package worker

import (
	"AssetVault/internal/service"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue keeps orphans in the lists the API's RedisOrphanReporter writes to.
type RedisQueue struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, now: time.Now}
}

// promoteScript moves due members of the retry set onto the main list in one step.
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, member in ipairs(due) do
	redis.call('ZREM', KEYS[1], member)
	redis.call('LPUSH', KEYS[2], member)
end
return #due
`)

const promoteBatch = 100

// promoteDue moves retries whose time has come back onto the main list.
func (q *RedisQueue) promoteDue(ctx context.Context) (int64, error) {
	return promoteScript.Run(ctx, q.client,
		[]string{service.OrphanRetryKey, service.OrphanQueueKey},
		strconv.FormatInt(q.now().Unix(), 10), promoteBatch,
	).Int64()
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*service.Orphan, error) {
	if _, err := q.promoteDue(ctx); err != nil {
		return nil, err
	}
	res, err := q.client.BRPop(ctx, timeout, service.OrphanQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var orphan service.Orphan
	if err := json.Unmarshal([]byte(res[1]), &orphan); err != nil {
		// keep the raw payload for an operator
		_ = q.client.LPush(ctx, service.OrphanDeadKey, res[1]).Err()
		return nil, err
	}
	return &orphan, nil
}

func (q *RedisQueue) Retry(ctx context.Context, orphan service.Orphan, at time.Time) error {
	data, err := json.Marshal(orphan)
	if err != nil {
		return err
	}
	return q.client.ZAdd(ctx, service.OrphanRetryKey, redis.Z{Score: float64(at.Unix()), Member: data}).Err()
}

func (q *RedisQueue) Bury(ctx context.Context, orphan service.Orphan) error {
	data, err := json.Marshal(orphan)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, service.OrphanDeadKey, data).Err()
}
