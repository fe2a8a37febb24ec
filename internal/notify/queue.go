package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/workflow"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const QueueKey = "queue:notifications"

// Queue moves notifications off the request path through a Redis list.
// The API pushes; cmd/mailer pops and sends.
type Queue struct {
	client  *redis.Client
	key     string
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewQueue(client *redis.Client, m *metrics.Metrics, log *zap.Logger) *Queue {
	return &Queue{client: client, key: QueueKey, metrics: m, log: log}
}

func (q *Queue) Dispatch(ctx context.Context, ns []workflow.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	values := make([]any, 0, len(ns))
	for _, n := range ns {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		values = append(values, string(data))
	}

	if err := q.client.RPush(ctx, q.key, values...).Err(); err != nil {
		return err
	}
	for _, n := range ns {
		q.metrics.NotificationsQueued.WithLabelValues(n.Topic.String()).Inc()
	}
	return nil
}

// Consume pops notifications until ctx is done. A failed send is logged
// and dropped.
func (q *Queue) Consume(ctx context.Context, sender Sender) error {
	for {
		res, err := q.client.BLPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			q.log.Error("queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		// res is [key, value]
		var n workflow.Notification
		if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
			q.log.Error("failed to unmarshal notification", zap.Error(err))
			continue
		}
		if err := sender.Send(ctx, n); err != nil {
			q.log.Error("queued notification failed", zap.String("topic", n.Topic.String()), zap.Error(err))
		}
	}
}
