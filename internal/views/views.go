package views

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Topic names a cached view that must be dropped after a mutation touching
// the data it is built from. Stale views are user-visible bugs in this
// domain, so the fan-out per operation is part of each operation's contract.
type Topic string

const (
	TopicManagerSchedule  Topic = "manager-schedule"
	TopicEmployeeSchedule Topic = "employee-schedule"
	TopicEmployeeTeam     Topic = "employee-team"
	TopicManagerDashboard Topic = "manager-dashboard"
	TopicManagerSwaps     Topic = "manager-swaps"
	TopicEmployeeSwaps    Topic = "employee-swaps"
	TopicGroupDetail      Topic = "group-detail"
)

type Invalidator interface {
	Invalidate(ctx context.Context, companyID int64, topics ...Topic) error
}

// RedisInvalidator drops the per-company cache key of every listed topic.
type RedisInvalidator struct {
	client *redis.Client
}

func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

func Key(companyID int64, topic Topic) string {
	return fmt.Sprintf("view_%d_%s", companyID, topic)
}

func (inv *RedisInvalidator) Invalidate(ctx context.Context, companyID int64, topics ...Topic) error {
	if len(topics) == 0 {
		return nil
	}

	keys := make([]string, len(topics))
	for i, topic := range topics {
		keys[i] = Key(companyID, topic)
	}

	return inv.client.Del(ctx, keys...).Err()
}

// Noop satisfies Invalidator where no cache is wired, e.g. in tests and the
// seeder.
type Noop struct{}

func (Noop) Invalidate(context.Context, int64, ...Topic) error { return nil }
