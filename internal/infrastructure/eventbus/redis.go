package eventbus

import (
	"context"

	"wager-backend/internal/application/events"

	"github.com/redis/go-redis/v9"
)

// ChannelLedgerEvents is the pub/sub channel every ledger event is published on.
const ChannelLedgerEvents = "wager:events"

// RedisPublisher publishes ledger events as JSON on a Redis channel.
type RedisPublisher struct {
	Rdb     *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{Rdb: rdb, Channel: ChannelLedgerEvents}
}

func (p *RedisPublisher) Emit(ctx context.Context, e events.Event) error {
	b, err := events.Marshal(e)
	if err != nil {
		return err
	}
	return p.Rdb.Publish(ctx, p.Channel, b).Err()
}
