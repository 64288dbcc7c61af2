package stream

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

// SubscribeEvents consumes event envelopes from the redis channel and
// hands them to the hub until ctx is cancelled. The subscription is
// re-established after a closed pub/sub channel.
func SubscribeEvents(ctx context.Context, logger *log.Logger, rc *redis.Client, channel string, hub *Hub) {
	for {
		sub := rc.Subscribe(ctx, channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var ev domain.Event
				if err := sonic.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.Errorf("unable to parse event: %v", err)
					continue
				}
				hub.Dispatch(ev)
			}
		}
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Error("pubsub channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
