package stream

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

// Emitter pushes domain events to connected sessions, best effort. There
// is no persistence, replay or acknowledgement; a failure is logged and
// the triggering operation proceeds.
type Emitter interface {
	Emit(ctx context.Context, ev domain.Event)
}

// Broadcaster publishes event envelopes to a redis channel. The hub's
// subscription loop on the other side fans them out to live sessions.
type Broadcaster struct {
	rc      *redis.Client
	channel string
	logger  *log.Logger
}

// NewBroadcaster creates a Broadcaster publishing on the given channel.
func NewBroadcaster(rc *redis.Client, channel string, logger *log.Logger) *Broadcaster {
	return &Broadcaster{rc: rc, channel: channel, logger: logger}
}

// Emit publishes the event. Callers must only emit after their write has
// committed so clients never observe state they cannot read back.
func (b *Broadcaster) Emit(ctx context.Context, ev domain.Event) {
	data, err := sonic.Marshal(ev)
	if err != nil {
		b.logger.WithField("event", ev.Name).Errorf("marshal event: %v", err)
		return
	}
	if err := b.rc.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.WithField("event", ev.Name).Errorf("publish event: %v", err)
	}
}
