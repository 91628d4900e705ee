package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

// envelope is a frame on the Redis channel. An empty Room is a broadcast.
type envelope struct {
	Room  string          `json:"room,omitempty"`
	Frame json.RawMessage `json:"frame"`
}

// Relay shares rooms across instances. Publish and Broadcast write to a
// Redis pub/sub channel; Run forwards everything on that channel, this
// instance's frames included, into the local sink.
type Relay struct {
	rdb     *redis.Client
	channel string
	local   Sink
}

func NewRelay(rdb *redis.Client, channel string, local Sink) *Relay {
	return &Relay{rdb: rdb, channel: channel, local: local}
}

func (r *Relay) Publish(room string, data []byte) bool {
	if room == "" {
		return false
	}
	return r.send(envelope{Room: room, Frame: data})
}

func (r *Relay) Broadcast(data []byte) bool {
	return r.send(envelope{Frame: data})
}

func (r *Relay) send(env envelope) bool {
	raw, err := json.Marshal(env)
	if err != nil {
		return false
	}
	if err := r.rdb.Publish(context.Background(), r.channel, raw).Err(); err != nil {
		logger.Warn("realtime: relay publish failed", "channel", r.channel, "error", err)
		return false
	}
	return true
}

// Subscribe opens the subscription. Frames published after it returns are
// delivered once Run is called.
func (r *Relay) Subscribe(ctx context.Context) (*redis.PubSub, error) {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	return sub, nil
}

// Run forwards frames from sub until ctx is cancelled or the subscription
// closes.
func (r *Relay) Run(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	logger.Info("realtime: relay listening", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("realtime: relay dropped malformed message", "error", err)
				continue
			}
			if env.Room == "" {
				r.local.Broadcast(env.Frame)
			} else {
				r.local.Publish(env.Room, env.Frame)
			}
		}
	}
}
