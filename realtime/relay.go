package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Envelope is one emitted frame addressed to a room.
type Envelope struct {
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// Relay carries emits between server instances. Every instance, the
// publisher included, delivers what it receives to its local rooms.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	Run(ctx context.Context, deliver func(Envelope)) error
}

const relayChannel = "roster:realtime"

type RedisRelay struct {
	Client  *redis.Client
	Channel string
}

func NewRedisRelay(client *redis.Client) *RedisRelay {
	return &RedisRelay{Client: client, Channel: relayChannel}
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, r.Channel, data).Err()
}

func (r *RedisRelay) Run(ctx context.Context, deliver func(Envelope)) error {
	sub := r.Client.Subscribe(ctx, r.Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			deliver(env)
		}
	}
}
