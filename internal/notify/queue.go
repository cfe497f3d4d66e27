// AngelaMos | 2026
// queue.go

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/kandi-backend/internal/config"
	"github.com/carterperez-dev/kandi-backend/internal/core"
)

type Message struct {
	ID    string
	Email Email
}

type Queue interface {
	Add(ctx context.Context, email Email) error
	Read(ctx context.Context) ([]Message, error)
	Ack(ctx context.Context, id string) error
	DeadLetter(ctx context.Context, email Email, reason string) error
	Reclaim(ctx context.Context, minIdle time.Duration) ([]Message, error)
}

// RedisQueue stores pending emails in a Redis stream read through a
// consumer group. Read only hands out new entries; anything delivered and
// left un-acked stays in the group's pending list until Reclaim takes it.
type RedisQueue struct {
	client     *redis.Client
	stream     string
	deadLetter string
	group      string
	consumer   string
	block      time.Duration
	batch      int64
}

func NewRedisQueue(
	ctx context.Context,
	client *redis.Client,
	cfg config.NotifyConfig,
) (*RedisQueue, error) {
	if err := core.EnsureStreamGroup(ctx, client, cfg.Stream, cfg.Group); err != nil {
		return nil, err
	}

	return &RedisQueue{
		client:     client,
		stream:     cfg.Stream,
		deadLetter: cfg.DeadLetter,
		group:      cfg.Group,
		consumer:   cfg.Consumer,
		block:      cfg.Block,
		batch:      cfg.Batch,
	}, nil
}

func (q *RedisQueue) Add(ctx context.Context, email Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{"payload": payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", q.stream, err)
	}

	return nil
}

func (q *RedisQueue) Read(ctx context.Context) ([]Message, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    q.batch,
		Block:    q.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup %s: %w", q.stream, err)
	}

	var out []Message
	for _, stream := range streams {
		out = append(out, q.decode(ctx, stream.Messages)...)
	}

	return out, nil
}

// Reclaim moves entries that have sat un-acked for at least minIdle to
// this consumer and returns them. That covers failed requeues, failed
// dead-letter writes and messages held by a consumer that died.
func (q *RedisQueue) Reclaim(ctx context.Context, minIdle time.Duration) ([]Message, error) {
	msgs, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    q.batch,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xautoclaim %s: %w", q.stream, err)
	}

	return q.decode(ctx, msgs), nil
}

func (q *RedisQueue) decode(ctx context.Context, msgs []redis.XMessage) []Message {
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		email, err := decodeEmail(msg.Values)
		if err != nil {
			// Unreadable payloads can never succeed; park them.
			//nolint:errcheck // best-effort quarantine
			_ = q.DeadLetter(ctx, Email{}, err.Error())
			//nolint:errcheck // best-effort ack of poison message
			_ = q.Ack(ctx, msg.ID)
			continue
		}
		out = append(out, Message{ID: msg.ID, Email: email})
	}
	return out
}

func (q *RedisQueue) Ack(ctx context.Context, id string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, id).Err(); err != nil {
		return fmt.Errorf("xack %s: %w", id, err)
	}
	return nil
}

func (q *RedisQueue) DeadLetter(ctx context.Context, email Email, reason string) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.deadLetter,
		Values: map[string]any{
			"payload": payload,
			"reason":  reason,
			"failed":  time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", q.deadLetter, err)
	}

	return nil
}

// Backlog summarises the notification streams for operators.
type Backlog struct {
	Stream     int64 `json:"stream_length"`
	Pending    int64 `json:"pending"`
	DeadLetter int64 `json:"dead_letter_length"`
}

func (q *RedisQueue) Backlog(ctx context.Context) (*Backlog, error) {
	var b Backlog
	var err error

	if b.Stream, err = q.client.XLen(ctx, q.stream).Result(); err != nil {
		return nil, fmt.Errorf("xlen %s: %w", q.stream, err)
	}
	if b.DeadLetter, err = q.client.XLen(ctx, q.deadLetter).Result(); err != nil {
		return nil, fmt.Errorf("xlen %s: %w", q.deadLetter, err)
	}

	pending, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		return nil, fmt.Errorf("xpending %s: %w", q.stream, err)
	}
	b.Pending = pending.Count

	return &b, nil
}

func decodeEmail(values map[string]any) (Email, error) {
	raw, ok := values["payload"]
	if !ok {
		return Email{}, fmt.Errorf("message has no payload")
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return Email{}, fmt.Errorf("unexpected payload type %T", raw)
	}

	var email Email
	if err := json.Unmarshal(data, &email); err != nil {
		return Email{}, fmt.Errorf("decode payload: %w", err)
	}
	return email, nil
}
