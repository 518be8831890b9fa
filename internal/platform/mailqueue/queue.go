// Package mailqueue hands activation emails from the API process to the
// mailer worker through a Redis list.
package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Dequeue when no message arrived within the wait time.
var ErrEmpty = errors.New("mail queue is empty")

// promoteBatch bounds how many delayed messages one PromoteDue call moves.
const promoteBatch = 100

// promoteScript moves delayed messages whose score is at or before ARGV[1]
// from the retry set (KEYS[1]) to the ready list (KEYS[2]) atomically.
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', '0', ARGV[2])
for _, m in ipairs(due) do
	redis.call('ZREM', KEYS[1], m)
	redis.call('LPUSH', KEYS[2], m)
end
return #due
`)

// Message is one activation email waiting for delivery.
type Message struct {
	To         string    `json:"to"`
	Code       string    `json:"code"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	RetryAt    time.Time `json:"retry_at,omitzero"`
}

// Queue is a FIFO of messages stored in a Redis list.
// Producers LPUSH and the worker BRPOPs.
// Messages waiting for a retry live in a sorted set scored by their due time
// and are moved back to the list by PromoteDue.
type Queue struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

// NewQueue creates a queue stored under key.
func NewQueue(client redis.Cmdable, key string) *Queue {
	return &Queue{
		client: client,
		key:    key,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Key returns the Redis key backing the queue.
func (q *Queue) Key() string {
	return q.key
}

func (q *Queue) retryKey() string {
	return q.key + ":retry"
}

// SendActivationCode enqueues the email for the worker. Delivery happens later.
func (q *Queue) SendActivationCode(ctx context.Context, to, code string) error {
	return q.Enqueue(ctx, Message{To: to, Code: code})
}

// Enqueue pushes a message onto the queue.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = q.now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue mail message: %w", err)
	}
	return nil
}

// Dequeue blocks up to wait for the oldest message.
func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (*Message, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to dequeue mail message: %w", err)
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mail message: %w", err)
	}
	return &msg, nil
}

// Defer schedules msg to become ready again at the given time.
func (q *Queue) Defer(ctx context.Context, msg Message, at time.Time) error {
	msg.RetryAt = at.UTC()
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}
	if err := q.client.ZAdd(ctx, q.retryKey(), redis.Z{Score: float64(at.UnixMilli()), Member: data}).Err(); err != nil {
		return fmt.Errorf("failed to defer mail message: %w", err)
	}
	return nil
}

// PromoteDue moves delayed messages whose retry time has come back onto the queue.
// It returns the number of messages moved.
func (q *Queue) PromoteDue(ctx context.Context) (int64, error) {
	n, err := promoteScript.Run(ctx, q.client, []string{q.retryKey(), q.key}, q.now().UnixMilli(), promoteBatch).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to promote delayed mail messages: %w", err)
	}
	return n, nil
}

// Delayed returns the number of messages waiting for a retry.
func (q *Queue) Delayed(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.retryKey()).Result()
}

// Len returns the number of queued messages.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
