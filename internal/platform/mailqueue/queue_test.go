package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test:activation-emails"

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	q := NewQueue(client, testKey)
	ctx := context.Background()

	require.NoError(t, q.SendActivationCode(ctx, "first@example.com", "1111"))
	require.NoError(t, q.SendActivationCode(ctx, "second@example.com", "2222"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", msg.To)
	assert.Equal(t, "1111", msg.Code)
	assert.Zero(t, msg.Attempts)
	assert.False(t, msg.EnqueuedAt.IsZero())

	msg, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", msg.To)
}

func TestQueue_DeferAndPromoteDue(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	q := NewQueue(client, testKey)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, q.Defer(ctx, Message{To: "later@example.com", Code: "2222", Attempts: 1}, now.Add(2*time.Minute)))
	require.NoError(t, q.Defer(ctx, Message{To: "soon@example.com", Code: "1111", Attempts: 1}, now.Add(time.Minute)))

	moved, err := q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, moved)

	now = now.Add(time.Minute)
	moved, err = q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	msg, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "soon@example.com", msg.To)
	assert.Equal(t, 1, msg.Attempts)
	assert.True(t, now.Equal(msg.RetryAt))

	delayed, err := q.Delayed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), delayed)
}

func TestQueue_Dequeue_Empty(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	q := NewQueue(rdb, testKey)

	mock.ExpectBRPop(time.Second, testKey).RedisNil()

	_, err := q.Dequeue(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueue_Dequeue_CorruptPayload(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	q := NewQueue(rdb, testKey)

	mock.ExpectBRPop(time.Second, testKey).SetVal([]string{testKey, "not json"})

	_, err := q.Dequeue(context.Background(), time.Second)
	assert.ErrorContains(t, err, "unmarshal")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueue_Enqueue_RedisError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	q := NewQueue(rdb, testKey)

	msg := Message{To: "a@x.com", Code: "4821", EnqueuedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	mock.ExpectLPush(testKey, data).SetErr(errors.New("connection reset"))

	err = q.Enqueue(context.Background(), msg)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
