package mailqueue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"registration_backend/internal/platform/logger"
)

const (
	defaultWait    = 5 * time.Second
	defaultBackoff = 30 * time.Second
	maxBackoff     = 15 * time.Minute
)

// Sender delivers a single activation email.
type Sender interface {
	SendActivationCode(ctx context.Context, to, code string) error
}

// Worker drains the queue and hands each message to a Sender.
// A failed message is retried after an exponential backoff
// (backoff, 2*backoff, 4*backoff ... capped at 15 minutes)
// until it has been tried maxAttempts times.
type Worker struct {
	queue       *Queue
	sender      Sender
	maxAttempts int
	backoff     time.Duration
	wait        time.Duration
}

// NewWorker creates a worker. maxAttempts below 1 means a single attempt,
// and a non-positive backoff means 30 seconds.
func NewWorker(queue *Queue, sender Sender, maxAttempts int, backoff time.Duration) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Worker{
		queue:       queue,
		sender:      sender,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		wait:        defaultWait,
	}
}

// retryDelay returns the wait before the next try of a message that has failed attempts times.
func (w *Worker) retryDelay(attempts int) time.Duration {
	d := w.backoff
	for i := 1; i < attempts && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("mailer worker started", "queue", w.queue.Key())
	for {
		if ctx.Err() != nil {
			slog.Info("mailer worker stopped")
			return nil
		}
		if _, err := w.ProcessOne(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			slog.Error("mailer worker failed to read queue", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne handles at most one message. It reports whether a message was taken.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	if _, err := w.queue.PromoteDue(ctx); err != nil {
		return false, err
	}
	msg, err := w.queue.Dequeue(ctx, w.wait)
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			return false, nil
		}
		return false, err
	}

	msg.Attempts++
	sendErr := w.sender.SendActivationCode(ctx, msg.To, msg.Code)
	if sendErr == nil {
		slog.Info("activation email sent", "email", logger.RedactEmail(msg.To), "attempts", msg.Attempts)
		return true, nil
	}

	if msg.Attempts >= w.maxAttempts {
		slog.Error("dropping activation email after retries",
			"email", logger.RedactEmail(msg.To), "attempts", msg.Attempts, "error", sendErr)
		return true, nil
	}

	delay := w.retryDelay(msg.Attempts)
	slog.Warn("activation email failed, retrying later",
		"email", logger.RedactEmail(msg.To), "attempts", msg.Attempts, "retry_in", delay, "error", sendErr)
	// ctx が取り消されていても再投入は完了させる
	if err := w.queue.Defer(context.WithoutCancel(ctx), *msg, w.queue.now().Add(delay)); err != nil {
		return true, err
	}
	return true, nil
}
