// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"registration_backend/internal/feature/registration/adapters"
	"registration_backend/internal/feature/registration/usecase"
	"registration_backend/internal/platform/config"
	"registration_backend/internal/platform/mailer"
	"registration_backend/internal/platform/mailqueue"
)

// ErrRedisRequired is returned when the queue notifier is selected without a Redis client.
var ErrRedisRequired = errors.New("notifier kind \"queue\" requires redis")

// NewDeliveryMailer creates the mailer that actually delivers emails.
// SES is used when selected; otherwise emails are printed to w.
func NewDeliveryMailer(ctx context.Context, cfg *config.Config, w io.Writer) (adapters.Mailer, error) {
	if cfg.Notifier.Kind == config.NotifierSES || (cfg.Notifier.Kind == config.NotifierQueue && cfg.SES.From != "") {
		return mailer.NewSESMailer(ctx, cfg.SES)
	}
	return mailer.NewLogMailer(w), nil
}

// NewMailer creates the mailer used by the API process.
// With the queue notifier, emails are pushed to Redis and delivered by cmd/mailer.
func NewMailer(ctx context.Context, cfg *config.Config, rdb *redis.Client, w io.Writer) (adapters.Mailer, error) {
	switch cfg.Notifier.Kind {
	case config.NotifierQueue:
		if rdb == nil {
			return nil, ErrRedisRequired
		}
		return mailqueue.NewQueue(rdb, cfg.Notifier.QueueKey), nil
	case config.NotifierSES, config.NotifierLog:
		return NewDeliveryMailer(ctx, cfg, w)
	default:
		return nil, fmt.Errorf("unknown notifier kind %q", cfg.Notifier.Kind)
	}
}

// NewNotifier creates a usecase.Notifier for the configured notifier kind.
func NewNotifier(ctx context.Context, cfg *config.Config, rdb *redis.Client, w io.Writer) (usecase.Notifier, error) {
	m, err := NewMailer(ctx, cfg, rdb, w)
	if err != nil {
		return nil, err
	}
	return adapters.NewMailNotifier(m, cfg.Notifier.Timeout), nil
}
