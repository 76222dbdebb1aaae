package queue

import (
	"context"

	"docfix/internal/domain"
)

type Handler func(ctx context.Context, job domain.Job) error

type Publisher interface {
	Publish(ctx context.Context, job domain.Job) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
	Close() error
}
