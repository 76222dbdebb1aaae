package queue

import (
	"context"
	"errors"
	"sync"

	"docfix/internal/domain"
)

var ErrClosed = errors.New("queue closed")

// Memory is an in-process queue. cmd/app uses it when no brokers are
// configured; it implements both Publisher and Consumer.
type Memory struct {
	jobs      chan domain.Job
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemory(size int) *Memory {
	return &Memory{
		jobs: make(chan domain.Job, size),
		done: make(chan struct{}),
	}
}

func (m *Memory) Publish(ctx context.Context, job domain.Job) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}

	select {
	case m.jobs <- job:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume runs handler for each job until ctx is cancelled or the queue is
// closed. Handler errors are left to the handler to report.
func (m *Memory) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.done:
			return nil
		case job := <-m.jobs:
			_ = handler(ctx, job)
		}
	}
}

func (m *Memory) Len() int {
	return len(m.jobs)
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}
