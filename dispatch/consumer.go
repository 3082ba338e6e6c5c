package dispatch

import (
	"context"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"github.com/quayside/commerce/internal/mlog"
	"github.com/quayside/commerce/semaphore"
	"golang.org/x/sync/errgroup"
)

// Consumer pops events from a queue and runs them through their async
// handlers.
type Consumer struct {
	// Queue is the queue to consume.
	Queue *Queue

	// Runner is used to deliver each event to its handler.
	Runner *Runner

	// Semaphore is used to limit the number of events being dispatched
	// concurrently.
	Semaphore semaphore.Semaphore

	// BackoffStrategy is the strategy used to delay individual events after a
	// failure. If it is nil, backoff.DefaultStrategy is used.
	BackoffStrategy backoff.Strategy

	// Logger is the target for log messages from the consumer.
	// If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger

	group *errgroup.Group
}

// Run dispatches events from the queue until an error occurs or ctx is
// canceled.
func (c *Consumer) Run(ctx context.Context) error {
	c.group, ctx = errgroup.WithContext(ctx)

	c.group.Go(func() error {
		return c.consume(ctx)
	})

	<-ctx.Done()
	return c.group.Wait()
}

// consume pops items from the queue and starts a goroutine to dispatch each
// one. It waits for c.Semaphore before starting each goroutine.
func (c *Consumer) consume(ctx context.Context) error {
	logging.LogString(
		c.Logger,
		"dispatching events from queue",
	)

	for {
		i, err := c.Queue.Pop(ctx)
		if err != nil {
			return err
		}

		if err := c.Semaphore.Acquire(ctx); err != nil {
			return err
		}

		c.group.Go(func() error {
			return c.process(ctx, i)
		})
	}
}

// process dispatches the event in i, and re-queues it after a delay if the
// attempt fails.
//
// The semaphore is released as soon as the attempt completes. The backoff
// delay is served without holding a slot, so a failing event does not starve
// the pool while it waits to be re-queued.
func (c *Consumer) process(ctx context.Context, i Item) error {
	mlog.LogConsume(c.Logger, i.Envelope, i.Key, i.FailureCount)

	err := func() error {
		defer c.Semaphore.Release()
		return c.Runner.Run(ctx, i.Key, i.Envelope)
	}()
	if err == nil {
		return nil
	}

	s := c.BackoffStrategy
	if s == nil {
		s = backoff.DefaultStrategy
	}

	delay := s(err, i.FailureCount)
	mlog.LogNack(c.Logger, i.Envelope, err, delay)

	if err := linger.Sleep(ctx, delay); err != nil {
		return err
	}

	i.FailureCount++

	return c.Queue.Push(ctx, i)
}
