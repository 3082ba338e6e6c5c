// Package dispatch runs events through their async handlers on worker
// goroutines separate from the publisher.
package dispatch

import (
	"context"
	"sync"

	"github.com/quayside/commerce/envelope"
)

// DefaultBufferSize is the default number of items the queue can hold before
// Enqueue() blocks.
const DefaultBufferSize = 100

// Item is an event awaiting delivery to a single async handler.
type Item struct {
	// Key is the key of the handler the event is destined for.
	Key string

	// Envelope contains the event to deliver.
	Envelope *envelope.Envelope

	// FailureCount is the number of times delivery has already been attempted
	// and failed.
	FailureCount uint
}

// Queue is an in-memory buffer of events awaiting asynchronous delivery.
//
// It implements the eventbus.Enqueuer interface.
type Queue struct {
	// BufferSize is the number of items the queue can hold before Enqueue()
	// blocks. If it is non-positive, DefaultBufferSize is used.
	BufferSize int

	once  sync.Once
	items chan Item
}

// Enqueue adds the event in env to the queue for delivery to the handler with
// the given key.
//
// It blocks until there is space in the buffer, or until ctx is canceled.
func (q *Queue) Enqueue(ctx context.Context, key string, env *envelope.Envelope) error {
	return q.Push(ctx, Item{Key: key, Envelope: env})
}

// Push adds i to the queue.
//
// It blocks until there is space in the buffer, or until ctx is canceled.
func (q *Queue) Push(ctx context.Context, i Item) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.channel() <- i:
		return nil
	}
}

// Pop removes the next item from the queue.
//
// It blocks until an item is available, or until ctx is canceled.
func (q *Queue) Pop(ctx context.Context) (Item, error) {
	select {
	case <-ctx.Done():
		return Item{}, ctx.Err()
	case i := <-q.channel():
		return i, nil
	}
}

func (q *Queue) channel() chan Item {
	q.once.Do(func() {
		n := q.BufferSize
		if n <= 0 {
			n = DefaultBufferSize
		}

		q.items = make(chan Item, n)
	})

	return q.items
}
