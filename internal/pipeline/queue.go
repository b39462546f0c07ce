package pipeline

import (
	"context"
	"errors"
	"sync"
)

var ErrSinkGone = errors.New("pipeline: sink stopped receiving")

// Queue is the bounded hand-off between Source and Sink.
type Queue struct {
	ch        chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	return &Queue{
		ch:   make(chan Message, capacity),
		done: make(chan struct{}),
	}
}

// Send blocks while the queue is full.
func (q *Queue) Send(ctx context.Context, m Message) error {
	select {
	case q.ch <- m:
		return nil
	case <-q.done:
		return ErrSinkGone
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finish sends the end-of-stream sentinel. It ignores cancellation so that a
// live sink always observes the end of the stream.
func (q *Queue) Finish() error {
	select {
	case q.ch <- Message{}:
		return nil
	case <-q.done:
		return ErrSinkGone
	}
}

// Receive returns the next message. ok is false when ctx is cancelled.
func (q *Queue) Receive(ctx context.Context) (Message, bool) {
	select {
	case m := <-q.ch:
		return m, true
	case <-ctx.Done():
		return Message{}, false
	}
}

// Close tells the source that nothing will be received any more.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) Len() int {
	return len(q.ch)
}

func (q *Queue) Cap() int {
	return cap(q.ch)
}
