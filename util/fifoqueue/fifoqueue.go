// Package fifoqueue is an unbounded synchronized FIFO queue. Writers never block
package fifoqueue

import (
	"errors"
	"sync"

	"github.com/gammazero/deque"
)

var ErrClosed = errors.New("queue is closed")

type Queue[T any] struct {
	mutex   sync.Mutex
	cond    *sync.Cond
	buf     *deque.Deque[T]
	closing bool
	written uint64
}

func New[T any]() *Queue[T] {
	ret := &Queue[T]{
		buf: new(deque.Deque[T]),
	}
	ret.cond = sync.NewCond(&ret.mutex)
	return ret
}

// Write appends the element. Returns ErrClosed after Close
func (q *Queue[T]) Write(elem T) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closing {
		return ErrClosed
	}
	q.written++
	q.buf.PushBack(elem)
	q.cond.Signal()
	return nil
}

// Close stops accepting elements. Readers receive all buffered elements before the end
func (q *Queue[T]) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closing = true
	q.cond.Broadcast()
}

// read blocks until there is an element or the queue is closed and empty
func (q *Queue[T]) read() (T, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for q.buf.Len() == 0 && !q.closing {
		q.cond.Wait()
	}
	if q.buf.Len() == 0 {
		var nothing T
		return nothing, false
	}
	return q.buf.PopFront(), true
}

// Consume calls fun for each element until the queue is closed and drained.
// Several goroutines may consume the same queue
func (q *Queue[T]) Consume(fun func(elem T)) {
	for {
		e, ok := q.read()
		if !ok {
			return
		}
		fun(e)
	}
}

// Len is the number of buffered elements. Non-deterministic under concurrency
func (q *Queue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.buf.Len()
}

// Written is total number of elements accepted by the queue
func (q *Queue[T]) Written() uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.written
}

func (q *Queue[T]) IsClosed() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.closing
}
