// Package pubsub moves session events between goroutines: a Publisher fans them out to any number of subscribed
// Channels, each of which can be closed from either end without panicking.
package pubsub

import (
	"sync"
)

type Sender[T any] interface {
	// Send delivers msg, blocking while the buffer is full. It returns false once the receiving end is closed.
	Send(msg T) bool
}

type Receiver[T any] interface {
	Receive() <-chan T
}

type Closer interface {
	Close()
	// Closed is closed as soon as Close is called.
	Closed() <-chan struct{}
}

type SenderCloser[T any] interface {
	Sender[T]
	Closer
}

type ReceiverCloser[T any] interface {
	Receiver[T]
	Closer
}

type Channel[T any] interface {
	Sender[T]
	Receiver[T]
	Closer
}

type channel[T any] struct {
	ch   chan T
	done chan struct{}

	// Guards closing against senders that have not yet started waiting on done
	mu      sync.RWMutex
	closed  bool
	senders sync.WaitGroup
}

// NewChannel returns a Channel with a buffer of bufSize messages.
func NewChannel[T any](bufSize int) Channel[T] {
	return &channel[T]{
		ch:   make(chan T, bufSize),
		done: make(chan struct{}),
	}
}

func (c *channel[T]) Receive() <-chan T {
	return c.ch
}

func (c *channel[T]) Send(msg T) bool {
	if !c.enter() {
		return false
	}
	defer c.senders.Done()
	select {
	case c.ch <- msg:
		return true
	case <-c.done:
		return false
	}
}

// enter registers a sender, unless the channel is already closed.
func (c *channel[T]) enter() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	c.senders.Add(1)
	return true
}

// Close is idempotent. Blocked senders are released before the receive side is closed, so a receiver ranging over
// Receive still gets everything that was buffered.
func (c *channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.senders.Wait()
	close(c.ch)
}

func (c *channel[T]) Closed() <-chan struct{} {
	return c.done
}
