package pubsub

import (
	"errors"
	"sync"

	"github.com/alanbriolat/tubefetch/generic"
	"github.com/alanbriolat/tubefetch/internal/sync_"
)

const (
	DefaultPublisherBufSize  = 1
	DefaultSubscriberBufSize = 16
)

var (
	ErrPublisherClosed = errors.New("publisher closed")
)

// Publisher fans every sent message out to all subscribers, in send order. A subscriber that has been closed is
// dropped on the next message.
type Publisher[T any] interface {
	SenderCloser[T]
	AddSubscriber(SenderCloser[T]) error
	Subscribe() (ReceiverCloser[T], error)
	SubscribeBufSize(int) (ReceiverCloser[T], error)
}

type publisher[T any] struct {
	mu          sync.Mutex
	ch          Channel[T]
	running     sync.WaitGroup // Forwarding goroutine
	pending     sync.WaitGroup // Messages not yet sent to all subscribers
	subscribers *sync_.Mutexed[generic.Set[SenderCloser[T]]]
	closed      bool
}

func NewPublisher[T any]() Publisher[T] {
	return NewPublisherBufSize[T](DefaultPublisherBufSize)
}

func NewPublisherBufSize[T any](bufSize int) Publisher[T] {
	p := &publisher[T]{
		ch:          NewChannel[T](bufSize),
		subscribers: sync_.NewMutexed(generic.NewInterfaceSet[SenderCloser[T]]()),
	}
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		for v := range p.ch.Receive() {
			// Snapshot the subscribers, to avoid holding a lock that prevents adding new subscribers
			subscriberSlice := p.subscriberSlice(false)
			for _, s := range subscriberSlice {
				if ok := s.Send(v); !ok {
					p.unsubscribe(s)
				}
			}
			p.pending.Done()
		}
	}()
	return p
}

// Send will publish the value to all subscribers; it only blocks while the publisher's own buffer is full.
func (p *publisher[T]) Send(msg T) bool {
	p.pending.Add(1)
	if ok := p.ch.Send(msg); !ok {
		p.pending.Done()
		return false
	}
	return true
}

func (p *publisher[T]) Subscribe() (ReceiverCloser[T], error) {
	return p.SubscribeBufSize(DefaultSubscriberBufSize)
}

func (p *publisher[T]) SubscribeBufSize(bufSize int) (ReceiverCloser[T], error) {
	s := NewChannel[T](bufSize)
	if err := p.AddSubscriber(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *publisher[T]) AddSubscriber(s SenderCloser[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	p.subscribers.Update(func(subscribers *generic.Set[SenderCloser[T]]) {
		(*subscribers).Add(s)
	})
	return nil
}

func (p *publisher[T]) unsubscribe(s SenderCloser[T]) {
	p.subscribers.Update(func(subscribers *generic.Set[SenderCloser[T]]) {
		(*subscribers).Remove(s)
	})
}

func (p *publisher[T]) subscriberSlice(clear bool) (slice []SenderCloser[T]) {
	p.subscribers.Update(func(subscribers *generic.Set[SenderCloser[T]]) {
		slice = (*subscribers).Items()
		if clear {
			(*subscribers).Clear()
		}
	})
	return slice
}

// Close idempotently shuts down the publisher after flushing pending messages, closing all subscribers too.
func (p *publisher[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.ch.Close()
	p.pending.Wait()
	p.running.Wait()
	for _, s := range p.subscriberSlice(true) {
		s.Close()
	}
	p.closed = true
}

func (p *publisher[T]) Closed() <-chan struct{} {
	return p.ch.Closed()
}
