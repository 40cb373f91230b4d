package pubsub

import (
	"sync"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

var _ Publisher[int] = &publisher[int]{}

func TestPublisher(t *testing.T) {
	assert := assert_.New(t)
	pub := NewPublisher[int]().(*publisher[int])

	// Sending to a publisher with no subscribers should just succeed
	assert.True(pub.Send(1))
	assert.True(pub.Send(2))
	pub.pending.Wait()

	// A single subscriber gets the values
	s1, err := pub.SubscribeBufSize(1)
	assert.Nil(err)
	select {
	case <-s1.Receive():
		assert.Fail("subscriber should be waiting")
	default:
	}
	assert.True(pub.Send(3))
	assert.Equal(3, <-s1.Receive())
	pub.pending.Wait()

	// With 2 subscribers, both get the same value
	var wg sync.WaitGroup
	s2, err := pub.SubscribeBufSize(1)
	assert.Nil(err)
	var v1, v2 int
	wg.Add(2)
	go func() { v1 = <-s1.Receive(); wg.Done() }()
	go func() { v2 = <-s2.Receive(); wg.Done() }()
	assert.True(pub.Send(4))
	wg.Wait()
	assert.Equal(4, v1)
	assert.Equal(4, v2)
	pub.pending.Wait()

	// Once one subscriber is closed, the other still receives values
	s1.Close()
	assert.True(pub.Send(5))
	assert.Equal(5, <-s2.Receive())
	pub.pending.Wait()

	// Closing the publisher closes the remaining subscribers
	pub.Close()
	_, ok := <-s2.Receive()
	assert.False(ok)
	assert.False(pub.Send(6))
	_, err = pub.Subscribe()
	assert.ErrorIs(err, ErrPublisherClosed)
}

func TestPublisher_Order(t *testing.T) {
	assert := assert_.New(t)
	pub := NewPublisher[int]()
	sub, err := pub.SubscribeBufSize(100)
	assert.Nil(err)

	for i := 0; i < 100; i++ {
		assert.True(pub.Send(i))
	}
	// Close flushes everything already sent
	pub.Close()

	var got []int
	for v := range sub.Receive() {
		got = append(got, v)
	}
	assert.Len(got, 100)
	for i, v := range got {
		assert.Equal(i, v)
	}
}

func TestPublisher_Filtered(t *testing.T) {
	assert := assert_.New(t)
	pub := NewPublisher[int]()
	ch := NewChannel[int](10)
	assert.Nil(pub.AddSubscriber(NewFilteredSender[int](ch, func(v int) bool { return v > 1 })))

	pub.Send(1)
	pub.Send(2)
	pub.Send(3)
	pub.Close()

	var got []int
	for v := range ch.Receive() {
		got = append(got, v)
	}
	assert.Equal([]int{2, 3}, got)
}
