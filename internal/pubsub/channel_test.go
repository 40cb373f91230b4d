package pubsub

import (
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
)

func TestChannel_SendReceive(t *testing.T) {
	assert := assert_.New(t)

	ch := NewChannel[string](1)
	assert.True(ch.Send("loading"))
	assert.Equal("loading", <-ch.Receive())
}

func TestChannel_CloseUnblocksSender(t *testing.T) {
	assert := assert_.New(t)

	ch := NewChannel[int](0)
	result := make(chan bool)
	go func() { result <- ch.Send(1) }()

	select {
	case <-result:
		assert.Fail("send on unbuffered channel should block")
	case <-time.After(50 * time.Millisecond):
	}

	ch.Close()
	select {
	case ok := <-result:
		assert.False(ok)
	case <-time.After(time.Second):
		assert.Fail("Close() should unblock the sender")
	}

	// Receivers see the close, and Close is idempotent
	_, ok := <-ch.Receive()
	assert.False(ok)
	ch.Close()
	assert.False(ch.Send(2))
}
