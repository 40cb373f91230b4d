// Package lpc stands for "Local Procedure Call". It's a typed RPC-like mechanism implemented over Go channels, intended
// for communication with long-running goroutines such as the session controller loop.
package lpc

import (
	"context"
	"errors"

	"github.com/alanbriolat/tubefetch/generic"
	"github.com/alanbriolat/tubefetch/internal/sync_"
)

var (
	ErrClosed     = errors.New("command response already sent")
	ErrNoResponse = errors.New("no response")
)

// Command carries one argument to a goroutine and one response (or error) back. The receiving goroutine may hold on
// to the Command and respond later, e.g. once a network call it started has finished.
type Command[Arg any, Response any] struct {
	initialized bool
	arg         Arg
	response    generic.Result[Response]
	done        sync_.Event
}

func (*Command[Arg, Response]) New(arg Arg) *Command[Arg, Response] {
	return &Command[Arg, Response]{
		initialized: true,
		arg:         arg,
		response:    generic.Err[Response](ErrNoResponse), // Default error if closed with no response
	}
}

func (c *Command[Arg, Response]) mustBeInitialized(method string) {
	if c == nil || !c.initialized {
		panic("attempted to call ." + method + "() on uninitialized Command, must use .New() first")
	}
}

func (c *Command[Arg, Response]) Arg() Arg {
	c.mustBeInitialized("Arg")
	return c.arg
}

func (c *Command[Arg, Response]) Respond(response Response) error {
	c.mustBeInitialized("Respond")
	if c.done.IsSet() {
		return ErrClosed
	}
	c.response = generic.Ok[Response](response)
	c.Close()
	return nil
}

func (c *Command[Arg, Response]) RespondError(err error) error {
	c.mustBeInitialized("RespondError")
	if c.done.IsSet() {
		return ErrClosed
	}
	c.response = generic.Err[Response](err)
	c.Close()
	return nil
}

// Done returns a channel that closes once a response has been sent.
func (c *Command[Arg, Response]) Done() <-chan struct{} {
	c.mustBeInitialized("Done")
	return c.done.Wait()
}

func (c *Command[Arg, Response]) Wait() (Response, error) {
	c.mustBeInitialized("Wait")
	<-c.done.Wait()
	return c.response.Parts()
}

// WaitContext is like Wait, but gives up with ctx.Err() if the context ends first. The command itself is unaffected
// and may still be responded to.
func (c *Command[Arg, Response]) WaitContext(ctx context.Context) (Response, error) {
	c.mustBeInitialized("WaitContext")
	select {
	case <-c.done.Wait():
		return c.response.Parts()
	case <-ctx.Done():
		var zero Response
		return zero, ctx.Err()
	}
}

func (c *Command[Arg, Response]) Close() {
	c.mustBeInitialized("Close")
	c.done.Set()
}
