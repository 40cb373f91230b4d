package generic

import "fmt"

// Result carries the (T, error) outcome of a function across a channel.
type Result[T any] struct {
	Value T
	Error error
}

// NewResult packs the return values of a call, e.g. NewResult(f()).
func NewResult[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Error: err}
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Error: err}
}

func (r Result[T]) IsOk() bool {
	return r.Error == nil
}

func (r Result[T]) IsErr() bool {
	return r.Error != nil
}

// Parts unpacks the Result back into return values.
func (r Result[T]) Parts() (T, error) {
	return r.Value, r.Error
}

// Unwrap returns the value, panicking if there is an error.
func (r Result[T]) Unwrap() T {
	if r.Error != nil {
		panic(fmt.Errorf("generic: Unwrap() of error result: %w", r.Error))
	}
	return r.Value
}

// Unwrap is for calls that cannot fail unless something is badly wrong, e.g. Unwrap(uuid.NewRandom()).
func Unwrap[T any](value T, err error) T {
	return NewResult(value, err).Unwrap()
}
