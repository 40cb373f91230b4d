package generic

// Option is a value that may be absent, e.g. an optional field of a backend response. The zero Option is None.
type Option[T any] struct {
	value T
	some  bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{value: value, some: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

// FromPointer maps nil to None and anything else to Some of the pointed-to value.
func FromPointer[T any](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether there is one, like a map lookup.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.some
}

func (o Option[T]) IsSome() bool {
	return o.some
}

func (o Option[T]) IsNone() bool {
	return !o.some
}

// Unwrap returns the value, panicking if there is none.
func (o Option[T]) Unwrap() T {
	if !o.some {
		panic("generic: Unwrap() of None")
	}
	return o.value
}

func (o Option[T]) UnwrapOr(fallback T) T {
	if !o.some {
		return fallback
	}
	return o.value
}
