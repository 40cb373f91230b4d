package sync_

import "sync"

// Mutexed is a value that is only ever accessed with its mutex held.
type Mutexed[T any] struct {
	mu    sync.Mutex
	value T
}

func NewMutexed[T any](value T) *Mutexed[T] {
	return &Mutexed[T]{value: value}
}

// Update calls f with a pointer to the value, under the lock. The pointer must not escape f.
func (m *Mutexed[T]) Update(f func(value *T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(&m.value)
}

// Load returns a (shallow) copy of the value.
func (m *Mutexed[T]) Load() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

