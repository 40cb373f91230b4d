package generic

// Set is an unordered collection of distinct items. It is not safe for concurrent use.
type Set[T any] interface {
	Add(item T) bool
	Remove(item T) bool
	Contains(item T) bool
	Len() int
	// Items returns the members in no particular order.
	Items() []T
	Clear()
}

// mapSet keys its items by key(item), which must be comparable at runtime.
type mapSet[T any] struct {
	key   func(T) interface{}
	items map[interface{}]T
}

func newMapSet[T any](key func(T) interface{}, items []T) *mapSet[T] {
	s := &mapSet[T]{key: key, items: make(map[interface{}]T, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// NewSet creates a set of comparable values.
func NewSet[T comparable](items ...T) Set[T] {
	return newMapSet(func(item T) interface{} { return item }, items)
}

// NewInterfaceSet creates a set of interface values, e.g. subscribers. Members are distinguished by dynamic type and
// value, so the dynamic types must be comparable: pointers are fine, slices will panic.
func NewInterfaceSet[T any](items ...T) Set[T] {
	return newMapSet(func(item T) interface{} { return item }, items)
}

// Add returns false if the item was already a member.
func (s *mapSet[T]) Add(item T) bool {
	k := s.key(item)
	if _, found := s.items[k]; found {
		return false
	}
	s.items[k] = item
	return true
}

// Remove returns false if the item was not a member.
func (s *mapSet[T]) Remove(item T) bool {
	k := s.key(item)
	if _, found := s.items[k]; !found {
		return false
	}
	delete(s.items, k)
	return true
}

func (s *mapSet[T]) Contains(item T) bool {
	_, found := s.items[s.key(item)]
	return found
}

func (s *mapSet[T]) Len() int {
	return len(s.items)
}

func (s *mapSet[T]) Items() []T {
	items := make([]T, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	return items
}

func (s *mapSet[T]) Clear() {
	s.items = make(map[interface{}]T)
}
