// Package ds provides small generic data structures used by the core
// packages.
package ds

// OrderedMap is a string-keyed map that remembers insertion order.
// It is not safe for concurrent use; callers hold their own locks.
type OrderedMap[T any] struct {
	d    map[string]T
	keys []string
}

func NewOrderedMap[T any]() *OrderedMap[T] {
	return &OrderedMap[T]{d: make(map[string]T)}
}

func (m *OrderedMap[T]) Len() int { return len(m.d) }

// Set stores v under key. Overwriting an existing key keeps its original
// position in the iteration order.
func (m *OrderedMap[T]) Set(key string, v T) {
	if _, ok := m.d[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.d[key] = v
}

func (m *OrderedMap[T]) Get(key string) (v T, ok bool) {
	v, ok = m.d[key]
	return
}

func (m *OrderedMap[T]) Delete(key string) {
	if _, ok := m.d[key]; !ok {
		return
	}
	delete(m.d, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *OrderedMap[T]) Keys() []string { return m.keys }

// Values returns the values in insertion order.
func (m *OrderedMap[T]) Values() []T {
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.d[k])
	}
	return out
}
