package store

import "github.com/puzpuzpuz/xsync/v3"

// Unbounded is a store without a capacity bound, backed by a concurrent map.
type Unbounded[K comparable, V any] struct {
	m *xsync.MapOf[K, V]
}

var _ Store[string, int] = (*Unbounded[string, int])(nil)

// NewUnbounded creates an empty unbounded store.
func NewUnbounded[K comparable, V any]() *Unbounded[K, V] {
	return &Unbounded[K, V]{m: xsync.NewMapOf[K, V]()}
}

func (s *Unbounded[K, V]) Put(key K, value V) {
	s.m.Store(key, value)
}

func (s *Unbounded[K, V]) Get(key K) (V, bool) {
	return s.m.Load(key)
}

func (s *Unbounded[K, V]) Remove(key K) bool {
	_, ok := s.m.LoadAndDelete(key)
	return ok
}

func (s *Unbounded[K, V]) Len() int {
	return s.m.Size()
}

func (s *Unbounded[K, V]) Keys() []K {
	keys := make([]K, 0, s.m.Size())
	s.m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (s *Unbounded[K, V]) Range(fn func(key K, value V) bool) {
	s.m.Range(fn)
}

func (s *Unbounded[K, V]) Clear() {
	s.m.Clear()
}
