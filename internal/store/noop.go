package store

// Noop backs entity kinds that are configured out. Writes succeed and are
// dropped; reads always miss.
type Noop[K comparable, V any] struct{}

var _ Store[string, int] = Noop[string, int]{}

func NewNoop[K comparable, V any]() Noop[K, V] {
	return Noop[K, V]{}
}

func (Noop[K, V]) Put(K, V) {}

func (Noop[K, V]) Get(K) (V, bool) {
	var zero V
	return zero, false
}

func (Noop[K, V]) Remove(K) bool { return false }
func (Noop[K, V]) Len() int { return 0 }
func (Noop[K, V]) Keys() []K { return nil }
func (Noop[K, V]) Clear() {}

func (Noop[K, V]) Range(func(K, V) bool) {}
