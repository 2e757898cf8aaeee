// Package store holds the per-kind storage behind the cache facade.
//
// Every Store is its own unit of synchronization: two stores never share a
// lock, so traffic on one entity kind does not contend with another.
package store

// Store is typed storage for one entity kind.
type Store[K comparable, V any] interface {
	// Put inserts or overwrites the value for key. Last write wins.
	Put(key K, value V)

	// Get returns the current value for key. It never blocks on I/O.
	Get(key K) (V, bool)

	// Remove deletes key and reports whether it was present.
	// Removing an absent key is a no-op.
	Remove(key K) bool

	// Len returns the number of resident entries.
	Len() int

	// Keys returns a snapshot of the resident keys.
	Keys() []K

	// Range calls fn for resident entries until fn returns false. It does
	// not count as a use, and fn must not call back into the store.
	Range(fn func(key K, value V) bool)

	// Clear drops every entry without firing eviction hooks.
	Clear()
}

// EvictFunc is called for entries dropped to satisfy a capacity bound.
// It runs while the store lock is held and must not call back into the store.
type EvictFunc[K comparable, V any] func(key K, value V)

// Options selects the store implementation.
type Options[K comparable, V any] struct {
	// Disabled returns a store that accepts writes and never retains them.
	Disabled bool

	// Capacity bounds the number of entries. Zero means unbounded.
	Capacity int

	// OnEvict observes capacity evictions. Optional.
	OnEvict EvictFunc[K, V]
}

// New builds the store described by opts. Negative capacities are rejected by
// configuration validation before New is reached and are treated as unbounded.
func New[K comparable, V any](opts Options[K, V]) Store[K, V] {
	switch {
	case opts.Disabled:
		return NewNoop[K, V]()
	case opts.Capacity > 0:
		return NewLRU(opts.Capacity, opts.OnEvict)
	default:
		return NewUnbounded[K, V]()
	}
}
