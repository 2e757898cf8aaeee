package cache

import (
	"context"
	"encoding/json"
)

// CachedEntity is a reference to a cacheable entity embedded in another
// model. It holds the key and, optionally, a snapshot captured when the
// producer already had the full object. It never owns a cache entry: the
// entry may be evicted while handles to its key still exist.
//
// The zero value refers to the zero key and carries no snapshot.
type CachedEntity[K Key, V Value[V]] struct {
	key      K
	snapshot V
	eager    bool
}

// NewCachedEntity returns a lazy handle for key.
func NewCachedEntity[K Key, V Value[V]](key K) CachedEntity[K, V] {
	return CachedEntity[K, V]{key: key}
}

// NewCachedEntityWithValue returns a handle for key carrying a copy of value.
func NewCachedEntityWithValue[K Key, V Value[V]](key K, value V) CachedEntity[K, V] {
	return CachedEntity[K, V]{key: key, snapshot: value.Clone(), eager: true}
}

// Key returns the referenced key.
func (e CachedEntity[K, V]) Key() K {
	return e.key
}

// Snapshot returns the value captured at construction, if any.
func (e CachedEntity[K, V]) Snapshot() (V, bool) {
	if !e.eager {
		var zero V
		return zero, false
	}
	return e.snapshot.Clone(), true
}

// Resolve looks the key up in c and falls back to the snapshot only on a miss,
// so a stale embedded copy never hides a newer cached one. A nil c resolves
// to the snapshot.
func (e CachedEntity[K, V]) Resolve(ctx context.Context, c *Cache) (V, bool) {
	if v, ok := TryGet[K, V](ctx, c, e.key); ok {
		return v, true
	}
	return e.Snapshot()
}

// ResolveOrFetch resolves the handle and, on a miss, loads the entity through
// fetch and caches it. With a nil fetch it behaves like Resolve and reports
// ErrFetchUnavailable when nothing is known about the key.
//
// When fetch fails for any reason other than ErrNotFound the snapshot, if
// any, is returned instead. A not-found result means the object is gone and
// always surfaces as an error.
func (e CachedEntity[K, V]) ResolveOrFetch(ctx context.Context, c *Cache, fetch FetchFn[K, V]) (V, error) {
	if fetch == nil {
		if v, ok := e.Resolve(ctx, c); ok {
			return v, nil
		}
	}
	v, err := Fetch(ctx, c, e.key, fetch)
	if err != nil && !IsNotFound(err) {
		if snap, ok := e.Snapshot(); ok {
			return snap, nil
		}
	}
	return v, err
}

// Equal reports whether both handles refer to the same key. Snapshots are
// ignored.
func (e CachedEntity[K, V]) Equal(other CachedEntity[K, V]) bool {
	return e.key == other.key
}

func (e CachedEntity[K, V]) String() string {
	return e.key.String()
}

// MarshalJSON encodes the key only.
func (e CachedEntity[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.key)
}

// UnmarshalJSON decodes a key. The resulting handle is lazy.
func (e *CachedEntity[K, V]) UnmarshalJSON(data []byte) error {
	var key K
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	*e = CachedEntity[K, V]{key: key}
	return nil
}
