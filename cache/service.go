package cache

import (
	"context"

	"github.com/jmgilman/go/errors"
)

// FetchFunc is the untyped loader the fetch layer calls on a miss.
type FetchFunc = func(ctx context.Context) (any, error)

// FetchService is the read-through layer consulted when the entity cache
// misses. Implementations coalesce concurrent fetches of the same key and may
// remember keys the remote side reported missing.
type FetchService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFunc) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	InvalidateKeys(ctx context.Context, keys []string) error
}

// FetchFn loads one entity from the source of truth, usually a REST call.
// It returns ErrNotFound (or an error wrapping it) when the object is gone.
type FetchFn[K Key, V Value[V]] func(ctx context.Context, key K) (V, error)

// Fetch returns the cached entity for key, falling back to fn on a miss.
// A fetched value is added to the cache before it is returned. Errors from fn
// propagate unchanged apart from ErrNotFound, which the fetch layer may
// remember and rewrap.
func Fetch[K Key, V Value[V]](ctx context.Context, c *Cache, key K, fn FetchFn[K, V]) (V, error) {
	var zero V
	if v, ok := TryGet[K, V](ctx, c, key); ok {
		return v, nil
	}

	if fn == nil {
		return zero, errors.Wrapf(ErrFetchUnavailable, errors.CodeUnavailable, "cannot fetch %s", key)
	}

	v, err := fetchThrough(ctx, c, key, fn)
	if err != nil {
		return zero, err
	}

	if err := put(c, key, v); err != nil {
		return zero, err
	}
	return v.Clone(), nil
}

func fetchThrough[K Key, V Value[V]](ctx context.Context, c *Cache, key K, fn FetchFn[K, V]) (V, error) {
	var zero V
	if c == nil || c.fetcher == nil {
		return fn(ctx, key)
	}

	result, err := c.fetcher.GetOrFetch(ctx, c.serializer.SerializeKey(key), func(ctx context.Context) (any, error) {
		return fn(ctx, key)
	})
	if err != nil {
		return zero, err
	}

	v, ok := result.(V)
	if !ok {
		return zero, errors.WithContext(
			errors.Wrapf(ErrInvalidResultType, errors.CodeInternal, "fetch for %s returned %T", key, result),
			"key", key.String(),
		)
	}
	return v, nil
}
