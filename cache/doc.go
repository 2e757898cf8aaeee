// Package cache is an in-memory, best-effort store of Discord entities
// (guilds, channels, messages, members and users) received from gateway
// events and REST responses.
//
// # Overview
//
// The package exports three pieces:
//
//   - Cache: the facade. Add, Remove and TryGet are generic over a closed set
//     of key and entity types, so a request for an unsupported type does not
//     compile and routing to the per-kind store needs no reflection.
//   - CachedEntity: a key plus an optional snapshot, embedded in other models
//     to point at an entity without owning it.
//   - Config: which kinds are cached and with what capacity. Validate is a pure
//     predicate, so configurations can be probed before New is called.
//
// # Basic Usage
//
//	c, err := cache.New(cache.DefaultConfig(), cache.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	_ = cache.AddMember(ctx, c, member)
//
//	m, ok := cache.TryGet[cache.MemberKey, entity.Member](ctx, c, cache.MemberKeyOf(member))
//	if !ok {
//		// never seen, removed or evicted: treat all three the same
//	}
//
// # Eviction
//
// A kind with a positive capacity keeps its entries in least-recently-used
// order. Add and TryGet both count as a use. Capacity zero means unbounded.
//
// # Fetch Layer
//
// Fetch and CachedEntity.ResolveOrFetch fall back to a caller-supplied fetch
// function on a miss. When a fetch layer is configured, concurrent misses on
// the same key share one call and keys reported missing with ErrNotFound are
// remembered for the fetch TTL. Remove and Add drop the key from the fetch
// layer.
//
// The cache is never the source of truth. Code resolving a handle must treat
// a miss the same as an object it has never seen.
package cache
