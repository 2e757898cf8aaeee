package cache

import (
	"github.com/goliatone/go-discord-cache/internal/store"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// slot binds one kind to its typed store. store holds a store.Store[K, V]
// for the kind's key and entity types; the closures give non-generic access.
type slot struct {
	kind     Kind
	enabled  bool
	capacity int
	store    any
	stats    *kindStats

	remove func(key AnyKey) bool
	size   func() int
	clear  func()
}

func buildSlot[K Key, V Value[V]](kind Kind, ec EntityConfig, enabled bool, logger zerolog.Logger) *slot {
	stats := newKindStats()
	log := logger.With().Str("kind", string(kind)).Logger()

	st := store.New(store.Options[K, V]{
		Disabled: !enabled,
		Capacity: ec.Capacity,
		OnEvict: func(key K, _ V) {
			stats.evictions.Inc()
			log.Debug().Str("key", key.String()).Msg("evicted")
		},
	})

	return &slot{
		kind:     kind,
		enabled:  enabled,
		capacity: ec.Capacity,
		store:    st,
		stats:    stats,
		remove: func(key AnyKey) bool {
			k, ok := key.(K)
			return ok && st.Remove(k)
		},
		size:  st.Len,
		clear: st.Clear,
	}
}

type kindStats struct {
	hits      *xsync.Counter
	misses    *xsync.Counter
	evictions *xsync.Counter
}

func newKindStats() *kindStats {
	return &kindStats{
		hits:      xsync.NewCounter(),
		misses:    xsync.NewCounter(),
		evictions: xsync.NewCounter(),
	}
}

// Stats is a point-in-time view of one kind's store.
type Stats struct {
	Enabled   bool  `json:"enabled"`
	Capacity  int   `json:"capacity"`
	Size      int   `json:"size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Stats reports counters for every supported kind.
func (c *Cache) Stats() map[Kind]Stats {
	out := make(map[Kind]Stats, len(supportedKinds))
	if c == nil {
		return out
	}
	for kind, s := range c.slots {
		out[kind] = Stats{
			Enabled:   s.enabled,
			Capacity:  s.capacity,
			Size:      s.size(),
			Hits:      s.stats.hits.Value(),
			Misses:    s.stats.misses.Value(),
			Evictions: s.stats.evictions.Value(),
		}
	}
	return out
}
