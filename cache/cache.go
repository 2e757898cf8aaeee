package cache

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/goliatone/go-discord-cache/entity"
	"github.com/goliatone/go-discord-cache/internal/store"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
)

// Value is the closed set of entity types the cache stores.
type Value[V any] interface {
	entity.Guild | entity.Channel | entity.Message | entity.Member | entity.User
	Clone() V
}

// Cache is the single entry point for producers and consumers of cached
// entities. Each kind lives in its own store, so operations on different kinds
// never contend.
//
// A nil *Cache behaves like a cache with every kind configured out.
type Cache struct {
	id         uuid.UUID
	cfg        Config
	logger     zerolog.Logger
	serializer KeySerializer
	fetcher    FetchService
	slots      map[Kind]*slot
}

// Option customizes a Cache built by New.
type Option func(*Cache)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithKeySerializer replaces the serializer used for fetch layer keys.
func WithKeySerializer(serializer KeySerializer) Option {
	return func(c *Cache) {
		if serializer != nil {
			c.serializer = serializer
		}
	}
}

// WithFetchService installs a fetch layer, overriding Config.Fetch.
func WithFetchService(service FetchService) Option {
	return func(c *Cache) {
		c.fetcher = service
	}
}

// New validates cfg and builds one store per supported kind. Kinds absent
// from cfg, or disabled, get a store that never retains anything.
func New(cfg Config, opts ...Option) (*Cache, error) {
	c := &Cache{
		id:         uuid.New(),
		cfg:        cfg.clone(),
		logger:     zerolog.Nop(),
		serializer: NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().
		Str("component", "entity_cache").
		Str("cache_id", c.id.String()).
		Logger()

	if err := c.cfg.Validate(); err != nil {
		c.logger.Error().Err(err).Msg("rejecting cache configuration")
		return nil, errors.Wrap(&ConfigError{Cause: err}, errors.CodeInvalidConfig, "cache configuration rejected")
	}

	if c.fetcher == nil && c.cfg.Fetch != nil {
		fetcher, err := NewFetchService(*c.cfg.Fetch, c.logger)
		if err != nil {
			return nil, errors.Wrap(&ConfigError{Cause: err}, errors.CodeInvalidConfig, "fetch layer rejected")
		}
		c.fetcher = fetcher
	}

	c.slots = make(map[Kind]*slot, len(supportedKinds))
	for _, kind := range supportedKinds {
		c.slots[kind] = c.newSlot(kind)
	}

	c.logger.Debug().
		Int("kinds", len(c.cfg.Entities)).
		Bool("fetch_layer", c.fetcher != nil).
		Msg("entity cache ready")

	return c, nil
}

func (c *Cache) newSlot(kind Kind) *slot {
	ec, enabled := c.cfg.entity(kind)
	switch kind {
	case KindGuild:
		return buildSlot[GuildKey, entity.Guild](kind, ec, enabled, c.logger)
	case KindChannel:
		return buildSlot[ChannelKey, entity.Channel](kind, ec, enabled, c.logger)
	case KindMessage:
		return buildSlot[MessageKey, entity.Message](kind, ec, enabled, c.logger)
	case KindMember:
		return buildSlot[MemberKey, entity.Member](kind, ec, enabled, c.logger)
	case KindUser:
		return buildSlot[UserKey, entity.User](kind, ec, enabled, c.logger)
	default:
		panic("cache: no store binding for kind " + string(kind))
	}
}

// ID identifies this cache instance in logs.
func (c *Cache) ID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.id
}

// Enabled reports whether entries of kind are retained.
func (c *Cache) Enabled(kind Kind) bool {
	if c == nil {
		return false
	}
	s, ok := c.slots[kind]
	return ok && s.enabled
}

// Len returns the number of cached entries of kind.
func (c *Cache) Len(kind Kind) int {
	if c == nil {
		return 0
	}
	s, ok := c.slots[kind]
	if !ok {
		return 0
	}
	return s.size()
}

// Validate reports whether cfg would be accepted by New. It does not touch c.
func (c *Cache) Validate(cfg Config) bool {
	return Validate(cfg)
}

// Serializer returns the serializer used for fetch layer keys.
func (c *Cache) Serializer() KeySerializer {
	if c == nil {
		return NewDefaultKeySerializer()
	}
	return c.serializer
}

// Clear drops every cached entry and the fetch layer records of every kind.
// The stores are always emptied; fetch layer failures are reported together.
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil {
		return nil
	}
	for _, kind := range supportedKinds {
		c.slots[kind].clear()
	}
	if c.fetcher == nil {
		return nil
	}

	var errs []error
	for _, kind := range supportedKinds {
		if err := c.fetcher.DeleteByPrefix(ctx, KindPrefix(c.serializer, kind)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Wrapf(stderrors.Join(errs...), errors.CodeUnavailable, "fetch layer clear failed for %d kinds", len(errs))
	}
	return nil
}

// Add stores a copy of value under key, overwriting any previous entry.
// It fails with ErrConfigurationMismatch when V is not the entity type bound to
// the kind of key. Adding to a configured-out kind succeeds and stores nothing.
func Add[K Key, V Value[V]](ctx context.Context, c *Cache, key K, value V) error {
	if err := put(c, key, value); err != nil {
		return err
	}
	c.forget(ctx, key)
	return nil
}

func put[K Key, V Value[V]](c *Cache, key K, value V) error {
	if c == nil {
		return nil
	}
	st, s, err := storeFor[K, V](c, key)
	if err != nil {
		return err
	}
	if s.enabled {
		st.Put(key, value.Clone())
	}
	return nil
}

// Remove deletes the entry for key. Removing an absent key, or a key of a
// configured-out kind, is a no-op.
func Remove[K Key](ctx context.Context, c *Cache, key K) {
	if c == nil {
		return
	}
	if s, ok := c.slots[key.Kind()]; ok {
		s.remove(key)
	}
	c.forget(ctx, key)
}

// TryGet returns a copy of the entity cached under key. A miss is reported
// through the boolean, never as an error. Asking for the wrong entity type
// for the key's kind also reports a miss.
func TryGet[K Key, V Value[V]](ctx context.Context, c *Cache, key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	st, s, err := storeFor[K, V](c, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("typed lookup does not match key kind")
		return zero, false
	}

	v, ok := st.Get(key)
	if !ok {
		s.stats.misses.Inc()
		return zero, false
	}
	s.stats.hits.Inc()
	return v.Clone(), true
}

// RemoveWhere deletes every entry of V's kind for which match returns true
// and returns how many were removed. Used to drop dependent entities, e.g. the
// members of a deleted guild.
func RemoveWhere[K Key, V Value[V]](ctx context.Context, c *Cache, match func(key K, value V) bool) (int, error) {
	if c == nil || match == nil {
		return 0, nil
	}

	var probe K
	st, _, err := storeFor[K, V](c, probe)
	if err != nil {
		return 0, err
	}

	var doomed []K
	st.Range(func(key K, value V) bool {
		if match(key, value) {
			doomed = append(doomed, key)
		}
		return true
	})

	removed := 0
	serialized := make([]string, 0, len(doomed))
	for _, key := range doomed {
		if st.Remove(key) {
			removed++
		}
		serialized = append(serialized, c.serializer.SerializeKey(key))
	}
	if c.fetcher != nil && len(serialized) > 0 {
		if err := c.fetcher.InvalidateKeys(ctx, serialized); err != nil {
			c.logger.Warn().Err(err).Int("keys", len(serialized)).Msg("fetch layer invalidation failed")
		}
	}
	return removed, nil
}

// forget drops key from the fetch layer so a later miss refetches.
func (c *Cache) forget(ctx context.Context, key AnyKey) {
	if c == nil || c.fetcher == nil {
		return
	}
	if err := c.fetcher.Delete(ctx, c.serializer.SerializeKey(key)); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("fetch layer delete failed")
	}
}

func storeFor[K Key, V Value[V]](c *Cache, key K) (store.Store[K, V], *slot, error) {
	kind := key.Kind()
	s, ok := c.slots[kind]
	if !ok {
		var zero V
		return nil, nil, configurationMismatch(kind, zero)
	}
	st, ok := s.store.(store.Store[K, V])
	if !ok {
		var zero V
		return nil, nil, configurationMismatch(kind, zero)
	}
	return st, s, nil
}

// AddGuild caches g under its own id.
func AddGuild(ctx context.Context, c *Cache, g entity.Guild) error {
	return Add(ctx, c, GuildKeyOf(g), g)
}

// AddChannel caches ch under its own id.
func AddChannel(ctx context.Context, c *Cache, ch entity.Channel) error {
	return Add(ctx, c, ChannelKeyOf(ch), ch)
}

// AddMessage caches m under its channel and message ids.
func AddMessage(ctx context.Context, c *Cache, m entity.Message) error {
	return Add(ctx, c, MessageKeyOf(m), m)
}

// AddMember caches m under its guild and user ids.
func AddMember(ctx context.Context, c *Cache, m entity.Member) error {
	return Add(ctx, c, MemberKeyOf(m), m)
}

// AddUser caches u under its own id.
func AddUser(ctx context.Context, c *Cache, u entity.User) error {
	return Add(ctx, c, UserKeyOf(u), u)
}
