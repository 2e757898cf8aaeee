package cache

import (
	"maps"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-discord-cache/internal/cacheinfra"
	"github.com/rs/zerolog"
)

// Config declares which entity kinds are cached and how.
//
// Kinds missing from Entities are not cached: Add succeeds without storing and
// TryGet always misses.
type Config struct {
	Entities map[Kind]EntityConfig

	// Fetch configures the read-through layer used on misses.
	// Nil disables it; fetch functions are then called directly.
	Fetch *FetchConfig
}

// EntityConfig controls one entity kind.
type EntityConfig struct {
	// Capacity bounds the number of cached entries. Zero means unbounded.
	Capacity int

	// Disabled keeps the kind declared but not cached.
	Disabled bool
}

// Validate implements validation.Validatable.
func (e EntityConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Capacity, validation.Min(0)),
	)
}

// FetchConfig exposes the fetch layer options.
type FetchConfig struct {
	Capacity             int
	NumShards            int
	TTL                  time.Duration
	EvictionPercentage   int
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig caches every supported kind. Guilds and channels are
// unbounded; messages, members and users are the high-volume kinds.
func DefaultConfig() Config {
	fetch := DefaultFetchConfig()
	return Config{
		Entities: map[Kind]EntityConfig{
			KindGuild:   {Capacity: 0},
			KindChannel: {Capacity: 0},
			KindMessage: {Capacity: 1000},
			KindMember:  {Capacity: 10000},
			KindUser:    {Capacity: 10000},
		},
		Fetch: &fetch,
	}
}

// DefaultFetchConfig returns the default fetch layer options.
func DefaultFetchConfig() FetchConfig {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate reports the first field-level problems found in the configuration:
// unsupported kinds, negative capacities and an invalid fetch section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Entities, validation.By(validateEntities)),
		validation.Field(&c.Fetch),
	)
}

// Validate checks whether the fetch configuration values are valid.
func (f FetchConfig) Validate() error {
	return f.toInternal().Validate()
}

// Validate is the boolean form of Config.Validate. It has no side effects, so
// callers may probe configurations before committing to one.
func Validate(cfg Config) bool {
	return cfg.Validate() == nil
}

func validateEntities(value interface{}) error {
	entities, _ := value.(map[Kind]EntityConfig)

	errs := validation.Errors{}
	for kind, ec := range entities {
		if err := validation.Validate(kind,
			validation.Required,
			validation.In(kindValues()...).Error("is not a cacheable entity kind"),
		); err != nil {
			errs[string(kind)] = err
			continue
		}
		if err := ec.Validate(); err != nil {
			errs[string(kind)] = err
		}
	}
	return errs.Filter()
}

func kindValues() []interface{} {
	values := make([]interface{}, len(supportedKinds))
	for i, kind := range supportedKinds {
		values[i] = kind
	}
	return values
}

func (c Config) clone() Config {
	out := Config{Entities: maps.Clone(c.Entities)}
	if c.Fetch != nil {
		fetch := *c.Fetch
		if c.Fetch.EarlyRefresh != nil {
			early := *c.Fetch.EarlyRefresh
			fetch.EarlyRefresh = &early
		}
		out.Fetch = &fetch
	}
	return out
}

// entity returns the settings for kind and whether the kind is cached.
func (c Config) entity(kind Kind) (EntityConfig, bool) {
	ec, ok := c.Entities[kind]
	return ec, ok && !ec.Disabled
}

// NewFetchService constructs the default sturdyc-backed fetch layer.
func NewFetchService(cfg FetchConfig, logger zerolog.Logger) (FetchService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal(), logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (f FetchConfig) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if f.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: f.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: f.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     f.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      f.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             f.Capacity,
		NumShards:            f.NumShards,
		TTL:                  f.TTL,
		EvictionPercentage:   f.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: f.MissingRecordStorage,
		EvictionInterval:     f.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) FetchConfig {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return FetchConfig{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}
