package cacheinfra

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"
)

// ErrNotFound is returned by a fetch function when the remote object does not exist,
// and by GetOrFetch when the record is known to be missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// Config holds the configuration for the sturdyc fetch adapter.
type Config struct {
	// Capacity defines the maximum number of fetched records kept for
	// coalescing and missing-record tracking. Must be greater than 0.
	Capacity int

	// NumShards determines the number of sturdyc shards. Must be greater than 0.
	NumShards int

	// TTL is how long a fetched record is served without refetching.
	// Keep it short: the entity cache is the long-lived layer.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the fetch cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures background refreshes of hot keys.
	// If nil, early refresh is disabled.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage remembers keys whose fetch reported ErrNotFound,
	// so unresolvable handles do not hit the API on every resolution.
	MissingRecordStorage bool

	// EvictionInterval sets how often expired entries are swept.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig mirrors sturdyc.WithEarlyRefreshes.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// Validate implements validation.Validatable.
func (e EarlyRefreshConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.MinAsyncRefreshTime, validation.Min(time.Duration(0))),
		validation.Field(&e.MaxAsyncRefreshTime, validation.Min(time.Duration(0))),
		validation.Field(&e.SyncRefreshTime, validation.Min(time.Duration(0))),
		validation.Field(&e.RetryBaseDelay, validation.Min(time.Duration(0))),
	)
}

// DefaultConfig returns a Config sized for request coalescing in front of REST.
func DefaultConfig() Config {
	return Config{
		Capacity:             5000,
		NumShards:            64,
		TTL:                  30 * time.Second,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
		EvictionInterval:     0, // Use default
	}
}

// ToSturdycOptions converts the optional parts of Config to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.EarlyRefresh),
	)
}

// SturdycService wraps a sturdyc client. Concurrent GetOrFetch calls for the
// same key share a single fetch.
type SturdycService struct {
	client *sturdyc.Client[any]
	logger zerolog.Logger
}

// NewSturdycService validates cfg and builds the sturdyc client.
func NewSturdycService(cfg Config, logger zerolog.Logger) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid fetch cache configuration")
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycService{
		client: client,
		logger: logger.With().Str("component", "fetch_cache").Logger(),
	}, nil
}

// missingRecord stands in for the value of a fetch that found nothing.
type missingRecord struct{}

// GetOrFetch returns the record for key, calling fetchFn on a miss.
// A fetchFn reporting ErrNotFound surfaces as ErrNotFound, and with
// MissingRecordStorage enabled later calls for the key skip fetchFn until TTL.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, errors.New(errors.CodeInvalidInput, "fetchFn cannot be nil")
	}

	value, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		v, err := fetchFn(ctx)
		if errors.Is(err, ErrNotFound) {
			// sturdyc type-asserts the value even on error, and a nil any fails.
			return missingRecord{}, sturdyc.ErrNotFound
		}
		return v, err
	})
	if err == nil {
		return value, nil
	}

	if errors.Is(err, sturdyc.ErrNotFound) || errors.Is(err, sturdyc.ErrMissingRecord) {
		return nil, errors.Wrapf(ErrNotFound, errors.CodeNotFound, "no record for %s", key)
	}

	s.logger.Warn().Err(err).Str("key", key).Msg("fetch failed")
	return nil, err
}

// Delete removes a single record so the next GetOrFetch refetches it.
func (s *SturdycService) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every record whose key starts with prefix.
func (s *SturdycService) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// InvalidateKeys removes several records at once.
func (s *SturdycService) InvalidateKeys(_ context.Context, keys []string) error {
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}
