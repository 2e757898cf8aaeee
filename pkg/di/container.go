package di

import (
	"github.com/goliatone/go-discord-cache/cache"
	"github.com/goliatone/go-discord-cache/events"
	"github.com/goliatone/go-discord-cache/restcache"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
)

// Container provides dependency injection for cache related components.
// It owns the entity cache, its fetch layer and key serializer, and
// provides factory methods for the components that read and write the cache.
type Container struct {
	cache         *cache.Cache
	fetchService  cache.FetchService
	keySerializer cache.KeySerializer
	logger        zerolog.Logger
	config        cache.Config
}

// Option customizes a Container.
type Option func(*Container)

// WithLogger sets the logger shared by every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithKeySerializer replaces the default key serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(c *Container) {
		if serializer != nil {
			c.keySerializer = serializer
		}
	}
}

// NewContainer creates a new DI container with the provided cache configuration.
// The fetch layer is built only when config.Fetch is set.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(&cache.ConfigError{Cause: err}, errors.CodeInvalidConfig, "invalid cache configuration")
	}

	c := &Container{
		keySerializer: cache.NewDefaultKeySerializer(),
		logger:        zerolog.Nop(),
		config:        config,
	}
	for _, opt := range opts {
		opt(c)
	}

	if config.Fetch != nil {
		fetchService, err := cache.NewFetchService(*config.Fetch, c.logger)
		if err != nil {
			return nil, err
		}
		c.fetchService = fetchService
	}

	entities, err := cache.New(config,
		cache.WithLogger(c.logger),
		cache.WithKeySerializer(c.keySerializer),
		cache.WithFetchService(c.fetchService),
	)
	if err != nil {
		return nil, err
	}
	c.cache = entities

	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// Cache returns the singleton entity cache.
func (c *Container) Cache() *cache.Cache {
	return c.cache
}

// FetchService returns the fetch layer, or nil when none is configured.
func (c *Container) FetchService() cache.FetchService {
	return c.fetchService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Logger returns the logger handed to every component.
func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// Config returns the configuration used by this container.
// This is useful for debugging and monitoring purposes.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewCachedClient wraps a REST client with the container's entity cache.
func NewCachedClient(container *Container, base restcache.Client) *restcache.CachedClient {
	return restcache.New(base, container.cache, restcache.WithLogger(container.logger))
}

// NewApplier returns a gateway event applier writing to the container's cache.
func NewApplier(container *Container) *events.Applier {
	return events.NewApplier(container.cache, events.WithLogger(container.logger))
}
