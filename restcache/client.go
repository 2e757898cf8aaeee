package restcache

import (
	"context"

	"github.com/goliatone/go-discord-cache/cache"
	"github.com/goliatone/go-discord-cache/entity"
	"github.com/rs/zerolog"
)

// Fetcher is the read side of the REST API.
type Fetcher interface {
	GetGuild(ctx context.Context, guildID entity.Snowflake) (entity.Guild, error)
	GetChannel(ctx context.Context, channelID entity.Snowflake) (entity.Channel, error)
	GetMessage(ctx context.Context, channelID, messageID entity.Snowflake) (entity.Message, error)
	GetMember(ctx context.Context, guildID, userID entity.Snowflake) (entity.Member, error)
	GetUser(ctx context.Context, userID entity.Snowflake) (entity.User, error)
	GetGuildChannels(ctx context.Context, guildID entity.Snowflake) ([]entity.Channel, error)
	ListGuildMembers(ctx context.Context, guildID entity.Snowflake, limit int, after entity.Snowflake) ([]entity.Member, error)
}

// Writer is the subset of mutating REST calls whose results touch cached
// entities.
type Writer interface {
	EditMessage(ctx context.Context, channelID, messageID entity.Snowflake, content string) (entity.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID entity.Snowflake) error
	ModifyMember(ctx context.Context, guildID, userID entity.Snowflake, nick string) (entity.Member, error)
	RemoveMember(ctx context.Context, guildID, userID entity.Snowflake) error
	ModifyChannel(ctx context.Context, channelID entity.Snowflake, name, topic string) (entity.Channel, error)
	DeleteChannel(ctx context.Context, channelID entity.Snowflake) error
}

// Client is the full REST surface decorated by CachedClient.
type Client interface {
	Fetcher
	Writer
}

var _ Client = (*CachedClient)(nil)

// CachedClient decorates a Client with the entity cache.
type CachedClient struct {
	base   Client
	cache  *cache.Cache
	logger zerolog.Logger
}

// Option customizes a CachedClient.
type Option func(*CachedClient)

// WithLogger sets the logger used for write-through failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *CachedClient) {
		c.logger = logger
	}
}

// New wraps base. A nil entities cache turns every call into a pass-through.
func New(base Client, entities *cache.Cache, opts ...Option) *CachedClient {
	c := &CachedClient{
		base:   base,
		cache:  entities,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "restcache").Logger()
	return c
}

// Cache returns the entity cache backing the client.
func (c *CachedClient) Cache() *cache.Cache {
	return c.cache
}

// GetGuild returns a guild, fetching it on a miss.
func (c *CachedClient) GetGuild(ctx context.Context, guildID entity.Snowflake) (entity.Guild, error) {
	return cache.Fetch(ctx, c.cache, cache.GuildKey{GuildID: guildID}, func(ctx context.Context, key cache.GuildKey) (entity.Guild, error) {
		return c.base.GetGuild(ctx, key.GuildID)
	})
}

// GetChannel returns a channel, fetching it on a miss.
func (c *CachedClient) GetChannel(ctx context.Context, channelID entity.Snowflake) (entity.Channel, error) {
	return cache.Fetch(ctx, c.cache, cache.ChannelKey{ChannelID: channelID}, func(ctx context.Context, key cache.ChannelKey) (entity.Channel, error) {
		return c.base.GetChannel(ctx, key.ChannelID)
	})
}

// GetMessage returns a message, fetching it on a miss.
func (c *CachedClient) GetMessage(ctx context.Context, channelID, messageID entity.Snowflake) (entity.Message, error) {
	key := cache.MessageKey{ChannelID: channelID, MessageID: messageID}
	return cache.Fetch(ctx, c.cache, key, func(ctx context.Context, key cache.MessageKey) (entity.Message, error) {
		return c.base.GetMessage(ctx, key.ChannelID, key.MessageID)
	})
}

// GetMember returns a guild member, fetching it on a miss.
func (c *CachedClient) GetMember(ctx context.Context, guildID, userID entity.Snowflake) (entity.Member, error) {
	key := cache.MemberKey{GuildID: guildID, UserID: userID}
	member, err := cache.Fetch(ctx, c.cache, key, func(ctx context.Context, key cache.MemberKey) (entity.Member, error) {
		return c.base.GetMember(ctx, key.GuildID, key.UserID)
	})
	if err != nil {
		return member, err
	}
	store(ctx, c, cache.UserKeyOf(member.User), member.User)
	return member, nil
}

// GetUser returns a user, fetching it on a miss.
func (c *CachedClient) GetUser(ctx context.Context, userID entity.Snowflake) (entity.User, error) {
	return cache.Fetch(ctx, c.cache, cache.UserKey{UserID: userID}, func(ctx context.Context, key cache.UserKey) (entity.User, error) {
		return c.base.GetUser(ctx, key.UserID)
	})
}

// GetGuildChannels always asks the API, since the cache cannot tell whether
// it holds every channel of a guild, and caches each returned channel.
func (c *CachedClient) GetGuildChannels(ctx context.Context, guildID entity.Snowflake) ([]entity.Channel, error) {
	channels, err := c.base.GetGuildChannels(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		store(ctx, c, cache.ChannelKeyOf(ch), ch)
	}
	return channels, nil
}

// ListGuildMembers pages through members and caches each one, together with
// its user.
func (c *CachedClient) ListGuildMembers(ctx context.Context, guildID entity.Snowflake, limit int, after entity.Snowflake) ([]entity.Member, error) {
	members, err := c.base.ListGuildMembers(ctx, guildID, limit, after)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		store(ctx, c, cache.MemberKeyOf(m), m)
		store(ctx, c, cache.UserKeyOf(m.User), m.User)
	}
	return members, nil
}

// EditMessage edits a message and caches the edited version.
func (c *CachedClient) EditMessage(ctx context.Context, channelID, messageID entity.Snowflake, content string) (entity.Message, error) {
	msg, err := c.base.EditMessage(ctx, channelID, messageID, content)
	if err == nil {
		store(ctx, c, cache.MessageKeyOf(msg), msg)
	}
	return msg, err
}

// DeleteMessage deletes a message. A message already gone remotely is
// dropped from the cache too.
func (c *CachedClient) DeleteMessage(ctx context.Context, channelID, messageID entity.Snowflake) error {
	err := c.base.DeleteMessage(ctx, channelID, messageID)
	if err == nil || cache.IsNotFound(err) {
		cache.Remove(ctx, c.cache, cache.MessageKey{ChannelID: channelID, MessageID: messageID})
	}
	return err
}

// ModifyMember changes a member's nickname and caches the result.
func (c *CachedClient) ModifyMember(ctx context.Context, guildID, userID entity.Snowflake, nick string) (entity.Member, error) {
	member, err := c.base.ModifyMember(ctx, guildID, userID, nick)
	if err == nil {
		store(ctx, c, cache.MemberKeyOf(member), member)
	}
	return member, err
}

// RemoveMember kicks a member and drops it from the cache.
func (c *CachedClient) RemoveMember(ctx context.Context, guildID, userID entity.Snowflake) error {
	err := c.base.RemoveMember(ctx, guildID, userID)
	if err == nil || cache.IsNotFound(err) {
		cache.Remove(ctx, c.cache, cache.MemberKey{GuildID: guildID, UserID: userID})
	}
	return err
}

// ModifyChannel renames a channel or changes its topic and caches the result.
func (c *CachedClient) ModifyChannel(ctx context.Context, channelID entity.Snowflake, name, topic string) (entity.Channel, error) {
	ch, err := c.base.ModifyChannel(ctx, channelID, name, topic)
	if err == nil {
		store(ctx, c, cache.ChannelKeyOf(ch), ch)
	}
	return ch, err
}

// DeleteChannel deletes a channel along with its cached messages.
func (c *CachedClient) DeleteChannel(ctx context.Context, channelID entity.Snowflake) error {
	err := c.base.DeleteChannel(ctx, channelID)
	if err != nil && !cache.IsNotFound(err) {
		return err
	}

	cache.Remove(ctx, c.cache, cache.ChannelKey{ChannelID: channelID})
	if _, rmErr := cache.RemoveWhere(ctx, c.cache, func(key cache.MessageKey, _ entity.Message) bool {
		return key.ChannelID == channelID
	}); rmErr != nil {
		c.logger.Warn().Err(rmErr).Str("channel_id", channelID.String()).Msg("dropping channel messages failed")
	}
	return err
}

// store adds a write-through result. Failures only mean a later miss, so
// they are logged and swallowed.
func store[K cache.Key, V cache.Value[V]](ctx context.Context, c *CachedClient, key K, value V) {
	if err := cache.Add(ctx, c.cache, key, value); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("write-through failed")
	}
}
