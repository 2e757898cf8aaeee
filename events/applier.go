package events

import (
	"context"

	"github.com/goliatone/go-discord-cache/cache"
	"github.com/goliatone/go-discord-cache/entity"
	"github.com/rs/zerolog"
)

// Applier translates gateway events into cache writes.
type Applier struct {
	cache  *cache.Cache
	logger zerolog.Logger
}

// Option customizes an Applier.
type Option func(*Applier)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier returns an Applier writing to c.
func NewApplier(c *cache.Cache, opts ...Option) *Applier {
	a := &Applier{cache: c, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With().Str("component", "event_applier").Logger()
	return a
}

// ApplyDispatch decodes d and applies it.
func (a *Applier) ApplyDispatch(ctx context.Context, d Dispatch) error {
	ev, err := Decode(d)
	if err != nil {
		a.logger.Warn().Err(err).Str("event", d.Type).Int64("seq", d.Seq).Msg("dropping undecodable dispatch")
		return err
	}
	return a.Apply(ctx, ev)
}

// Apply writes ev to the cache. Events the cache does not consume are
// ignored.
func (a *Applier) Apply(ctx context.Context, ev Event) error {
	c := a.cache

	switch e := ev.(type) {
	case GuildCreate:
		if err := cache.AddGuild(ctx, c, e.Guild); err != nil {
			return err
		}
		for _, ch := range e.Channels {
			if err := cache.AddChannel(ctx, c, ch); err != nil {
				return err
			}
		}
		for _, m := range e.Members {
			if err := a.addMember(ctx, m); err != nil {
				return err
			}
		}
		return nil

	case GuildUpdate:
		return cache.AddGuild(ctx, c, e.Guild)

	case GuildDelete:
		if e.Unavailable {
			return a.markUnavailable(ctx, e.GuildID)
		}
		return a.removeGuild(ctx, e.GuildID)

	case ChannelCreate:
		return cache.AddChannel(ctx, c, e.Channel)

	case ChannelUpdate:
		return cache.AddChannel(ctx, c, e.Channel)

	case ChannelDelete:
		cache.Remove(ctx, c, cache.ChannelKeyOf(e.Channel))
		_, err := cache.RemoveWhere(ctx, c, func(key cache.MessageKey, _ entity.Message) bool {
			return key.ChannelID == e.Channel.ID
		})
		return err

	case MessageCreate:
		return a.addMessage(ctx, e.Message)

	case MessageUpdate:
		return a.addMessage(ctx, e.Message)

	case MessageDelete:
		cache.Remove(ctx, c, cache.MessageKey{ChannelID: e.ChannelID, MessageID: e.MessageID})
		return nil

	case MessageDeleteBulk:
		for _, id := range e.MessageIDs {
			cache.Remove(ctx, c, cache.MessageKey{ChannelID: e.ChannelID, MessageID: id})
		}
		return nil

	case MemberAdd:
		return a.addMember(ctx, e.Member)

	case MemberUpdate:
		return a.addMember(ctx, e.Member)

	case MemberRemove:
		cache.Remove(ctx, c, cache.MemberKey{GuildID: e.GuildID, UserID: e.User.ID})
		return nil

	case UserUpdate:
		return cache.AddUser(ctx, c, e.User)

	default:
		a.logger.Debug().Str("event", ev.Name()).Msg("ignoring event")
		return nil
	}
}

func (a *Applier) addMessage(ctx context.Context, m entity.Message) error {
	if err := cache.AddMessage(ctx, a.cache, m); err != nil {
		return err
	}
	if m.Author.ID.IsZero() {
		return nil
	}
	return cache.AddUser(ctx, a.cache, m.Author)
}

func (a *Applier) addMember(ctx context.Context, m entity.Member) error {
	if err := cache.AddMember(ctx, a.cache, m); err != nil {
		return err
	}
	return cache.AddUser(ctx, a.cache, m.User)
}

func (a *Applier) markUnavailable(ctx context.Context, guildID entity.Snowflake) error {
	key := cache.GuildKey{GuildID: guildID}
	g, ok := cache.TryGet[cache.GuildKey, entity.Guild](ctx, a.cache, key)
	if !ok {
		g = entity.Guild{ID: guildID}
	}
	g.Unavailable = true
	return cache.Add(ctx, a.cache, key, g)
}

// removeGuild drops the guild and every channel, member and message cached
// for it. Users are global and stay.
func (a *Applier) removeGuild(ctx context.Context, guildID entity.Snowflake) error {
	cache.Remove(ctx, a.cache, cache.GuildKey{GuildID: guildID})

	removed := make(map[entity.Snowflake]struct{})
	channels, err := cache.RemoveWhere(ctx, a.cache, func(key cache.ChannelKey, ch entity.Channel) bool {
		if ch.GuildID != guildID {
			return false
		}
		removed[key.ChannelID] = struct{}{}
		return true
	})
	if err != nil {
		return err
	}
	members, err := cache.RemoveWhere(ctx, a.cache, func(key cache.MemberKey, _ entity.Member) bool {
		return key.GuildID == guildID
	})
	if err != nil {
		return err
	}
	// Messages fetched over REST may carry no guild id; match them by channel.
	messages, err := cache.RemoveWhere(ctx, a.cache, func(key cache.MessageKey, m entity.Message) bool {
		if m.GuildID == guildID {
			return true
		}
		_, inGuild := removed[key.ChannelID]
		return inGuild
	})
	if err != nil {
		return err
	}

	a.logger.Debug().
		Str("guild_id", guildID.String()).
		Int("channels", channels).
		Int("members", members).
		Int("messages", messages).
		Msg("guild removed")
	return nil
}
