package cache

import (
	"github.com/goliatone/go-discord-cache/entity"
)

// AnyKey is the non-generic view of a cache key.
type AnyKey interface {
	// Kind reports which entity namespace the key addresses.
	Kind() Kind

	// Segments returns the identifying fields in a fixed order.
	Segments() []string

	String() string
}

// Key is the closed set of key types the cache understands. Keys are plain
// comparable structs, so equality and hashing are structural.
type Key interface {
	comparable
	GuildKey | ChannelKey | MessageKey | MemberKey | UserKey
	AnyKey
}

// GuildKey addresses a guild.
type GuildKey struct {
	GuildID entity.Snowflake `json:"guild_id"`
}

func (GuildKey) Kind() Kind { return KindGuild }
func (k GuildKey) Segments() []string { return []string{k.GuildID.String()} }
func (k GuildKey) String() string { return defaultSerializer.SerializeKey(k) }

// ChannelKey addresses a channel. Channel ids are globally unique.
type ChannelKey struct {
	ChannelID entity.Snowflake `json:"channel_id"`
}

func (ChannelKey) Kind() Kind { return KindChannel }
func (k ChannelKey) Segments() []string { return []string{k.ChannelID.String()} }
func (k ChannelKey) String() string { return defaultSerializer.SerializeKey(k) }

// MessageKey addresses a message within its channel.
type MessageKey struct {
	ChannelID entity.Snowflake `json:"channel_id"`
	MessageID entity.Snowflake `json:"message_id"`
}

func (MessageKey) Kind() Kind { return KindMessage }
func (k MessageKey) Segments() []string {
	return []string{k.ChannelID.String(), k.MessageID.String()}
}
func (k MessageKey) String() string { return defaultSerializer.SerializeKey(k) }

// MemberKey addresses a user's membership in one guild.
type MemberKey struct {
	GuildID entity.Snowflake `json:"guild_id"`
	UserID  entity.Snowflake `json:"user_id"`
}

func (MemberKey) Kind() Kind { return KindMember }
func (k MemberKey) Segments() []string {
	return []string{k.GuildID.String(), k.UserID.String()}
}
func (k MemberKey) String() string { return defaultSerializer.SerializeKey(k) }

// UserKey addresses a user.
type UserKey struct {
	UserID entity.Snowflake `json:"user_id"`
}

func (UserKey) Kind() Kind { return KindUser }
func (k UserKey) Segments() []string { return []string{k.UserID.String()} }
func (k UserKey) String() string { return defaultSerializer.SerializeKey(k) }

func GuildKeyOf(g entity.Guild) GuildKey {
	return GuildKey{GuildID: g.ID}
}

func ChannelKeyOf(c entity.Channel) ChannelKey {
	return ChannelKey{ChannelID: c.ID}
}

func MessageKeyOf(m entity.Message) MessageKey {
	return MessageKey{ChannelID: m.ChannelID, MessageID: m.ID}
}

func MemberKeyOf(m entity.Member) MemberKey {
	return MemberKey{GuildID: m.GuildID, UserID: m.User.ID}
}

func UserKeyOf(u entity.User) UserKey {
	return UserKey{UserID: u.ID}
}
