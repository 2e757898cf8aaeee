// Package events applies gateway dispatches to the entity cache.
//
// Every event becomes independent single-key Add and Remove calls. A reader
// running concurrently with Apply may observe part of a GUILD_CREATE batch.
package events

import "github.com/goliatone/go-discord-cache/entity"

// Gateway dispatch names handled by this package.
const (
	NameGuildCreate       = "GUILD_CREATE"
	NameGuildUpdate       = "GUILD_UPDATE"
	NameGuildDelete       = "GUILD_DELETE"
	NameChannelCreate     = "CHANNEL_CREATE"
	NameChannelUpdate     = "CHANNEL_UPDATE"
	NameChannelDelete     = "CHANNEL_DELETE"
	NameMessageCreate     = "MESSAGE_CREATE"
	NameMessageUpdate     = "MESSAGE_UPDATE"
	NameMessageDelete     = "MESSAGE_DELETE"
	NameMessageDeleteBulk = "MESSAGE_DELETE_BULK"
	NameMemberAdd         = "GUILD_MEMBER_ADD"
	NameMemberUpdate      = "GUILD_MEMBER_UPDATE"
	NameMemberRemove      = "GUILD_MEMBER_REMOVE"
	NameUserUpdate        = "USER_UPDATE"
)

// Event is a decoded gateway dispatch.
type Event interface {
	Name() string
}

// GuildCreate carries a full guild with the channels and members the gateway
// sent along with it.
type GuildCreate struct {
	Guild    entity.Guild
	Channels []entity.Channel
	Members  []entity.Member
}

type GuildUpdate struct {
	Guild entity.Guild
}

// GuildDelete with Unavailable set is an outage, not a removal.
type GuildDelete struct {
	GuildID     entity.Snowflake `json:"id"`
	Unavailable bool             `json:"unavailable"`
}

type ChannelCreate struct {
	Channel entity.Channel
}

type ChannelUpdate struct {
	Channel entity.Channel
}

type ChannelDelete struct {
	Channel entity.Channel
}

type MessageCreate struct {
	Message entity.Message
}

type MessageUpdate struct {
	Message entity.Message
}

type MessageDelete struct {
	MessageID entity.Snowflake `json:"id"`
	ChannelID entity.Snowflake `json:"channel_id"`
	GuildID   entity.Snowflake `json:"guild_id,omitempty"`
}

type MessageDeleteBulk struct {
	MessageIDs []entity.Snowflake `json:"ids"`
	ChannelID  entity.Snowflake   `json:"channel_id"`
	GuildID    entity.Snowflake   `json:"guild_id,omitempty"`
}

type MemberAdd struct {
	Member entity.Member
}

type MemberUpdate struct {
	Member entity.Member
}

type MemberRemove struct {
	GuildID entity.Snowflake `json:"guild_id"`
	User    entity.User      `json:"user"`
}

type UserUpdate struct {
	User entity.User
}

func (GuildCreate) Name() string       { return NameGuildCreate }
func (GuildUpdate) Name() string       { return NameGuildUpdate }
func (GuildDelete) Name() string       { return NameGuildDelete }
func (ChannelCreate) Name() string     { return NameChannelCreate }
func (ChannelUpdate) Name() string     { return NameChannelUpdate }
func (ChannelDelete) Name() string     { return NameChannelDelete }
func (MessageCreate) Name() string     { return NameMessageCreate }
func (MessageUpdate) Name() string     { return NameMessageUpdate }
func (MessageDelete) Name() string     { return NameMessageDelete }
func (MessageDeleteBulk) Name() string { return NameMessageDeleteBulk }
func (MemberAdd) Name() string         { return NameMemberAdd }
func (MemberUpdate) Name() string      { return NameMemberUpdate }
func (MemberRemove) Name() string      { return NameMemberRemove }
func (UserUpdate) Name() string        { return NameUserUpdate }
