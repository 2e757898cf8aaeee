package entity

import (
	"slices"
	"time"
)

// User is a snapshot of a platform user.
type User struct {
	ID            Snowflake `json:"id"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	GlobalName    string    `json:"global_name,omitempty"`
	Avatar        string    `json:"avatar,omitempty"`
	Bot           bool      `json:"bot,omitempty"`
	System        bool      `json:"system,omitempty"`
}

// Clone returns a copy of the user.
func (u User) Clone() User {
	return u
}

// DisplayName prefers the global name over the username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Guild is a snapshot of a guild. Gateway updates may carry only part of the
// fields; the most recent snapshot wins.
type Guild struct {
	ID          Snowflake   `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon,omitempty"`
	OwnerID     Snowflake   `json:"owner_id"`
	MemberCount int         `json:"member_count,omitempty"`
	Unavailable bool        `json:"unavailable,omitempty"`
	RoleIDs     []Snowflake `json:"roles,omitempty"`
}

// Clone returns a deep copy of the guild.
func (g Guild) Clone() Guild {
	g.RoleIDs = slices.Clone(g.RoleIDs)
	return g
}

// ChannelType mirrors the platform's channel type enumeration.
type ChannelType int

const (
	ChannelTypeGuildText ChannelType = iota
	ChannelTypeDM
	ChannelTypeGuildVoice
	ChannelTypeGroupDM
	ChannelTypeGuildCategory
	ChannelTypeGuildAnnouncement
)

// Channel is a snapshot of a channel. GuildID is zero for direct messages.
type Channel struct {
	ID            Snowflake   `json:"id"`
	Type          ChannelType `json:"type"`
	GuildID       Snowflake   `json:"guild_id,omitempty"`
	ParentID      Snowflake   `json:"parent_id,omitempty"`
	Name          string      `json:"name,omitempty"`
	Topic         string      `json:"topic,omitempty"`
	Position      int         `json:"position,omitempty"`
	NSFW          bool        `json:"nsfw,omitempty"`
	LastMessageID Snowflake   `json:"last_message_id,omitempty"`
	RecipientIDs  []Snowflake `json:"recipient_ids,omitempty"`
}

// Clone returns a deep copy of the channel.
func (c Channel) Clone() Channel {
	c.RecipientIDs = slices.Clone(c.RecipientIDs)
	return c
}

// Message is a snapshot of a message. Message ids are addressed together with
// their channel id.
type Message struct {
	ID              Snowflake   `json:"id"`
	ChannelID       Snowflake   `json:"channel_id"`
	GuildID         Snowflake   `json:"guild_id,omitempty"`
	Author          User        `json:"author"`
	Content         string      `json:"content"`
	Timestamp       time.Time   `json:"timestamp"`
	EditedTimestamp *time.Time  `json:"edited_timestamp,omitempty"`
	Pinned          bool        `json:"pinned,omitempty"`
	MentionIDs      []Snowflake `json:"mentions,omitempty"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	m.Author = m.Author.Clone()
	if m.EditedTimestamp != nil {
		edited := *m.EditedTimestamp
		m.EditedTimestamp = &edited
	}
	m.MentionIDs = slices.Clone(m.MentionIDs)
	return m
}

// Member is a user's membership in one guild.
type Member struct {
	GuildID  Snowflake   `json:"guild_id"`
	User     User        `json:"user"`
	Nick     string      `json:"nick,omitempty"`
	RoleIDs  []Snowflake `json:"roles"`
	JoinedAt time.Time   `json:"joined_at"`
	Pending  bool        `json:"pending,omitempty"`
}

// Clone returns a deep copy of the member.
func (m Member) Clone() Member {
	m.User = m.User.Clone()
	m.RoleIDs = slices.Clone(m.RoleIDs)
	return m
}

// DisplayName prefers the guild nickname over the user's own name.
func (m Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.DisplayName()
}
