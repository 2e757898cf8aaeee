// Package auditlog models guild audit log entries whose targets are cached
// entities. Entries hold handles, not copies: resolving a target reads the
// entity cache at the time of the call.
package auditlog

import (
	"github.com/goliatone/go-discord-cache/cache"
	"github.com/goliatone/go-discord-cache/entity"
	"github.com/jmgilman/go/errors"
)

// ActionType is the audit log event type.
type ActionType int

const (
	ActionMemberKick   ActionType = 20
	ActionMemberBanAdd ActionType = 22
	ActionBotAdd       ActionType = 28
)

func (a ActionType) String() string {
	switch a {
	case ActionMemberKick:
		return "member_kick"
	case ActionMemberBanAdd:
		return "member_ban_add"
	case ActionBotAdd:
		return "bot_add"
	default:
		return "unknown"
	}
}

// Record is implemented by every entry type.
type Record interface {
	Base() Entry
}

// Entry holds the fields shared by all entries.
type Entry struct {
	ID         entity.Snowflake                               `json:"id"`
	GuildID    entity.Snowflake                               `json:"guild_id"`
	ActionType ActionType                                     `json:"action_type"`
	User       cache.CachedEntity[cache.UserKey, entity.User] `json:"user"`
	Reason     string                                         `json:"reason,omitempty"`
}

func (e Entry) Base() Entry { return e }

// BanEntry records a member ban.
type BanEntry struct {
	Entry
	// Target is the banned member.
	Target cache.CachedEntity[cache.MemberKey, entity.Member] `json:"target"`
}

// BotAddEntry records a bot joining the guild.
type BotAddEntry struct {
	Entry
	// TargetBot is the bot that was added.
	TargetBot cache.CachedEntity[cache.UserKey, entity.User] `json:"target_bot"`
}

// RawEntry is an audit log entry as the REST API returns it.
type RawEntry struct {
	ID         entity.Snowflake `json:"id"`
	ActionType ActionType       `json:"action_type"`
	UserID     entity.Snowflake `json:"user_id"`
	TargetID   entity.Snowflake `json:"target_id"`
	Reason     string           `json:"reason,omitempty"`
}

// Log is the audit log response body. Users holds the users referenced by
// the entries.
type Log struct {
	Entries []RawEntry    `json:"audit_log_entries"`
	Users   []entity.User `json:"users"`
}

// Parse builds typed records for guildID. Handles to users included in the
// response carry them as snapshots; the rest are lazy. Entries of other
// action types come back as plain Entry values.
func Parse(guildID entity.Snowflake, log Log) ([]Record, error) {
	if guildID.IsZero() {
		return nil, errors.New(errors.CodeInvalidInput, "audit log needs a guild id")
	}

	users := make(map[entity.Snowflake]entity.User, len(log.Users))
	for _, u := range log.Users {
		users[u.ID] = u
	}
	userRef := func(id entity.Snowflake) cache.CachedEntity[cache.UserKey, entity.User] {
		if u, ok := users[id]; ok {
			return cache.NewCachedEntityWithValue(cache.UserKeyOf(u), u)
		}
		return cache.NewCachedEntity[cache.UserKey, entity.User](cache.UserKey{UserID: id})
	}

	records := make([]Record, 0, len(log.Entries))
	for _, raw := range log.Entries {
		base := Entry{
			ID:         raw.ID,
			GuildID:    guildID,
			ActionType: raw.ActionType,
			User:       userRef(raw.UserID),
			Reason:     raw.Reason,
		}

		switch raw.ActionType {
		case ActionMemberBanAdd:
			if raw.TargetID.IsZero() {
				return nil, errors.Newf(errors.CodeInvalidInput, "ban entry %s has no target", raw.ID)
			}
			records = append(records, BanEntry{
				Entry:  base,
				Target: cache.NewCachedEntity[cache.MemberKey, entity.Member](cache.MemberKey{GuildID: guildID, UserID: raw.TargetID}),
			})
		case ActionBotAdd:
			if raw.TargetID.IsZero() {
				return nil, errors.Newf(errors.CodeInvalidInput, "bot add entry %s has no target", raw.ID)
			}
			records = append(records, BotAddEntry{
				Entry:     base,
				TargetBot: userRef(raw.TargetID),
			})
		default:
			records = append(records, base)
		}
	}
	return records, nil
}
