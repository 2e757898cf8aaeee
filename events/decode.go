package events

import (
	"encoding/json"

	"github.com/goliatone/go-discord-cache/entity"
	"github.com/jmgilman/go/errors"
)

// Dispatch is the envelope of a gateway dispatch frame.
type Dispatch struct {
	Type    string          `json:"t"`
	Seq     int64           `json:"s"`
	Payload json.RawMessage `json:"d"`
}

// Unknown is returned by Decode for dispatches the cache does not consume.
type Unknown struct {
	Type string
}

func (u Unknown) Name() string { return u.Type }

// Decode turns a dispatch into a typed event.
func Decode(d Dispatch) (Event, error) {
	var (
		ev  Event
		err error
	)

	switch d.Type {
	case NameGuildCreate:
		ev, err = decodeGuildCreate(d.Payload)
	case NameGuildUpdate:
		var e GuildUpdate
		err = json.Unmarshal(d.Payload, &e.Guild)
		ev = e
	case NameGuildDelete:
		var e GuildDelete
		err = json.Unmarshal(d.Payload, &e)
		ev = e
	case NameChannelCreate:
		var e ChannelCreate
		err = json.Unmarshal(d.Payload, &e.Channel)
		ev = e
	case NameChannelUpdate:
		var e ChannelUpdate
		err = json.Unmarshal(d.Payload, &e.Channel)
		ev = e
	case NameChannelDelete:
		var e ChannelDelete
		err = json.Unmarshal(d.Payload, &e.Channel)
		ev = e
	case NameMessageCreate:
		var e MessageCreate
		err = json.Unmarshal(d.Payload, &e.Message)
		ev = e
	case NameMessageUpdate:
		var e MessageUpdate
		err = json.Unmarshal(d.Payload, &e.Message)
		ev = e
	case NameMessageDelete:
		var e MessageDelete
		err = json.Unmarshal(d.Payload, &e)
		ev = e
	case NameMessageDeleteBulk:
		var e MessageDeleteBulk
		err = json.Unmarshal(d.Payload, &e)
		ev = e
	case NameMemberAdd:
		var e MemberAdd
		err = json.Unmarshal(d.Payload, &e.Member)
		ev = e
	case NameMemberUpdate:
		var e MemberUpdate
		err = json.Unmarshal(d.Payload, &e.Member)
		ev = e
	case NameMemberRemove:
		var e MemberRemove
		err = json.Unmarshal(d.Payload, &e)
		ev = e
	case NameUserUpdate:
		var e UserUpdate
		err = json.Unmarshal(d.Payload, &e.User)
		ev = e
	default:
		return Unknown{Type: d.Type}, nil
	}

	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidInput, "decode %s payload", d.Type)
	}
	return ev, nil
}

// decodeGuildCreate fills in the guild id the gateway omits on nested
// channels and members.
func decodeGuildCreate(payload []byte) (GuildCreate, error) {
	var e GuildCreate
	if err := json.Unmarshal(payload, &e.Guild); err != nil {
		return e, err
	}

	var nested struct {
		Channels []entity.Channel `json:"channels"`
		Members  []entity.Member  `json:"members"`
	}
	if err := json.Unmarshal(payload, &nested); err != nil {
		return e, err
	}

	for i := range nested.Channels {
		nested.Channels[i].GuildID = e.Guild.ID
	}
	for i := range nested.Members {
		nested.Members[i].GuildID = e.Guild.ID
	}
	e.Channels = nested.Channels
	e.Members = nested.Members
	return e, nil
}
