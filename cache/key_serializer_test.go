package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  AnyKey
		want string
	}{
		{name: "guild", key: GuildKey{GuildID: 81384788765712384}, want: "guild::81384788765712384"},
		{name: "channel", key: ChannelKey{ChannelID: 5}, want: "channel::5"},
		{name: "message", key: MessageKey{ChannelID: 5, MessageID: 6}, want: "message::5::6"},
		{name: "member", key: MemberKey{GuildID: 1, UserID: 2}, want: "member::1::2"},
		{name: "user", key: UserKey{UserID: 3}, want: "user::3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
			assert.Equal(t, tt.want, NewDefaultKeySerializer().SerializeKey(tt.key))
			assert.Equal(t, Kind(tt.name), tt.key.Kind())
		})
	}
}

func TestKey_StructuralEquality(t *testing.T) {
	seen := map[MemberKey]int{}
	seen[MemberKey{GuildID: 1, UserID: 2}]++
	seen[MemberKey{GuildID: 1, UserID: 2}]++
	seen[MemberKey{GuildID: 2, UserID: 1}]++

	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[MemberKey{GuildID: 1, UserID: 2}])
}

func TestPrefixedKeySerializer(t *testing.T) {
	s := NewPrefixedKeySerializer("bot-a::")

	assert.Equal(t, "bot-a::member::1::2", s.SerializeKey(MemberKey{GuildID: 1, UserID: 2}))
	assert.Equal(t, "bot-a::member::", KindPrefix(s, KindMember))
}

func TestKindPrefix_MatchesSerializedKeys(t *testing.T) {
	s := NewDefaultKeySerializer()

	prefix := KindPrefix(s, KindMessage)
	assert.Equal(t, "message::", prefix)
	assert.Contains(t, s.SerializeKey(MessageKey{ChannelID: 1, MessageID: 2}), prefix)
	assert.NotContains(t, s.SerializeKey(MemberKey{GuildID: 1, UserID: 2}), prefix)
}

func TestKey_JSONUsesStringIDs(t *testing.T) {
	data, err := json.Marshal(MemberKey{GuildID: 81384788765712384, UserID: 80351110224678912})
	require.NoError(t, err)
	assert.JSONEq(t, `{"guild_id":"81384788765712384","user_id":"80351110224678912"}`, string(data))
}
