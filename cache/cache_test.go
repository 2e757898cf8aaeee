package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-discord-cache/entity"
	"github.com/goliatone/go-discord-cache/pkg/testsupport"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestCache(t *testing.T, entities map[Kind]EntityConfig, opts ...Option) *Cache {
	t.Helper()
	c, err := New(Config{Entities: entities}, opts...)
	require.NoError(t, err)
	return c
}

func allKinds(capacity int) map[Kind]EntityConfig {
	out := make(map[Kind]EntityConfig, len(supportedKinds))
	for _, kind := range supportedKinds {
		out[kind] = EntityConfig{Capacity: capacity}
	}
	return out
}

func TestAddThenTryGet_EveryKind(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))
	set := testsupport.GuildSnapshot(t)

	for _, g := range set.Guilds {
		require.NoError(t, AddGuild(ctx, c, g))
		got, ok := TryGet[GuildKey, entity.Guild](ctx, c, GuildKeyOf(g))
		assert.True(t, ok)
		assert.Equal(t, g, got)
	}
	for _, ch := range set.Channels {
		require.NoError(t, AddChannel(ctx, c, ch))
		got, ok := TryGet[ChannelKey, entity.Channel](ctx, c, ChannelKeyOf(ch))
		assert.True(t, ok)
		assert.Equal(t, ch, got)
	}
	for _, m := range set.Messages {
		require.NoError(t, AddMessage(ctx, c, m))
		got, ok := TryGet[MessageKey, entity.Message](ctx, c, MessageKeyOf(m))
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	for _, m := range set.Members {
		require.NoError(t, AddMember(ctx, c, m))
		got, ok := TryGet[MemberKey, entity.Member](ctx, c, MemberKeyOf(m))
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	for _, u := range set.Users {
		require.NoError(t, AddUser(ctx, c, u))
		got, ok := TryGet[UserKey, entity.User](ctx, c, UserKeyOf(u))
		assert.True(t, ok)
		assert.Equal(t, u, got)
	}

	assert.Equal(t, len(set.Channels), c.Len(KindChannel))
	assert.Equal(t, len(set.Members), c.Len(KindMember))
}

func TestTryGet_NeverAdded(t *testing.T) {
	c := newTestCache(t, allKinds(0))

	got, ok := TryGet[UserKey, entity.User](context.Background(), c, UserKey{UserID: 42})
	assert.False(t, ok)
	assert.Equal(t, entity.User{}, got)
}

func TestMessageKey_IsScopedByChannel(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))

	first := testsupport.Message(1, 500, 9, "first channel")
	second := testsupport.Message(2, 500, 9, "second channel")
	require.NoError(t, AddMessage(ctx, c, first))
	require.NoError(t, AddMessage(ctx, c, second))

	got, ok := TryGet[MessageKey, entity.Message](ctx, c, MessageKey{ChannelID: 1, MessageID: 500})
	require.True(t, ok)
	assert.Equal(t, "first channel", got.Content)
	assert.Equal(t, 2, c.Len(KindMessage))
}

func TestAdd_OverwriteKeepsLastWrite(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))
	key := MemberKey{GuildID: 1, UserID: 2}

	require.NoError(t, Add(ctx, c, key, testsupport.Member(1, 2, "before")))
	require.NoError(t, Add(ctx, c, key, testsupport.Member(1, 2, "after")))

	got, ok := TryGet[MemberKey, entity.Member](ctx, c, key)
	require.True(t, ok)
	assert.Equal(t, "after", got.Nick)
	assert.Equal(t, 1, c.Len(KindMember))
}

func TestRemove_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))
	key := UserKey{UserID: 7}

	require.NoError(t, Add(ctx, c, key, testsupport.User(7, "seven")))
	require.NoError(t, Add(ctx, c, UserKey{UserID: 8}, testsupport.User(8, "eight")))

	Remove(ctx, c, key)
	once := c.Len(KindUser)
	Remove(ctx, c, key)

	assert.Equal(t, once, c.Len(KindUser))
	_, ok := TryGet[UserKey, entity.User](ctx, c, key)
	assert.False(t, ok)
	_, ok = TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: 8})
	assert.True(t, ok)
}

func TestScenario_MemberCapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, map[Kind]EntityConfig{KindMember: {Capacity: 2}})

	m1 := testsupport.Member(10, 1, "m1")
	m2 := testsupport.Member(10, 2, "m2")
	m3 := testsupport.Member(10, 3, "m3")
	for _, m := range []entity.Member{m1, m2, m3} {
		require.NoError(t, AddMember(ctx, c, m))
	}

	assert.Equal(t, 2, c.Len(KindMember))

	_, ok := TryGet[MemberKey, entity.Member](ctx, c, MemberKeyOf(m1))
	assert.False(t, ok, "m1 should be evicted")
	for _, m := range []entity.Member{m2, m3} {
		got, ok := TryGet[MemberKey, entity.Member](ctx, c, MemberKeyOf(m))
		assert.True(t, ok)
		assert.Equal(t, m.Nick, got.Nick)
	}

	assert.Equal(t, int64(1), c.Stats()[KindMember].Evictions)
}

func TestEviction_NeverDropsMostRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, map[Kind]EntityConfig{KindUser: {Capacity: 3}})

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, AddUser(ctx, c, testsupport.User(i, "u")))
	}
	// Touch 1 so that 2 becomes the least recently used.
	_, ok := TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: 1})
	require.True(t, ok)

	require.NoError(t, AddUser(ctx, c, testsupport.User(4, "u")))

	assert.Equal(t, 3, c.Len(KindUser))
	_, ok = TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: 2})
	assert.False(t, ok)
	for _, id := range []uint64{1, 3, 4} {
		_, ok := TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: entity.Snowflake(id)})
		assert.True(t, ok, "user %d", id)
	}
}

func TestScenario_UserAddRemoveTryGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))
	u1 := testsupport.User(1, "u1")
	k1 := UserKeyOf(u1)

	require.NoError(t, Add(ctx, c, k1, u1))
	Remove(ctx, c, k1)

	got, ok := TryGet[UserKey, entity.User](ctx, c, k1)
	assert.False(t, ok)
	assert.Equal(t, entity.User{}, got)
}

func TestAdd_ConfigurationMismatch(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))

	err := Add(ctx, c, UserKey{UserID: 1}, testsupport.Guild(1, 2, "not a user"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigurationMismatch))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	_, ok := TryGet[UserKey, entity.Guild](ctx, c, UserKey{UserID: 1})
	assert.False(t, ok)
	assert.Zero(t, c.Len(KindUser))
}

func TestConfiguredOutKinds(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		entities map[Kind]EntityConfig
	}{
		{name: "absent from config", entities: map[Kind]EntityConfig{KindGuild: {}}},
		{name: "disabled", entities: map[Kind]EntityConfig{KindUser: {Disabled: true}}},
		{name: "empty config", entities: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, tt.entities)
			u := testsupport.User(1, "ghost")

			require.NoError(t, AddUser(ctx, c, u))
			_, ok := TryGet[UserKey, entity.User](ctx, c, UserKeyOf(u))
			assert.False(t, ok)
			assert.False(t, c.Enabled(KindUser))
			assert.Zero(t, c.Len(KindUser))

			Remove(ctx, c, UserKeyOf(u))
		})
	}
}

func TestTryGet_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))

	g := testsupport.Guild(1, 2, "g")
	g.RoleIDs = []entity.Snowflake{1, 2}
	require.NoError(t, AddGuild(ctx, c, g))

	g.RoleIDs[0] = 99
	got, ok := TryGet[GuildKey, entity.Guild](ctx, c, GuildKeyOf(g))
	require.True(t, ok)
	assert.Equal(t, []entity.Snowflake{1, 2}, got.RoleIDs, "caller mutation after Add leaked into the cache")

	got.RoleIDs[1] = 99
	again, _ := TryGet[GuildKey, entity.Guild](ctx, c, GuildKeyOf(g))
	assert.Equal(t, []entity.Snowflake{1, 2}, again.RoleIDs, "mutation of a returned value leaked into the cache")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Entities: map[Kind]EntityConfig{"widget": {}}})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "widget")
}

func TestNilCache(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	require.NoError(t, AddUser(ctx, c, testsupport.User(1, "u")))
	_, ok := TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: 1})
	assert.False(t, ok)
	Remove(ctx, c, UserKey{UserID: 1})
	assert.Zero(t, c.Len(KindUser))
	assert.False(t, c.Enabled(KindUser))
	assert.Empty(t, c.Stats())
	assert.NoError(t, c.Clear(ctx))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, map[Kind]EntityConfig{KindUser: {Capacity: 1}})

	require.NoError(t, AddUser(ctx, c, testsupport.User(1, "a")))
	TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: 1})
	TryGet[UserKey, entity.User](ctx, c, UserKey{UserID: 2})
	require.NoError(t, AddUser(ctx, c, testsupport.User(2, "b")))

	stats := c.Stats()
	assert.Len(t, stats, len(supportedKinds))
	assert.Equal(t, Stats{Enabled: true, Capacity: 1, Size: 1, Hits: 1, Misses: 1, Evictions: 1}, stats[KindUser])
	assert.False(t, stats[KindGuild].Enabled)
}

func TestRemoveWhere(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, allKinds(0))

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, AddMember(ctx, c, testsupport.Member(100, i, "")))
		require.NoError(t, AddMember(ctx, c, testsupport.Member(200, i, "")))
	}

	removed, err := RemoveWhere(ctx, c, func(key MemberKey, _ entity.Member) bool {
		return key.GuildID == 100
	})
	require.NoError(t, err)
	assert.Equal(t, 5, removed)
	assert.Equal(t, 5, c.Len(KindMember))

	_, ok := TryGet[MemberKey, entity.Member](ctx, c, MemberKey{GuildID: 200, UserID: 3})
	assert.True(t, ok)
}

func TestRemoveWhere_ConfigurationMismatch(t *testing.T) {
	c := newTestCache(t, allKinds(0))

	_, err := RemoveWhere(context.Background(), c, func(UserKey, entity.Guild) bool { return true })
	assert.True(t, errors.Is(err, ErrConfigurationMismatch))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	fetcher := newRecordingFetcher()
	c := newTestCache(t, allKinds(0), WithFetchService(fetcher))

	require.NoError(t, AddUser(ctx, c, testsupport.User(1, "u")))
	require.NoError(t, AddGuild(ctx, c, testsupport.Guild(1, 1, "g")))
	require.NoError(t, c.Clear(ctx))

	assert.Zero(t, c.Len(KindUser))
	assert.Zero(t, c.Len(KindGuild))
	assert.ElementsMatch(t, []string{"guild::", "channel::", "message::", "member::", "user::"}, fetcher.prefixes)
}

func TestClear_FetchLayerFailureStillEmptiesStores(t *testing.T) {
	ctx := context.Background()
	fetcher := newRecordingFetcher()
	fetcher.failPrefix = map[string]bool{"guild::": true, "member::": true}
	c := newTestCache(t, allKinds(0), WithFetchService(fetcher))

	for _, kind := range supportedKinds {
		switch kind {
		case KindGuild:
			require.NoError(t, AddGuild(ctx, c, testsupport.Guild(1, 1, "g")))
		case KindChannel:
			require.NoError(t, AddChannel(ctx, c, testsupport.TextChannel(2, 1, "c")))
		case KindMessage:
			require.NoError(t, AddMessage(ctx, c, testsupport.Message(2, 3, 1, "m")))
		case KindMember:
			require.NoError(t, AddMember(ctx, c, testsupport.Member(1, 1, "")))
		case KindUser:
			require.NoError(t, AddUser(ctx, c, testsupport.User(1, "u")))
		}
	}

	err := c.Clear(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))

	for _, kind := range supportedKinds {
		assert.Zero(t, c.Len(kind), "%s store should be empty", kind)
	}
	assert.Len(t, fetcher.prefixes, len(supportedKinds), "every kind is still invalidated")
}

func TestRemoveWhere_InvalidatesFetchLayerInOneBatch(t *testing.T) {
	ctx := context.Background()
	fetcher := newRecordingFetcher()
	c := newTestCache(t, allKinds(0), WithFetchService(fetcher))

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, AddMember(ctx, c, testsupport.Member(100, i, "")))
	}
	require.NoError(t, AddMember(ctx, c, testsupport.Member(200, 1, "")))

	removed, err := RemoveWhere(ctx, c, func(key MemberKey, _ entity.Member) bool {
		return key.GuildID == 100
	})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	require.Len(t, fetcher.batches, 1)
	assert.ElementsMatch(t, []string{"member::100::1", "member::100::2", "member::100::3"}, fetcher.batches[0])

	_, err = RemoveWhere(ctx, c, func(MemberKey, entity.Member) bool { return false })
	require.NoError(t, err)
	assert.Len(t, fetcher.batches, 1, "nothing removed, nothing invalidated")
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, map[Kind]EntityConfig{
		KindMember: {Capacity: 50},
		KindUser:   {},
	})

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				id := uint64(i % 75)
				if err := AddMember(ctx, c, testsupport.Member(1, id, fmt.Sprint(w))); err != nil {
					return err
				}
				if err := AddUser(ctx, c, testsupport.User(id, "u")); err != nil {
					return err
				}
				TryGet[MemberKey, entity.Member](ctx, c, MemberKey{GuildID: 1, UserID: entity.Snowflake(id)})
				if i%10 == 0 {
					Remove(ctx, c, UserKey{UserID: entity.Snowflake(id)})
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.LessOrEqual(t, c.Len(KindMember), 50)
	assert.LessOrEqual(t, c.Len(KindUser), 75)
}

func TestCache_IDIsStable(t *testing.T) {
	a := newTestCache(t, nil)
	b := newTestCache(t, nil)

	assert.Equal(t, a.ID(), a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

// recordingFetcher is a FetchService that always calls through and records
// invalidations.
type recordingFetcher struct {
	mu         sync.Mutex
	calls      int
	deleted    []string
	prefixes   []string
	batches    [][]string
	failPrefix map[string]bool
}

func newRecordingFetcher() *recordingFetcher {
	return &recordingFetcher{}
}

func (r *recordingFetcher) GetOrFetch(ctx context.Context, key string, fetchFn FetchFunc) (any, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return fetchFn(ctx)
}

func (r *recordingFetcher) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, key)
	return nil
}

func (r *recordingFetcher) DeleteByPrefix(_ context.Context, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes = append(r.prefixes, prefix)
	if r.failPrefix[prefix] {
		return errors.Newf(errors.CodeUnavailable, "cannot drop %s", prefix)
	}
	return nil
}

func (r *recordingFetcher) InvalidateKeys(ctx context.Context, keys []string) error {
	r.mu.Lock()
	r.batches = append(r.batches, append([]string(nil), keys...))
	r.mu.Unlock()
	for _, key := range keys {
		_ = r.Delete(ctx, key)
	}
	return nil
}
