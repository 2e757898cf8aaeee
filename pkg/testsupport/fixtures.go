package testsupport

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-discord-cache/entity"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// GuildSnapshotFixture is a guild with its channels, members and recent
// messages, shaped like a GUILD_CREATE payload.
const GuildSnapshotFixture = "fixtures/guild_snapshot.json"

// EntitySet groups decoded entity snapshots.
type EntitySet struct {
	Guilds   []entity.Guild   `json:"guilds"`
	Channels []entity.Channel `json:"channels"`
	Users    []entity.User    `json:"users"`
	Members  []entity.Member  `json:"members"`
	Messages []entity.Message `json:"messages"`
}

// LoadEntities decodes one of the embedded entity fixtures.
func LoadEntities(t testing.TB, name string) EntitySet {
	t.Helper()

	data, err := fixtureFS.ReadFile(name)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}

	var set EntitySet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("failed to unmarshal fixture %s: %v", name, err)
	}
	return set
}

// GuildSnapshot loads GuildSnapshotFixture.
func GuildSnapshot(t testing.TB) EntitySet {
	t.Helper()
	return LoadEntities(t, GuildSnapshotFixture)
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t testing.TB, path string, dest interface{}) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file.
// This should typically only be called when updating golden files.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// User builds a minimal user.
func User(id uint64, username string) entity.User {
	return entity.User{
		ID:            entity.Snowflake(id),
		Username:      username,
		Discriminator: "0",
	}
}

// Member builds a member of guildID for a minimal user.
func Member(guildID, userID uint64, nick string) entity.Member {
	return entity.Member{
		GuildID:  entity.Snowflake(guildID),
		User:     User(userID, "user"),
		Nick:     nick,
		RoleIDs:  []entity.Snowflake{entity.Snowflake(guildID)},
		JoinedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Guild builds a guild owned by ownerID.
func Guild(id, ownerID uint64, name string) entity.Guild {
	return entity.Guild{
		ID:      entity.Snowflake(id),
		Name:    name,
		OwnerID: entity.Snowflake(ownerID),
	}
}

// TextChannel builds a guild text channel.
func TextChannel(id, guildID uint64, name string) entity.Channel {
	return entity.Channel{
		ID:      entity.Snowflake(id),
		Type:    entity.ChannelTypeGuildText,
		GuildID: entity.Snowflake(guildID),
		Name:    name,
	}
}

// Message builds a message in channelID written by authorID.
func Message(channelID, messageID, authorID uint64, content string) entity.Message {
	return entity.Message{
		ID:        entity.Snowflake(messageID),
		ChannelID: entity.Snowflake(channelID),
		Author:    User(authorID, "author"),
		Content:   content,
		Timestamp: entity.Snowflake(messageID).CreatedAt(),
	}
}
