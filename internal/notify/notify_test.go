package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"stormwatch/internal/worldinfo"
)

type fakePoster struct {
	posts    map[string][]string
	failFor  map[string]bool
	failures int
}

func newFakePoster() *fakePoster {
	return &fakePoster{posts: map[string][]string{}, failFor: map[string]bool{}}
}

func (f *fakePoster) Post(_ context.Context, channelID, content string) error {
	if f.failFor[channelID] {
		f.failures++
		return errors.New("channel deleted")
	}
	f.posts[channelID] = append(f.posts[channelID], content)
	return nil
}

func sampleMissions() []worldinfo.Mission {
	return []worldinfo.Mission{
		{
			ID:          "a1",
			PowerLevel:  19,
			MissionType: "Fight the Storm",
			Biome:       "Forest",
			Area:        "Stonewood",
			Rewards: []worldinfo.Reward{
				{ID: "AccountResource:eventcurrency_scaling", Name: "Gold", Amount: 120, Repeatable: true},
				{ID: worldinfo.ItemVBucks, Name: "V-Bucks", Amount: 40, Repeatable: false},
			},
		},
	}
}

func TestDigest(t *testing.T) {
	d := Digest(sampleMissions())

	assert.Contains(t, d, "19")
	assert.Contains(t, d, "Fight the Storm")
	assert.Contains(t, d, "Forest")
	assert.Contains(t, d, "Stonewood")
	assert.Contains(t, d, "120x Gold (repeatable)")
	assert.Contains(t, d, "40x V-Bucks (alert bonus)")
}

func TestNotifyDeliversToAllDestinations(t *testing.T) {
	poster := newFakePoster()
	n := New(poster, zap.NewNop())

	dests := []Destination{
		{GuildID: "g1", ChannelID: "c1"},
		{GuildID: "g2", ChannelID: "c2"},
	}
	n.Notify(context.Background(), dests, sampleMissions())

	require.Len(t, poster.posts["c1"], 1)
	require.Len(t, poster.posts["c2"], 1)
	assert.Equal(t, poster.posts["c1"], poster.posts["c2"])
}

func TestNotifyIsolatesFailures(t *testing.T) {
	poster := newFakePoster()
	poster.failFor["c1"] = true
	n := New(poster, zap.NewNop())

	dests := []Destination{
		{GuildID: "g1", ChannelID: "c1"},
		{GuildID: "g2", ChannelID: "c2"},
	}
	n.Notify(context.Background(), dests, sampleMissions())

	assert.Equal(t, 1, poster.failures)
	require.Len(t, poster.posts["c2"], 1, "one failing destination must not block the others")
}

func TestNotifyEmptyViewIsNoop(t *testing.T) {
	poster := newFakePoster()
	n := New(poster, zap.NewNop())

	n.Notify(context.Background(), []Destination{{GuildID: "g", ChannelID: "c"}}, nil)
	assert.Empty(t, poster.posts)
}

func TestSplitDigest(t *testing.T) {
	t.Run("short digest is one chunk", func(t *testing.T) {
		chunks := splitDigest("hello")
		assert.Equal(t, []string{"hello"}, chunks)
	})

	t.Run("long digest splits on block boundaries", func(t *testing.T) {
		block := strings.Repeat("x", 600)
		digest := strings.Join([]string{block, block, block, block}, "\n\n")
		chunks := splitDigest(digest)

		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), maxMessageLen)
		}
		assert.Equal(t, digest, strings.Join(chunks, "\n\n"), "no content lost in splitting")
	})

	t.Run("single oversized block is split on line boundaries", func(t *testing.T) {
		line := strings.Repeat("y", 80)
		block := strings.Join(make([]string, 60), line+"\n") + line
		require.Greater(t, len(block), maxMessageLen)

		chunks := splitDigest(block)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), maxMessageLen, "every chunk must fit one message")
		}
		assert.Equal(t, block, strings.Join(chunks, "\n"), "no content lost in splitting")
	})

	t.Run("single overlong line is hard cut", func(t *testing.T) {
		block := strings.Repeat("z", maxMessageLen*2+100)
		chunks := splitDigest(block)
		require.Len(t, chunks, 3)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), maxMessageLen)
		}
		assert.Equal(t, block, strings.Join(chunks, ""))
	})
}

func TestNotifyDeliveredLogReflectsOutcome(t *testing.T) {
	deliveredEntries := func(logs *observer.ObservedLogs) []observer.LoggedEntry {
		return logs.FilterMessage("digest delivered").All()
	}

	t.Run("all destinations failing logs no delivery", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		poster := newFakePoster()
		poster.failFor["c1"] = true
		poster.failFor["c2"] = true

		n := New(poster, zap.New(core))
		n.Notify(context.Background(), []Destination{
			{GuildID: "g1", ChannelID: "c1"},
			{GuildID: "g2", ChannelID: "c2"},
		}, sampleMissions())

		assert.Empty(t, deliveredEntries(logs), "no successful post means no delivered log")
	})

	t.Run("partial failure logs only successful destinations", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		poster := newFakePoster()
		poster.failFor["c1"] = true

		n := New(poster, zap.New(core))
		n.Notify(context.Background(), []Destination{
			{GuildID: "g1", ChannelID: "c1"},
			{GuildID: "g2", ChannelID: "c2"},
		}, sampleMissions())

		entries := deliveredEntries(logs)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(1), entries[0].ContextMap()["destinations"])
	})
}
